package agency

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	text     strings.Builder
}

// XMLToValue converts the document element of body into plain values:
// an element with children becomes a map keyed by child tag, repeated tags
// collect into a slice, attributes go under "@attributes", and a leaf
// element becomes its trimmed text. A document element with neither
// children nor text is an empty collection and becomes a map holding only
// its attributes.
func XMLToValue(body []byte) (interface{}, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var root *xmlNode
	var stack []*xmlNode
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			} else {
				return nil, fmt.Errorf("parse xml: multiple root elements")
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parse xml: no root element")
	}
	if len(root.children) == 0 && strings.TrimSpace(root.text.String()) == "" {
		return root.object(), nil
	}
	return root.value(), nil
}

// object starts the map for n with its attributes, if any.
func (n *xmlNode) object() map[string]interface{} {
	obj := make(map[string]interface{}, len(n.children)+1)
	if len(n.attrs) > 0 {
		attrs := make(map[string]interface{}, len(n.attrs))
		for _, a := range n.attrs {
			attrs[a.Name.Local] = a.Value
		}
		obj["@attributes"] = attrs
	}
	return obj
}

func (n *xmlNode) value() interface{} {
	if len(n.children) == 0 {
		return strings.TrimSpace(n.text.String())
	}

	obj := n.object()
	for _, child := range n.children {
		v := child.value()
		existing, ok := obj[child.name]
		if !ok {
			obj[child.name] = v
			continue
		}
		if list, isList := existing.([]interface{}); isList {
			obj[child.name] = append(list, v)
		} else {
			obj[child.name] = []interface{}{existing, v}
		}
	}
	return obj
}
