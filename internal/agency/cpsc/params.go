package cpsc

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "consumer-portal/internal/common/errors"
)

const (
	FormatJSON = "json"
	FormatXML  = "xml"

	dateLayout = "2006-01-02"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// QueryParams are the filters accepted by the Recall endpoint. Zero values
// are omitted from the query.
type QueryParams struct {
	RecallTitle     string `json:"recallTitle,omitempty"`
	Hazard          string `json:"hazard,omitempty"`
	RecallDateStart string `json:"recallDateStart,omitempty"`
	RecallDateEnd   string `json:"recallDateEnd,omitempty"`
	RecallNumber    string `json:"recallNumber,omitempty"`
	RecallID        int    `json:"recallId,omitempty"`
	Manufacturer    string `json:"manufacturer,omitempty"`
	ProductType     string `json:"productType,omitempty"`
	Format          string `json:"format,omitempty"`
}

func validDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// Validate checks dates, date order and format. Equal start and end dates
// are accepted.
func Validate(p QueryParams) error {
	if p.RecallDateStart != "" && !validDate(p.RecallDateStart) {
		return apperrors.NewValidationError("Invalid RecallDateStart format. Use YYYY-MM-DD")
	}
	if p.RecallDateEnd != "" && !validDate(p.RecallDateEnd) {
		return apperrors.NewValidationError("Invalid RecallDateEnd format. Use YYYY-MM-DD")
	}
	if p.RecallDateStart != "" && p.RecallDateEnd != "" {
		start, _ := time.Parse(dateLayout, p.RecallDateStart)
		end, _ := time.Parse(dateLayout, p.RecallDateEnd)
		if start.After(end) {
			return apperrors.NewValidationError("RecallDateStart must be before RecallDateEnd")
		}
	}
	if p.Format != "" && p.Format != FormatJSON && p.Format != FormatXML {
		return apperrors.NewValidationError(`Format must be either "json" or "xml"`)
	}
	if p.RecallID < 0 {
		return apperrors.NewValidationError("RecallID must not be negative")
	}
	return nil
}

// BuildQueryURL renders the Recall endpoint URL. format comes first
// (default json), then the set filters in declaration order.
func BuildQueryURL(baseURL string, p QueryParams) string {
	format := p.Format
	if format == "" {
		format = FormatJSON
	}

	pairs := [][2]string{{"format", format}}
	add := func(key, value string) {
		if value != "" {
			pairs = append(pairs, [2]string{key, value})
		}
	}
	add("RecallTitle", p.RecallTitle)
	add("Hazard", p.Hazard)
	add("RecallDateStart", p.RecallDateStart)
	add("RecallDateEnd", p.RecallDateEnd)
	add("RecallNumber", p.RecallNumber)
	if p.RecallID > 0 {
		add("RecallID", strconv.Itoa(p.RecallID))
	}
	add("Manufacturer", p.Manufacturer)
	add("ProductType", p.ProductType)

	var q strings.Builder
	for i, kv := range pairs {
		if i > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(kv[0]))
		q.WriteByte('=')
		q.WriteString(url.QueryEscape(kv[1]))
	}
	return strings.TrimRight(baseURL, "/") + "/Recall?" + q.String()
}
