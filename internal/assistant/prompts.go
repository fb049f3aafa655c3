package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContextBundle lists entities the model may resolve a query against.
type ContextBundle struct {
	Companies []string `json:"companies,omitempty"`
	Sectors   []string `json:"sectors,omitempty"`
	Sources   []string `json:"sources,omitempty"`
}

func (b ContextBundle) lines() string {
	var sb strings.Builder
	if len(b.Companies) > 0 {
		sb.WriteString("Known companies: " + strings.Join(b.Companies, ", ") + "\n")
	}
	if len(b.Sectors) > 0 {
		sb.WriteString("Known sectors: " + strings.Join(b.Sectors, ", ") + "\n")
	}
	if len(b.Sources) > 0 {
		sb.WriteString("Known sources: " + strings.Join(b.Sources, ", ") + "\n")
	}
	return sb.String()
}

func interpretPrompt(query string, bundle ContextBundle) string {
	return fmt.Sprintf(`You are a consumer protection data assistant.
User query: "%s"

Available data includes companies, sectors, and timeline events.
%sParse this natural language query and return a JSON response with:
{
  "intent": "search_company" | "search_sector" | "search_issue" | "general_query",
  "searchTerm": "extracted search term",
  "filters": {
    "sector": "if applicable",
    "severity": "if applicable",
    "source": "CFPB|NHTSA|CPSC|FTC if applicable"
  },
  "answer": "brief natural language answer about what you're searching for"
}

Return ONLY valid JSON, no other text.`, query, bundle.lines())
}

func advicePrompt(question string, contextData interface{}) string {
	return fmt.Sprintf(`User asks: "%s"

Context about the company:
%s

Provide personalized consumer advice based on complaint data.
Be helpful, accurate, and warn about potential risks.
Keep response under 150 words.`, question, compactJSON(contextData))
}

func trendPrompt(company string, complaints []map[string]interface{}) string {
	return fmt.Sprintf(`Analyze these consumer complaints for %s:
%s

Provide:
1. Top 3 recurring issues
2. Severity assessment (Low/Medium/High/Critical)
3. Trend analysis (Improving/Stable/Worsening)
4. Consumer recommendations

Format as JSON with fields: recurringIssues (array), severity, trend, recommendations (array)`,
		company, compactJSON(complaints))
}

func fraudPrompt(complaints []map[string]interface{}) string {
	return fmt.Sprintf(`Analyze these FTC fraud complaints:
%s

Identify:
1. Emerging scam types
2. Most vulnerable demographics
3. Preventive recommendations

Provide a clear, concise analysis.`, compactJSON(complaints))
}

func compactJSON(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// ChatContext is the portal description sent with every chat message.
var ChatContext = map[string]interface{}{
	"portalContext": "The Enshitification Portal - tracking quality decline and consumer protection",
	"dataSources": []string{
		"CFPB (1.8M+ financial complaints)",
		"NHTSA (14K+ automotive recalls)",
		"CPSC (8K+ product recalls)",
		"FTC (5.8M+ fraud complaints)",
	},
	"purpose": "Identify companies with declining quality, track recalls, analyze complaint trends, and provide data-driven consumer protection insights",
}

const (
	ChatUnavailableMessage = "AI chatbot requires Gemini API key. Please add VITE_GEMINI_API_KEY to your environment variables to enable this feature."
	ChatErrorMessage       = "I apologize, but I encountered an error processing your request. Please try again."
)
