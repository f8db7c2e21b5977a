package metadata

import "strings"

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

type Model struct {
	ID       string
	Label    string
	Provider Provider
}

// DefaultModelID is preselected when nothing was saved.
const DefaultModelID = "gpt4o"

// Models are the identifiers make_book.py accepts through -m, in picker order.
var Models = []Model{
	{ID: "gpt-3.5-turbo", Label: "GPT-3.5 Turbo", Provider: ProviderOpenAI},
	{ID: "gpt-4", Label: "GPT-4", Provider: ProviderOpenAI},
	{ID: "gpt4o", Label: "GPT-4o", Provider: ProviderOpenAI},
	{ID: "claude-3-5-sonnet-latest", Label: "Claude 3.5 Sonnet", Provider: ProviderClaude},
	{ID: "geminipro", Label: "Gemini Pro", Provider: ProviderGemini},
	{ID: "groq", Label: "Groq", Provider: ProviderGroq},
}

func ModelIDs() []string {
	ids := make([]string, 0, len(Models))
	for _, m := range Models {
		ids = append(ids, m.ID)
	}
	return ids
}

// LookupModel finds a suggested model. Unknown identifiers are still valid
// input; the second result only tells the UI whether to show a label.
func LookupModel(id string) (Model, bool) {
	needle := strings.TrimSpace(id)
	for _, m := range Models {
		if m.ID == needle {
			return m, true
		}
	}
	return Model{}, false
}
