package reasoner

import (
	"encoding/json"
	"strings"
)

// parseModelJSON extracts a JSON object from model output. Strict parse first,
// then the substring between the first '{' and the last '}' when the model
// wrapped the object in extra text. Anything else yields an empty object.
func parseModelJSON(text string) map[string]any {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return map[string]any{}
	}

	var obj map[string]any

	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return obj
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err == nil {
			return obj
		}
	}

	return map[string]any{}
}
