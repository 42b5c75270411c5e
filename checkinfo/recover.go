// Package checkinfo turns a stored cheque record into the values shown to the user.
//
// A record carries the extracted fields twice: once as structured columns and once
// inside the free-form extracted text (usually the raw model answer). The two copies
// can disagree, so every read path goes through Extract, which recovers whatever JSON
// object the text holds, picks one value per field and leaves placeholders to Format.
package checkinfo

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Fields is a JSON object recovered from extracted text
type Fields map[string]any

const codeFence = "```"

var openingFence = regexp.MustCompile("(?i)^```(?:json|javascript)?")

// ParseExtracted recovers a JSON object from model output. The text may be plain JSON,
// JSON wrapped in a markdown code fence, or JSON surrounded by prose. The second result
// is false when no object can be recovered, which is a normal outcome and not an error.
//
// Text that is valid JSON but not an object yields no fields. The fallback takes
// everything between the first '{' and the last '}', so braces inside string values
// can make it pick a wrong span. Such input simply fails to decode.
func ParseExtracted(text string) (Fields, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	if strings.HasPrefix(text, codeFence) {
		text = openingFence.ReplaceAllString(text, "")
		text = strings.TrimSuffix(text, codeFence)
		text = strings.TrimSpace(text)
	}
	if fields, ok := decodeObject(text); ok {
		return fields, true
	}
	if json.Valid([]byte(text)) {
		// Well formed but not an object, e.g. an array of objects
		return nil, false
	}
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last <= first {
		return nil, false
	}
	return decodeObject(text[first : last+1])
}

func decodeObject(text string) (Fields, bool) {
	var fields Fields
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		// Not an object (or "null")
		return nil, false
	}
	return fields, true
}

// String returns the value stored under key as text. Missing keys and null give "".
func (f Fields) String(key string) string {
	value, ok := f[key]
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
