package apierr

import (
	"bytes"
	"encoding/json"
)

// BodyKind classifies a response body.
type BodyKind int

const (
	// BodyEmpty is a zero-length or whitespace-only body.
	BodyEmpty BodyKind = iota
	// BodyText is a JSON string or any body that is not JSON.
	BodyText
	// BodyObject is a JSON object.
	BodyObject
	// BodyUnknown is valid JSON of any other type (array, number, null).
	BodyUnknown
)

func (k BodyKind) String() string {
	switch k {
	case BodyEmpty:
		return "empty"
	case BodyText:
		return "text"
	case BodyObject:
		return "object"
	default:
		return "unknown"
	}
}

// Body is a classified response body.
type Body struct {
	Kind   BodyKind
	Text   string         // set for BodyText
	Object map[string]any // set for BodyObject
}

// ParseBody classifies raw.
func ParseBody(raw []byte) Body {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Body{Kind: BodyEmpty}
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil || dec.More() {
		return Body{Kind: BodyText, Text: string(trimmed)}
	}

	switch t := v.(type) {
	case string:
		return Body{Kind: BodyText, Text: t}
	case map[string]any:
		return Body{Kind: BodyObject, Object: t}
	default:
		return Body{Kind: BodyUnknown}
	}
}

// String returns the non-empty string stored under key of an object body.
func (b Body) String(key string) (string, bool) {
	if b.Kind != BodyObject {
		return "", false
	}
	s, ok := b.Object[key].(string)
	return s, ok && s != ""
}

// ErrorCode extracts the machine-readable error code of a response body,
// read from error_code and then code.
func ErrorCode(raw []byte) string {
	b := ParseBody(raw)
	if code, ok := b.String("error_code"); ok {
		return code
	}
	code, _ := b.String("code")
	return code
}
