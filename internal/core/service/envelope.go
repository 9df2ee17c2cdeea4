package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/trakjobs/trakjobs-go/internal/core/domain"
)

// envelopeKind names the shapes a list response may take.
type envelopeKind int

const (
	envelopeUnknown envelopeKind = iota // nothing recognizable, zero items
	envelopeArray                       // [ ... ]
	envelopeData                        // {"data": [ ... ], ...}
	envelopeNamed                       // {"clients": [ ... ], ...}
)

func (k envelopeKind) String() string {
	switch k {
	case envelopeArray:
		return "array"
	case envelopeData:
		return "data"
	case envelopeNamed:
		return "named"
	default:
		return "unknown"
	}
}

// listEnvelope is a decoded list response: the items plus whatever
// pagination metadata objects it carried.
type listEnvelope struct {
	kind  envelopeKind
	items []map[string]any
	meta  []map[string]any // searched in order: top level, meta, pagination
}

// parseListEnvelope decodes a list body. name is the resource specific
// collection key, e.g. "clients".
func parseListEnvelope(body []byte, name string) (listEnvelope, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return listEnvelope{}, err
	}

	switch t := v.(type) {
	case []any:
		return listEnvelope{kind: envelopeArray, items: objects(t)}, nil
	case map[string]any:
		env := listEnvelope{meta: []map[string]any{t}}
		for _, key := range []string{"meta", "pagination"} {
			if m, ok := t[key].(map[string]any); ok {
				env.meta = append(env.meta, m)
			}
		}
		if arr, ok := t["data"].([]any); ok {
			env.kind, env.items = envelopeData, objects(arr)
		} else if arr, ok := t[name].([]any); ok {
			env.kind, env.items = envelopeNamed, objects(arr)
		}
		return env, nil
	default:
		return listEnvelope{}, nil
	}
}

// pagination resolves the page metadata. limit is the page size that was
// requested and stands in for a missing per_page.
func (e listEnvelope) pagination(limit int) domain.Pagination {
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	count := len(e.items)

	current, okCurrent := e.int("current_page", "page")
	perPage, okPer := e.int("per_page")
	total, okTotal := e.int("total", "total_count")
	pages, okPages := e.int("total_pages", "last_page")

	if !okCurrent && !okPer && !okTotal && !okPages {
		return domain.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: count, PerPage: limit}
	}

	if !okCurrent || current < 1 {
		current = 1
	}
	if !okPer || perPage < 1 {
		perPage = limit
	}
	if !okTotal || total < 0 {
		total = count
	}
	if !okPages || pages < 1 {
		pages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	if pages < 1 {
		pages = 1
	}
	return domain.Pagination{
		CurrentPage: current,
		TotalPages:  pages,
		TotalItems:  total,
		PerPage:     perPage,
	}
}

// int returns the first key found in any metadata object.
func (e listEnvelope) int(keys ...string) (int, bool) {
	for _, m := range e.meta {
		for _, k := range keys {
			if n, ok := intValue(m[k]); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// unwrapData returns body["data"] when it is an object, else the body
// object itself.
func unwrapData(body []byte) (map[string]any, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected response shape")
	}
	if data, ok := obj["data"].(map[string]any); ok {
		return data, nil
	}
	return obj, nil
}

// unwrapList returns body["data"] when it is an array, else the body when
// it is an array, else nil.
func unwrapList(body []byte) ([]map[string]any, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []any:
		return objects(t), nil
	case map[string]any:
		if arr, ok := t["data"].([]any); ok {
			return objects(arr), nil
		}
	}
	return nil, nil
}

// decodeJSON decodes body keeping numbers as json.Number. An empty body
// decodes to nil.
func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return v, nil
}

func objects(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// intValue accepts JSON numbers and numeric strings.
func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatValue(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	}
	return 0
}

// stringValue renders scalars as text; objects and arrays yield "".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	case json.Number:
		n, err := t.Float64()
		return err == nil && n != 0
	}
	return false
}
