// Package kb handles knowledge base documents: the free-form JSON object a
// business keeps for its call assistant.
package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/itchyny/gojq"

	"github.com/ringlify/ringlify-cli/internal/output"
)

// Parse decodes data into a knowledge base document. Anything other than a
// single JSON object is a validation error.
func Parse(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, output.ErrValidation("knowledgeBase", "document is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, output.ErrValidation("knowledgeBase", "invalid JSON: "+err.Error())
	}
	if dec.More() {
		return nil, output.ErrValidation("knowledgeBase", "unexpected data after the JSON object")
	}

	doc, ok := v.(map[string]any)
	if !ok {
		return nil, output.ErrValidation("knowledgeBase", fmt.Sprintf("must be a JSON object, got %s", kindOf(v)))
	}
	return normalize(doc).(map[string]any), nil
}

// Validate checks the well-known sections. Unknown keys pass through.
//
//	address         string
//	hours           {day: {open: string, close: string}}
//	menuHighlights  [string]
//	policies        {name: string}
func Validate(doc map[string]any) error {
	if v, ok := doc["address"]; ok {
		if _, isStr := v.(string); !isStr {
			return output.ErrValidation("address", "must be a string")
		}
	}

	if v, ok := doc["hours"]; ok {
		hours, isMap := v.(map[string]any)
		if !isMap {
			return output.ErrValidation("hours", "must be an object of {open, close}")
		}
		for _, day := range sortedKeys(hours) {
			slot, isMap := hours[day].(map[string]any)
			if !isMap {
				return output.ErrValidation("hours."+day, "must be an object of {open, close}")
			}
			for _, field := range []string{"open", "close"} {
				if _, isStr := slot[field].(string); !isStr {
					return output.ErrValidation("hours."+day+"."+field, "must be a string")
				}
			}
		}
	}

	if v, ok := doc["menuHighlights"]; ok {
		items, isList := v.([]any)
		if !isList {
			return output.ErrValidation("menuHighlights", "must be a list of strings")
		}
		for i, item := range items {
			if _, isStr := item.(string); !isStr {
				return output.ErrValidation(fmt.Sprintf("menuHighlights[%d]", i), "must be a string")
			}
		}
	}

	if v, ok := doc["policies"]; ok {
		policies, isMap := v.(map[string]any)
		if !isMap {
			return output.ErrValidation("policies", "must be an object of strings")
		}
		for _, name := range sortedKeys(policies) {
			if _, isStr := policies[name].(string); !isStr {
				return output.ErrValidation("policies."+name, "must be a string")
			}
		}
	}

	return nil
}

// Query evaluates a jq expression against doc. A single result is returned
// as-is; several results come back as a slice.
func Query(ctx context.Context, doc map[string]any, expr string) (any, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, output.ErrUsageHint(fmt.Sprintf("Invalid query %q", expr), err.Error())
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, output.ErrUsageHint(fmt.Sprintf("Invalid query %q", expr), err.Error())
	}

	var input any = map[string]any{}
	if doc != nil {
		input = normalize(doc)
	}

	var results []any
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if haltErr, isHalt := err.(*gojq.HaltError); isHalt && haltErr.Value() == nil {
				break
			}
			return nil, output.ErrUsageHint("Query failed", err.Error())
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// normalize converts json.Number values into the numeric types gojq accepts.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "an array"
	case string:
		return "a string"
	case json.Number, float64:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
