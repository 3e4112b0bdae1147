// Package jsonshape summarizes the structure of an arbitrary JSON document:
// objects keep their keys, values collapse to type tags, and homogeneous
// lists collapse to a single representative element. A debugging aid for
// upstream feeds whose shape drifts.
package jsonshape

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
)

// Analyze maps a decoded JSON value to its structure description.
func Analyze(data any) any {
	switch v := data.(type) {
	case map[string]any:
		structure := make(map[string]any, len(v))
		for key, val := range v {
			structure[key] = Analyze(val)
		}
		return structure

	case []any:
		if len(v) == 0 {
			return []any{"<EMPTY_LIST>"}
		}

		allSameType := true
		first := reflect.TypeOf(v[0])
		for _, item := range v[1:] {
			if reflect.TypeOf(item) != first {
				allSameType = false
				break
			}
		}

		if allSameType {
			if _, isObj := v[0].(map[string]any); isObj {
				return []any{Analyze(v[0])}
			}
			return []any{typeTag(v[0])}
		}

		tags := make([]any, 0, len(v))
		for _, item := range v {
			tags = append(tags, typeTag(item))
		}
		return tags

	default:
		return typeTag(data)
	}
}

func typeTag(v any) string {
	if v == nil {
		// nulls are worth surfacing loudly, they break naive consumers
		return "<NULL>"
	}
	return fmt.Sprintf("<%s>", strings.ToUpper(reflect.TypeOf(v).Name()))
}

// DescribeFile loads a JSON file and renders its structure report.
func DescribeFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	structure, err := json.MarshalIndent(Analyze(data), "", "    ")
	if err != nil {
		return "", fmt.Errorf("rendering structure: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- ROOT TYPE: %s ---\n", rootTag(data))
	b.Write(structure)
	b.WriteString("\n")
	return b.String(), nil
}

func rootTag(data any) string {
	switch data.(type) {
	case map[string]any:
		return "<OBJECT>"
	case []any:
		return "<LIST>"
	default:
		return typeTag(data)
	}
}
