package layer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Extractor resolves one column value from a decoded JSON document.
// Extractors are pure: same document in, same value out, no I/O.
type Extractor func(doc any) (string, error)

// Field returns an Extractor that walks a dotted path to a single scalar.
// Numeric segments index into arrays, so "rewards.rewards.0.amount" reads the
// first element of a nested list. The scalar keeps its JSON spelling: strings
// pass through unchanged and numbers round-trip via json.Number.
func Field(path string) Extractor {
	segments := strings.Split(path, ".")
	return func(doc any) (string, error) {
		node, err := walk(doc, segments)
		if err != nil {
			return "", err
		}
		return scalarString(node)
	}
}

// SumOf returns an Extractor that sums a decimal field across every element
// of a list. Chain amounts arrive as decimal strings, so each element's
// valuePath is parsed as a float before summing. An empty list sums to "0";
// a non-empty sum always renders with a decimal point (5 reads as "5.0").
func SumOf(listPath, valuePath string) Extractor {
	listSegments := strings.Split(listPath, ".")
	valueSegments := strings.Split(valuePath, ".")
	return func(doc any) (string, error) {
		node, err := walk(doc, listSegments)
		if err != nil {
			return "", err
		}
		list, ok := node.([]any)
		if !ok {
			return "", fmt.Errorf("%s is %T, not a list", listPath, node)
		}
		if len(list) == 0 {
			return "0", nil
		}
		var sum float64
		for i, elem := range list {
			value, err := walk(elem, valueSegments)
			if err != nil {
				return "", fmt.Errorf("element %d: %w", i, err)
			}
			amount, err := decimalValue(value)
			if err != nil {
				return "", fmt.Errorf("element %d: %w", i, err)
			}
			sum += amount
		}
		return formatDecimal(sum), nil
	}
}

// walk descends into a decoded JSON document one path segment at a time.
func walk(doc any, segments []string) (any, error) {
	node := doc
	for _, segment := range segments {
		switch v := node.(type) {
		case map[string]any:
			child, ok := v[segment]
			if !ok {
				return nil, fmt.Errorf("key %q not found", segment)
			}
			node = child
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return nil, fmt.Errorf("list index %q is not a number", segment)
			}
			if idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("list index %d out of range (len %d)", idx, len(v))
			}
			node = v[idx]
		default:
			return nil, fmt.Errorf("cannot descend into %T at %q", node, segment)
		}
	}
	return node, nil
}

func scalarString(node any) (string, error) {
	switch v := node.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("value is %T, not a scalar", node)
	}
}

func decimalValue(node any) (float64, error) {
	switch v := node.(type) {
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("amount %q is not a decimal", v)
		}
		return f, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("amount %q is not a decimal", v.String())
		}
		return f, nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("amount is %T, not a decimal", node)
	}
}

// formatDecimal renders a summed amount with an explicit decimal point so
// whole values stay distinguishable from raw chain integers in the log.
func formatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
