package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dzecena/aws-ai-concierge/internal/shared/types"
)

// Params is the canonical parameter map extracted from an inbound event.
// Values arrive as strings from Bedrock Agent parameter lists and as decoded
// JSON values from gateway bodies, so access goes through typed getters
// instead of raw map probing.
type Params map[string]any

// String returns the parameter as a string, or def when absent or empty.
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	s := toString(v)
	if s == "" {
		return def
	}
	return s
}

// RequireString returns the parameter as a string or a MissingParameterError.
func (p Params) RequireString(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil || toString(v) == "" {
		return "", &types.MissingParameterError{Key: key}
	}
	return toString(v), nil
}

// Float returns the parameter as a float64, or def when absent. A value that
// cannot be parsed is a ValidationError, not a silent default.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	}
	f, err := strconv.ParseFloat(toString(v), 64)
	if err != nil {
		return 0, &types.ValidationError{Key: key, Message: "not a number"}
	}
	return f, nil
}

// Int returns the parameter as an int, or def when absent.
func (p Params) Int(key string, def int) (int, error) {
	f, err := p.Float(key, float64(def))
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Enum returns the parameter constrained to the allowed set, or def when
// absent. Membership is exact; a value outside the set is a ValidationError
// whose message lists the valid choices.
func (p Params) Enum(key, def string, allowed ...string) (string, error) {
	v := p.String(key, def)
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", &types.ValidationError{
		Key:     key,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
