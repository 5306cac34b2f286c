package domain

import (
	"reflect"
	"strings"
)

// Operator is a comparison applied by a transition guard.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
	OpPresent  Operator = "present"
)

// Operators lists every supported guard operator.
var Operators = []Operator{OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpContains, OpPresent}

// Valid reports whether op is a supported operator.
func (op Operator) Valid() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// Condition is a single guard predicate: a field compared against a value.
// A transition's conditions are implicitly ANDed.
type Condition struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value,omitempty"`
}

// FieldReader supplies named field values for guard evaluation.
// Statusable entities satisfy it.
type FieldReader interface {
	Field(name string) (any, bool)
}

// Holds evaluates the condition against the transition payload first and the
// entity's data second. A field absent from both fails the condition rather
// than erroring: guards are fail-closed.
func (c Condition) Holds(entity FieldReader, payload map[string]any) bool {
	value, ok := lookupField(c.Field, entity, payload)
	if !ok {
		return false
	}

	switch c.Op {
	case OpPresent:
		return value != nil
	case OpEq:
		return equalValues(value, c.Value)
	case OpNeq:
		return !equalValues(value, c.Value)
	case OpGt, OpGte, OpLt, OpLte:
		left, leftOK := asNumber(value)
		right, rightOK := asNumber(c.Value)
		if !leftOK || !rightOK {
			return false
		}
		switch c.Op {
		case OpGt:
			return left > right
		case OpGte:
			return left >= right
		case OpLt:
			return left < right
		default:
			return left <= right
		}
	case OpContains:
		return containsValue(value, c.Value)
	default:
		return false
	}
}

// CheckGuards evaluates every condition against the entity and payload.
// It returns a GuardFailedError naming the first condition that does not
// hold, or nil when all conditions hold.
func CheckGuards(conditions []Condition, entity FieldReader, payload map[string]any) error {
	for _, c := range conditions {
		if !c.Holds(entity, payload) {
			return &GuardFailedError{Field: c.Field, Op: c.Op, Value: c.Value}
		}
	}
	return nil
}

// CheckRequiredFields verifies the payload carries a non-nil value for every
// required field. It returns a MissingRequiredFieldError naming all fields
// that are absent.
func CheckRequiredFields(required []string, payload map[string]any) error {
	var missing []string
	for _, field := range required {
		if v, ok := payload[field]; !ok || v == nil {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &MissingRequiredFieldError{Fields: missing}
	}
	return nil
}

func lookupField(name string, entity FieldReader, payload map[string]any) (any, bool) {
	if payload != nil {
		if v, ok := payload[name]; ok {
			return v, true
		}
	}
	if entity != nil {
		if v, ok := entity.Field(name); ok {
			return v, true
		}
	}
	return nil, false
}

// equalValues compares two loosely-typed values. Numbers compare
// numerically regardless of their concrete Go type, since guard values and
// entity data both round-trip through JSON. Slices and maps (also legal in
// JSON data) compare structurally; == on those dynamic types would panic.
func equalValues(a, b any) bool {
	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		return ok && an == bn
	}
	if !isComparable(a) || !isComparable(b) {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func containsValue(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)
		return ok && strings.Contains(h, n)
	case []any:
		for _, item := range h {
			if equalValues(item, needle) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range h {
			if equalValues(item, needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
