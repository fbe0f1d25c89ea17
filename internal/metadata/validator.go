package metadata

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/validator"
)

const msgRequired = "is required"

var dateLayouts = []string{"2006-01-02", "2006-01"}

type options struct {
	now func() time.Time
}

// Option customises validation.
type Option func(*options)

// WithClock overrides the time source used for year bounds.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Validate checks the payload against the schema and returns field errors in
// declaration order, at most one per field. A nil schema accepts anything.
func Validate(schema *Schema, payload map[string]any, opts ...Option) []apperrors.FieldError {
	errs, _ := evaluate(schema, payload, opts...)
	return errs
}

// Normalize validates the payload and returns the declared fields coerced to
// their canonical types (string, float64, int64, bool). Undeclared keys are
// dropped. A nil schema returns the payload unchanged.
func Normalize(schema *Schema, payload map[string]any, opts ...Option) (map[string]any, error) {
	if schema == nil {
		return payload, nil
	}
	errs, values := evaluate(schema, payload, opts...)
	if len(errs) > 0 {
		return nil, apperrors.NewValidationFailed(errs)
	}
	return values, nil
}

func evaluate(schema *Schema, payload map[string]any, opts ...Option) ([]apperrors.FieldError, map[string]any) {
	if schema == nil {
		return nil, nil
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	var errs []apperrors.FieldError
	// values only holds fields that passed their own rule; conditions and
	// cross-field comparisons read from it.
	values := make(map[string]any, len(schema.Fields))

	for _, rule := range schema.Fields {
		raw, present := lookup(payload, rule.Name)
		if !present {
			if rule.required(values) {
				errs = append(errs, apperrors.FieldError{Field: rule.Name, Message: msgRequired})
			}
			continue
		}

		value, msg := rule.check(raw, values, o)
		if msg != "" {
			errs = append(errs, apperrors.FieldError{Field: rule.Name, Message: msg})
			continue
		}
		values[rule.Name] = value
	}

	return errs, values
}

func lookup(payload map[string]any, key string) (any, bool) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return nil, false
	}
	if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return raw, true
}

// required reports whether a missing field is an error. Conditional fields
// are only required once their discriminant has been accepted.
func (f FieldRule) required(values map[string]any) bool {
	if f.Required {
		return true
	}
	if f.Condition == nil {
		return false
	}

	discriminant, ok := values[f.Condition.Field]
	if !ok {
		return false
	}
	current := fmt.Sprint(discriminant)
	matched := false
	for _, candidate := range f.Condition.Values {
		if candidate == current {
			matched = true
			break
		}
	}
	if f.Condition.Negate {
		return !matched
	}
	return matched
}

func (f FieldRule) check(raw any, values map[string]any, o options) (any, string) {
	switch f.Kind {
	case KindString:
		s, ok := asString(raw)
		if !ok {
			return nil, "must be text"
		}
		return s, ""
	case KindEnum:
		s, ok := asString(raw)
		if !ok || !contains(f.Values, s) {
			return nil, fmt.Sprintf("must be one of [%s]", strings.Join(f.Values, ", "))
		}
		return s, ""
	case KindNumber, KindInteger:
		return f.checkNumber(raw, values, o)
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, ""
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b, ""
			}
		}
		return nil, "must be true or false"
	case KindDate:
		s, ok := raw.(string)
		if ok {
			s = strings.TrimSpace(s)
			for _, layout := range dateLayouts {
				if _, err := time.Parse(layout, s); err == nil {
					return s, ""
				}
			}
		}
		return nil, "must be a date in YYYY-MM or YYYY-MM-DD format"
	case KindEmail:
		s, ok := raw.(string)
		s = strings.TrimSpace(s)
		if !ok || !validator.Var(s, "email") {
			return nil, "must be a valid email address"
		}
		return s, ""
	default:
		return nil, fmt.Sprintf("has unsupported kind %q", f.Kind)
	}
}

func (f FieldRule) checkNumber(raw any, values map[string]any, o options) (any, string) {
	n, ok := asNumber(raw)
	if !ok {
		return nil, "must be a number"
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, "must be a finite number"
	}
	if f.Kind == KindInteger && n != math.Trunc(n) {
		return nil, "must be a whole number"
	}

	if f.Minimum != nil {
		lo := *f.Minimum
		switch {
		case f.ExclusiveMin && n <= lo:
			return nil, "must be greater than " + formatNumber(lo)
		case !f.ExclusiveMin && n < lo && lo == 0:
			return nil, "must not be negative"
		case !f.ExclusiveMin && n < lo:
			return nil, "must be at least " + formatNumber(lo)
		}
	}
	if f.Maximum != nil && n > *f.Maximum {
		return nil, "must be at most " + formatNumber(*f.Maximum)
	}
	if f.MaxYearsAhead != nil {
		limit := o.now().Year() + *f.MaxYearsAhead
		if n > float64(limit) {
			return nil, "must be at most " + strconv.Itoa(limit)
		}
	}
	if f.AtLeastField != "" {
		if other, ok := asNumber(values[f.AtLeastField]); ok && n < other {
			return nil, "must be greater than or equal to " + f.AtLeastField
		}
	}

	if f.Kind == KindInteger {
		return int64(n), ""
	}
	return n, ""
}

func asString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), true
	case json.Number:
		return v.String(), true
	case float64:
		return formatNumber(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func asNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func contains(values []string, candidate string) bool {
	for _, v := range values {
		if v == candidate {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
