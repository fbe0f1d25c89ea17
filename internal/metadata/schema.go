package metadata

import (
	"fmt"

	"github.com/charlesng35/classifieds/internal/models"
)

// Kind identifies the value type a field rule accepts.
type Kind string

const (
	KindString  Kind = "string"
	KindEnum    Kind = "enum"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBool    Kind = "boolean"
	KindDate    Kind = "date"
	KindEmail   Kind = "email"
)

// Condition makes a field required depending on the value of an earlier
// discriminant field. With Negate unset the field is required when the
// discriminant equals one of Values, otherwise when it equals none of them.
type Condition struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
	Negate bool     `json:"negate,omitempty"`
}

// FieldRule describes the constraints for a single metadata key.
type FieldRule struct {
	Name          string     `json:"name"`
	Kind          Kind       `json:"kind"`
	Required      bool       `json:"required"`
	Condition     *Condition `json:"requiredIf,omitempty"`
	Values        []string   `json:"values,omitempty"`
	Minimum       *float64   `json:"minimum,omitempty"`
	ExclusiveMin  bool       `json:"exclusiveMinimum,omitempty"`
	Maximum       *float64   `json:"maximum,omitempty"`
	MaxYearsAhead *int       `json:"maxYearsAhead,omitempty"`
	AtLeastField  string     `json:"atLeastField,omitempty"`
}

// Schema is the ordered rule set for one category type. Rules are evaluated
// and reported in declaration order.
type Schema struct {
	Type   models.CategoryType `json:"categoryType"`
	Fields []FieldRule         `json:"fields"`
}

// String declares an optional free-text field.
func String(name string) FieldRule { return FieldRule{Name: name, Kind: KindString} }

// Number declares an optional numeric field; integers and decimals are accepted.
func Number(name string) FieldRule { return FieldRule{Name: name, Kind: KindNumber} }

// Integer declares an optional whole-number field.
func Integer(name string) FieldRule { return FieldRule{Name: name, Kind: KindInteger} }

// Bool declares an optional boolean field.
func Bool(name string) FieldRule { return FieldRule{Name: name, Kind: KindBool} }

// Date declares an optional date field in YYYY-MM or YYYY-MM-DD form.
func Date(name string) FieldRule { return FieldRule{Name: name, Kind: KindDate} }

// Email declares an optional e-mail address field.
func Email(name string) FieldRule { return FieldRule{Name: name, Kind: KindEmail} }

// Enum declares an optional field restricted to the listed values.
func Enum(name string, values ...string) FieldRule {
	return FieldRule{Name: name, Kind: KindEnum, Values: values}
}

// Require marks the field as unconditionally required.
func (f FieldRule) Require() FieldRule {
	f.Required = true
	return f
}

// When requires the field if the discriminant holds one of the values.
func (f FieldRule) When(field string, values ...string) FieldRule {
	f.Condition = &Condition{Field: field, Values: values}
	return f
}

// Unless requires the field if the discriminant holds none of the values.
func (f FieldRule) Unless(field string, values ...string) FieldRule {
	f.Condition = &Condition{Field: field, Values: values, Negate: true}
	return f
}

// Positive requires the value to be strictly greater than zero.
func (f FieldRule) Positive() FieldRule {
	zero := 0.0
	f.Minimum = &zero
	f.ExclusiveMin = true
	return f
}

// NonNegative requires the value to be zero or greater.
func (f FieldRule) NonNegative() FieldRule {
	zero := 0.0
	f.Minimum = &zero
	f.ExclusiveMin = false
	return f
}

// Range bounds the value inclusively.
func (f FieldRule) Range(lo, hi float64) FieldRule {
	f.Minimum = &lo
	f.Maximum = &hi
	f.ExclusiveMin = false
	return f
}

// From sets an inclusive lower bound with no upper bound.
func (f FieldRule) From(lo float64) FieldRule {
	f.Minimum = &lo
	f.ExclusiveMin = false
	return f
}

// UpToYearsAhead caps a year value at the current year plus n.
func (f FieldRule) UpToYearsAhead(n int) FieldRule {
	f.MaxYearsAhead = &n
	return f
}

// NotBelow requires the value to be >= the value of another numeric field.
func (f FieldRule) NotBelow(field string) FieldRule {
	f.AtLeastField = field
	return f
}

// Field returns the rule with the given name.
func (s *Schema) Field(name string) (FieldRule, bool) {
	if s == nil {
		return FieldRule{}, false
	}
	for _, rule := range s.Fields {
		if rule.Name == name {
			return rule, true
		}
	}
	return FieldRule{}, false
}

// Names lists field names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.Fields))
	for i, rule := range s.Fields {
		names[i] = rule.Name
	}
	return names
}

// Clone returns a deep copy safe for callers to modify.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{Type: s.Type, Fields: make([]FieldRule, len(s.Fields))}
	for i, rule := range s.Fields {
		cp := rule
		cp.Values = append([]string(nil), rule.Values...)
		if rule.Condition != nil {
			cond := *rule.Condition
			cond.Values = append([]string(nil), rule.Condition.Values...)
			cp.Condition = &cond
		}
		out.Fields[i] = cp
	}
	return out
}

// check verifies the schema is well formed: names are unique and every
// referenced field is declared earlier, of a comparable kind.
func (s *Schema) check() error {
	seen := make(map[string]Kind, len(s.Fields))
	for _, rule := range s.Fields {
		if rule.Name == "" {
			return fmt.Errorf("metadata: %s: empty field name", s.Type)
		}
		if _, dup := seen[rule.Name]; dup {
			return fmt.Errorf("metadata: %s: duplicate field %q", s.Type, rule.Name)
		}
		if rule.Kind == KindEnum && len(rule.Values) == 0 {
			return fmt.Errorf("metadata: %s: enum %q without values", s.Type, rule.Name)
		}
		if rule.Condition != nil {
			kind, ok := seen[rule.Condition.Field]
			if !ok {
				return fmt.Errorf("metadata: %s: %q depends on undeclared field %q", s.Type, rule.Name, rule.Condition.Field)
			}
			if kind != KindEnum && kind != KindString && kind != KindBool {
				return fmt.Errorf("metadata: %s: %q cannot discriminate on %s field %q", s.Type, rule.Name, kind, rule.Condition.Field)
			}
		}
		if rule.AtLeastField != "" {
			kind, ok := seen[rule.AtLeastField]
			if !ok || (kind != KindNumber && kind != KindInteger) {
				return fmt.Errorf("metadata: %s: %q compares against non-numeric field %q", s.Type, rule.Name, rule.AtLeastField)
			}
		}
		seen[rule.Name] = rule.Kind
	}
	return nil
}
