package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

var validate = validator.New()

// fieldTags maps schema field types to validator tags applied to the
// stringified value.
var fieldTags = map[string]string{
	domain.FieldEmail:  "email",
	domain.FieldNumber: "numeric",
	domain.FieldDate:   "datetime=2006-01-02",
	domain.FieldTel:    "max=32",
}

// validateFormData checks data against schema. Unknown keys are kept as-is;
// only declared fields are checked.
func validateFormData(schema domain.FormSchema, data map[string]any) error {
	fields := map[string]string{}
	for _, f := range schema.Fields {
		value, present := formValue(data, f.Name)
		if !present {
			if f.Required {
				fields[f.Name] = fmt.Sprintf("%s is required", fieldLabel(f))
			}
			continue
		}
		tag, ok := fieldTags[f.Type]
		if !ok {
			continue
		}
		if err := validate.Var(value, tag); err != nil {
			fields[f.Name] = fieldMessage(f)
		}
	}
	return domain.NewValidationError(fields)
}

// formValue returns the value of key as a trimmed string, and whether it is
// present and non-empty.
func formValue(data map[string]any, key string) (string, bool) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", false
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case bool:
		s = strconv.FormatBool(v)
	default:
		s = fmt.Sprint(v)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func fieldLabel(f domain.FormField) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func fieldMessage(f domain.FormField) string {
	label := fieldLabel(f)
	switch f.Type {
	case domain.FieldEmail:
		return label + " must be a valid email"
	case domain.FieldNumber:
		return label + " must be a number"
	case domain.FieldDate:
		return label + " must be a date (YYYY-MM-DD)"
	default:
		return label + " is invalid"
	}
}
