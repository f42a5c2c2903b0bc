package domain

// Form field types understood by the schema validator.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldEmail    = "email"
	FieldTel      = "tel"
	FieldNumber   = "number"
	FieldDate     = "date"
)

// FormField describes one input of a permit type's form.
type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// FormSchema is the ordered set of fields an application's form data is
// checked against on submission.
type FormSchema struct {
	Fields []FormField `json:"fields"`
}

// PermitType is read-only catalog data.
type PermitType struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	FormSchema  FormSchema `json:"formSchema"`
}
