package model

// Option is one entry of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SelectField configures one select input of the intake form.
type SelectField struct {
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []Option `json:"options"`
}

// FormConfig is the intake-form configuration singleton.  It is replaced
// wholesale on save; nothing merges two configurations.
type FormConfig struct {
	FieldLabels map[string]string `json:"fieldLabels"`
	Complexity  SelectField       `json:"complexity"`
	HomeSize    SelectField       `json:"homeSize"`
	OfficeType  SelectField       `json:"officeType"`
}

// FieldLabel returns the configured label for key, or key itself when the
// configuration has no non-empty label for it.
func (c FormConfig) FieldLabel(key string) string {
	if l := c.FieldLabels[key]; l != "" {
		return l
	}
	return key
}

func sameOptions(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

// DefaultFormConfig returns a fresh copy of the built-in configuration.
func DefaultFormConfig() FormConfig {
	return FormConfig{
		Complexity: SelectField{
			Label:    "Complexity",
			Required: true,
			Options:  sameOptions("Simple", "Moderate", "Complex"),
		},
		HomeSize: SelectField{
			Label:    "Home Size",
			Required: true,
			Options:  sameOptions("1-2 bedrooms", "3-4 bedrooms", "5+ bedrooms", "Studio"),
		},
		OfficeType: SelectField{
			Label:    "Office Type",
			Required: true,
			Options:  sameOptions("Office", "Retail", "Warehouse", "Restaurant", "Other"),
		},
		FieldLabels: map[string]string{
			"name":              "Name",
			"email":             "Email",
			"phone":             "Phone",
			"address":           "Address",
			"complexity":        "Complexity",
			"preferredDate":     "Preferred Date",
			"additionalInfo":    "Additional Information",
			"homeSize":          "Home Size",
			"bedrooms":          "Bedrooms",
			"bathrooms":         "Bathrooms",
			"squareFootage":     "Square Footage",
			"businessName":      "Business Name",
			"officeType":        "Office Type",
			"numberOfFloors":    "Number of Floors",
			"numberOfEmployees": "Number of Employees",
		},
	}
}

// NavigationSettings toggles optional navigation entries.
type NavigationSettings struct {
	ShowMembership bool `json:"showMembership"`
}
