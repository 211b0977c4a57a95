// Package form describes the add/edit form of a grid and validates submitted
// values against it.
package form

// Kind is the input type of a form field.
type Kind string

const (
	KindText       Kind = "text"
	KindCNPJ       Kind = "cnpj"
	KindCPF        Kind = "cpf"
	KindPhone      Kind = "phone"
	KindNumber     Kind = "number"
	KindCurrency   Kind = "currency"
	KindDecimal    Kind = "decimal"
	KindSlider     Kind = "slider"
	KindBlock      Kind = "block"
	KindAlert      Kind = "alert"
	KindCheckbox   Kind = "checkbox"
	KindSwitch     Kind = "switch"
	KindSelect     Kind = "select"
	KindRadioGroup Kind = "radioGroup"
	KindDate       Kind = "date"
	KindColumn     Kind = "column"
	KindTab        Kind = "tab"
)

var kinds = map[Kind]bool{
	KindText: true, KindCNPJ: true, KindCPF: true, KindPhone: true,
	KindNumber: true, KindCurrency: true, KindDecimal: true, KindSlider: true,
	KindBlock: true, KindAlert: true, KindCheckbox: true, KindSwitch: true,
	KindSelect: true, KindRadioGroup: true, KindDate: true,
	KindColumn: true, KindTab: true,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return kinds[k]
}

// Display reports whether fields of this kind show content but take no input.
func (k Kind) Display() bool {
	return k == KindBlock || k == KindAlert
}

// Container reports whether fields of this kind hold nested fields.
func (k Kind) Container() bool {
	return k == KindColumn || k == KindTab
}

func (k Kind) text() bool {
	return k == KindText || k == KindCPF || k == KindCNPJ || k == KindPhone
}

func (k Kind) boolean() bool {
	return k == KindCheckbox || k == KindSwitch
}

func (k Kind) numeric() bool {
	return k == KindNumber || k == KindCurrency || k == KindDecimal
}

// Option is one choice of a select or radio group.
type Option struct {
	Label string `json:"label" koanf:"label"`
	Value string `json:"value" koanf:"value"`
}

// Field describes one form input, a display block, or a container of fields.
type Field struct {
	Kind        Kind   `json:"type" koanf:"type"`
	Label       string `json:"label,omitempty" koanf:"label"`
	Description string `json:"description,omitempty" koanf:"description"`
	Placeholder string `json:"placeholder,omitempty" koanf:"placeholder"`
	Required    bool   `json:"required,omitempty" koanf:"required"`

	// Value is the initial value of an input, or the content of a block or alert.
	Value any `json:"value,omitempty" koanf:"value"`

	// Text kinds. A mask starting with "^" is a regular expression.
	Mask string `json:"mask,omitempty" koanf:"mask"`

	// Number kinds.
	DecimalScale *int   `json:"decimalScale,omitempty" koanf:"decimal_scale"`
	Prefix       string `json:"prefix,omitempty" koanf:"prefix"`
	Suffix       string `json:"suffix,omitempty" koanf:"suffix"`

	// Slider.
	Min  float64 `json:"min,omitempty" koanf:"min"`
	Max  float64 `json:"max,omitempty" koanf:"max"`
	Step float64 `json:"step,omitempty" koanf:"step"`

	// Select and radio group.
	Options []Option `json:"group,omitempty" koanf:"options"`

	// Column and tab.
	Fields map[string]Field `json:"fields,omitempty" koanf:"fields"`
}
