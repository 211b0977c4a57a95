package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func customerForm() map[string]Field {
	return map[string]Field{
		"general": {
			Kind: KindTab,
			Fields: map[string]Field{
				"name":    {Kind: KindText, Label: "Name", Required: true},
				"code":    {Kind: KindText, Mask: "aa-999"},
				"email":   {Kind: KindText, Mask: `^[^@\s]+@[^@\s]+$`},
				"cpf":     {Kind: KindCPF, Mask: "999.999.999-99"},
				"company": {Kind: KindCNPJ},
				"phone":   {Kind: KindPhone},
				"notice":  {Kind: KindAlert, Value: "Check the details"},
			},
		},
		"billing": {
			Kind: KindColumn,
			Fields: map[string]Field{
				"limit":    {Kind: KindCurrency, Prefix: "$", DecimalScale: intPtr(2)},
				"seats":    {Kind: KindNumber},
				"rate":     {Kind: KindDecimal},
				"discount": {Kind: KindSlider, Min: 0, Max: 50, Step: 5},
				"plan": {Kind: KindSelect, Options: []Option{
					{Label: "Basic", Value: "basic"},
					{Label: "Pro", Value: "pro"},
				}},
				"active": {Kind: KindSwitch},
				"since":  {Kind: KindDate},
			},
		},
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]Field
		wantErr string
	}{
		{"unknown kind", map[string]Field{"x": {Kind: "color"}}, "unknown type"},
		{"bad regex mask", map[string]Field{"x": {Kind: KindText, Mask: "^(["}}, "invalid mask"},
		{"slider bounds", map[string]Field{"x": {Kind: KindSlider, Min: 10, Max: 1}}, "below min"},
		{"select without options", map[string]Field{"x": {Kind: KindSelect}}, "no options"},
		{"reserved name", map[string]Field{otherKey: {Kind: KindText}}, "reserved name"},
		{
			name: "nested error has path",
			fields: map[string]Field{"tab": {Kind: KindTab, Fields: map[string]Field{
				"y": {Kind: "nope"},
			}}},
			wantErr: "field tab.y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.fields)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	schema, err := Build(customerForm())
	require.NoError(t, err)

	valid := map[string]any{
		"general": map[string]any{
			"name":    "Acme",
			"code":    "AB-123",
			"email":   "ops@acme.test",
			"cpf":     "529.982.247-25",
			"company": "11.222.333/0001-81",
			"phone":   "+55 11 98765-4321",
		},
		"billing": map[string]any{
			"limit":    "$ 1,250.50",
			"seats":    12.0,
			"rate":     "0.125",
			"discount": 15,
			"plan":     "pro",
			"active":   true,
			"since":    "2023-07-01",
		},
	}
	assert.NoError(t, schema.Validate(context.Background(), valid))

	invalid := map[string]any{
		"general": map[string]any{
			"name":    "  ",
			"code":    "A1-123",
			"email":   "not an email",
			"cpf":     "529.982.247-26",
			"company": "11.222.333/0001-80",
			"phone":   "123",
		},
		"billing": map[string]any{
			"limit":    "$ 10.505",
			"seats":    "2.5",
			"rate":     "abc",
			"discount": 17,
			"plan":     "gold",
			"active":   false,
			"since":    "someday",
		},
	}

	err = schema.Validate(context.Background(), invalid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, Errors{
		"general.name":     "is required",
		"general.code":     "does not match the expected format",
		"general.email":    "does not match the expected format",
		"general.cpf":      "is not a valid CPF",
		"general.company":  "is not a valid CNPJ",
		"general.phone":    "is not a valid phone number",
		"billing.limit":    "must have at most 2 decimal places",
		"billing.seats":    "must be a whole number",
		"billing.rate":     "must be a number",
		"billing.discount": "must be a multiple of 5",
		"billing.plan":     "is not one of the allowed options",
		"billing.since":    "must be a date",
	}, errs)
}

func TestSchema_ValidateTypesFirst(t *testing.T) {
	schema, err := Build(customerForm())
	require.NoError(t, err)

	err = schema.Validate(context.Background(), map[string]any{
		"general": map[string]any{"name": 5, "cpf": "000"},
		"billing": map[string]any{"active": "yes", "plan": "gold"},
	})
	require.ErrorIs(t, err, ErrInvalid)

	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, Errors{
		"general.name":   "must be text",
		"billing.active": "must be true or false",
	}, errs)
}

func TestSchema_ValidateNullIsMissing(t *testing.T) {
	schema, err := Build(map[string]Field{
		"name":  {Kind: KindText, Required: true},
		"seats": {Kind: KindNumber},
	})
	require.NoError(t, err)

	assert.NoError(t, schema.Validate(context.Background(), map[string]any{"name": "Acme", "seats": nil}))

	err = schema.Validate(context.Background(), map[string]any{"name": nil})
	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, Errors{"name": "is required"}, errs)
}

func TestSchema_ValidateIgnoresUnknownKeys(t *testing.T) {
	schema, err := Build(map[string]Field{"name": {Kind: KindText}})
	require.NoError(t, err)

	assert.NoError(t, schema.Validate(context.Background(), map[string]any{"name": "Acme", "extra": 1}))
}

func TestSchema_ValidateContainerShape(t *testing.T) {
	schema, err := Build(customerForm())
	require.NoError(t, err)

	err = schema.Validate(context.Background(), map[string]any{"general": "flat"})
	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "must be an object", errs["general"])

	// A missing container still reports its required fields.
	err = schema.Validate(context.Background(), map[string]any{})
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, Errors{"general.name": "is required"}, errs)
}

func TestSchema_SliderRange(t *testing.T) {
	schema, err := Build(map[string]Field{"v": {Kind: KindSlider, Min: 0, Max: 1, Step: 0.1}})
	require.NoError(t, err)

	assert.NoError(t, schema.Validate(context.Background(), map[string]any{"v": 0.3}))

	err = schema.Validate(context.Background(), map[string]any{"v": 2})
	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "must be between 0 and 1", errs["v"])
}

func TestSchema_Defaults(t *testing.T) {
	schema, err := Build(map[string]Field{
		"name":   {Kind: KindText, Value: "untitled"},
		"agree":  {Kind: KindCheckbox},
		"level":  {Kind: KindSlider, Min: 3, Max: 9},
		"banner": {Kind: KindBlock, Value: "Welcome"},
		"tab": {Kind: KindTab, Fields: map[string]Field{
			"plan": {Kind: KindSelect, Value: "basic", Options: []Option{{Value: "basic"}}},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":  "untitled",
		"agree": false,
		"level": 3.0,
		"tab":   map[string]any{"plan": "basic"},
	}, schema.Defaults())
}

func TestErrors_Error(t *testing.T) {
	err := Errors{"b": "bad", "a": "worse"}
	assert.Equal(t, "form validation failed: a: worse; b: bad", err.Error())
}
