package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// ErrInvalid is wrapped by the error Validate returns when any field fails.
var ErrInvalid = errors.New("form validation failed")

// otherKey holds the inputs whose JSON type varies (numbers typed as text,
// option values and dates). Their checks run in the object refinement.
const otherKey = "_other"

// Errors maps a field path ("tab.field") to its validation message.
type Errors map[string]string

// Error implements error.
func (e Errors) Error() string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p + ": " + e[p]
	}
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrInvalid.
func (e Errors) Unwrap() error {
	return ErrInvalid
}

type collectorKey struct{}

// Schema is a validated set of form fields.
type Schema struct {
	fields map[string]Field
	masks  map[string]*mask // by path
	byPath map[string]Field
	object goskema.Schema[map[string]any]
}

// Build checks fields, compiles their masks and builds the object schema
// submitted values are parsed with. Column and tab fields become nested
// objects.
func Build(fields map[string]Field) (*Schema, error) {
	s := &Schema{
		fields: fields,
		masks:  make(map[string]*mask),
		byPath: make(map[string]Field),
	}
	if err := s.compile("", fields); err != nil {
		return nil, err
	}
	obj, err := s.build("", fields)
	if err != nil {
		return nil, err
	}
	s.object = obj
	return s, nil
}

func (s *Schema) compile(prefix string, fields map[string]Field) error {
	for name, f := range fields {
		path := joinPath(prefix, name)
		if name == otherKey {
			return fmt.Errorf("field %s: reserved name", path)
		}
		if !f.Kind.Valid() {
			return fmt.Errorf("field %s: unknown type %q", path, f.Kind)
		}
		s.byPath[path] = f
		switch {
		case f.Kind.Container():
			if err := s.compile(path, f.Fields); err != nil {
				return err
			}
		case f.Kind == KindSlider:
			if f.Max < f.Min {
				return fmt.Errorf("field %s: max %v is below min %v", path, f.Max, f.Min)
			}
			if f.Step < 0 {
				return fmt.Errorf("field %s: negative step", path)
			}
		case f.Kind == KindSelect || f.Kind == KindRadioGroup:
			if len(f.Options) == 0 {
				return fmt.Errorf("field %s: no options", path)
			}
		}
		m, err := compileMask(f.Mask)
		if err != nil {
			return fmt.Errorf("field %s: %w", path, err)
		}
		if m != nil {
			s.masks[path] = m
		}
	}
	return nil
}

// build declares one object level. Text kinds are strings and checkboxes
// are booleans; everything else passes through to otherKey and is checked
// by the refinement together with masks and required text.
func (s *Schema) build(prefix string, fields map[string]Field) (goskema.Schema[map[string]any], error) {
	var zero goskema.Schema[map[string]any]

	b := g.Object()
	var required, refined []string
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		f := fields[name]
		switch {
		case f.Kind.Display():
		case f.Kind.Container():
			nested, err := s.build(joinPath(prefix, name), f.Fields)
			if err != nil {
				return zero, err
			}
			b.Field(name, g.SchemaOf[map[string]any](nested))
		case f.Kind.text():
			b.Field(name, g.StringOf[string]())
			if f.Required {
				required = append(required, name)
			}
			refined = append(refined, name)
		case f.Kind.boolean():
			if f.Required {
				b.Field(name, g.BoolOf[bool]())
				required = append(required, name)
			} else {
				initial, _ := f.Value.(bool)
				b.Field(name, g.BoolOf[bool]()).Default(initial)
			}
		default:
			refined = append(refined, name)
		}
	}
	b.Field(otherKey, g.SchemaOf[map[string]any](g.MapAny()))
	b.UnknownPassthrough(otherKey)
	if len(required) > 0 {
		b.Require(required...)
	}
	if len(refined) > 0 {
		b.Refine("fields "+prefix, s.refinement(prefix, fields, refined))
	}

	obj, err := b.Build()
	if err != nil {
		return zero, fmt.Errorf("build form object %q: %w", prefix, err)
	}
	return obj, nil
}

// refinement checks the named fields of one object level. Failures are
// recorded in the Errors carried by ctx as well as returned.
func (s *Schema) refinement(prefix string, fields map[string]Field, names []string) func(context.Context, map[string]any) error {
	return func(ctx context.Context, m map[string]any) error {
		other, _ := m[otherKey].(map[string]any)
		errs := make(Errors)
		for _, name := range names {
			f := fields[name]
			path := joinPath(prefix, name)

			v := m[name]
			if !f.Kind.text() {
				v = other[name]
			}
			if isBlank(v) {
				if f.Required {
					errs[path] = "is required"
				}
				continue
			}
			if msg := s.check(path, f, v); msg != "" {
				errs[path] = msg
			}
		}
		if len(errs) == 0 {
			return nil
		}
		if collected, ok := ctx.Value(collectorKey{}).(Errors); ok {
			maps.Copy(collected, errs)
		}
		return errs
	}
}

// Fields returns the field definitions.
func (s *Schema) Fields() map[string]Field {
	return s.fields
}

// MarshalJSON encodes the field definitions.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.fields)
}

// Validate checks values against the schema. Values for container fields are
// nested maps. It returns nil when every field passes, otherwise Errors.
// Missing required fields and wrong JSON types are reported before format
// and range checks.
func (s *Schema) Validate(ctx context.Context, values map[string]any) error {
	input := normalize(s.fields, values)
	data, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode form values: %w", err)
	}

	collected := make(Errors)
	ctx = context.WithValue(ctx, collectorKey{}, collected)
	src := goskema.WithNumberMode(goskema.JSONBytes(data), goskema.NumberFloat64)
	_, err = goskema.ParseFrom(ctx, s.object, src)
	if err == nil {
		return nil
	}
	if errs := s.issues(input, err); len(errs) > 0 {
		return errs
	}
	if len(collected) > 0 {
		return collected
	}
	return fmt.Errorf("validate form: %w", err)
}

// issues converts structural parse issues into Errors. Issues raised by a
// refinement sit on an object path and are left to the collector.
func (s *Schema) issues(input map[string]any, err error) Errors {
	var issues goskema.Issues
	if !errors.As(err, &issues) {
		return nil
	}

	errs := make(Errors)
	for _, issue := range issues {
		path := pointerPath(string(issue.Path))
		if path == "" {
			continue
		}
		v, present := lookup(input, path)
		if !present {
			errs[path] = "is required"
			continue
		}
		f, ok := s.byPath[path]
		switch {
		case !ok:
			errs[path] = issue.Message
		case f.Kind.Container():
			if _, isMap := v.(map[string]any); !isMap {
				errs[path] = "must be an object"
			}
		case f.Kind.text():
			errs[path] = "must be text"
		case f.Kind.boolean():
			errs[path] = "must be true or false"
		default:
			errs[path] = issue.Message
		}
	}
	return errs
}

// check validates one non-blank value and returns a message on failure.
func (s *Schema) check(path string, f Field, v any) string {
	switch {
	case f.Kind.text():
		str, ok := v.(string)
		if !ok {
			return "must be text"
		}
		if m := s.masks[path]; m != nil && !m.match(str) {
			return "does not match the expected format"
		}
		switch f.Kind {
		case KindCPF:
			if !validCPF(str) {
				return "is not a valid CPF"
			}
		case KindCNPJ:
			if !validCNPJ(str) {
				return "is not a valid CNPJ"
			}
		case KindPhone:
			if !validPhone(str) {
				return "is not a valid phone number"
			}
		}

	case f.Kind.numeric():
		n, frac, ok := parseAmount(v, f.Prefix, f.Suffix)
		if !ok {
			return "must be a number"
		}
		if math.IsInf(n, 0) {
			return "is out of range"
		}
		scale := f.DecimalScale
		if scale == nil && f.Kind == KindNumber {
			zero := 0
			scale = &zero
		}
		if scale != nil && frac > *scale {
			if *scale == 0 {
				return "must be a whole number"
			}
			return fmt.Sprintf("must have at most %d decimal places", *scale)
		}

	case f.Kind == KindSlider:
		n, _, ok := parseAmount(v, "", "")
		if !ok {
			return "must be a number"
		}
		if n < f.Min || n > f.Max {
			return fmt.Sprintf("must be between %v and %v", f.Min, f.Max)
		}
		if f.Step > 0 {
			steps := (n - f.Min) / f.Step
			if math.Abs(steps-math.Round(steps)) > 1e-9 {
				return fmt.Sprintf("must be a multiple of %v", f.Step)
			}
		}

	case f.Kind == KindSelect || f.Kind == KindRadioGroup:
		str := core.ToString(v)
		for _, opt := range f.Options {
			if opt.Value == str {
				return ""
			}
		}
		return "is not one of the allowed options"

	case f.Kind == KindDate:
		if _, ok := core.ToTime(v); !ok {
			return "must be a date"
		}
	}
	return ""
}

// Defaults returns the initial values of every input field. Container fields
// yield nested maps; checkboxes and switches without a value start false.
func (s *Schema) Defaults() map[string]any {
	return defaults(s.fields)
}

func defaults(fields map[string]Field) map[string]any {
	out := make(map[string]any, len(fields))
	for name, f := range fields {
		switch {
		case f.Kind.Display():
			continue
		case f.Kind.Container():
			out[name] = defaults(f.Fields)
		case f.Kind.boolean() && f.Value == nil:
			out[name] = false
		case f.Kind == KindSlider && f.Value == nil:
			out[name] = f.Min
		default:
			out[name] = f.Value
		}
	}
	return out
}

// normalize copies values for parsing. Nulls count as missing, and a
// missing container becomes an empty object so its required fields are
// still reported.
func normalize(fields map[string]Field, values map[string]any) map[string]any {
	out := make(map[string]any, len(values)+len(fields))
	for k, v := range values {
		if v != nil {
			out[k] = v
		}
	}
	for name, f := range fields {
		if !f.Kind.Container() {
			continue
		}
		switch v := out[name].(type) {
		case nil:
			out[name] = normalize(f.Fields, nil)
		case map[string]any:
			out[name] = normalize(f.Fields, v)
		}
	}
	return out
}

// lookup finds the value at a dotted path.
func lookup(values map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = values
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

var pointerUnescape = strings.NewReplacer("~1", "/", "~0", "~")

// pointerPath turns a JSON Pointer ("/tab/field") into a dotted path.
func pointerPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		parts[i] = pointerUnescape.Replace(p)
	}
	return strings.Join(parts, ".")
}

// parseAmount reads a number typed into a masked input. It strips prefix,
// suffix and thousands separators, and returns the number of decimal places
// that were typed.
func parseAmount(v any, prefix, suffix string) (float64, int, bool) {
	var s string
	switch val := v.(type) {
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int, int64, int32, json.Number:
		s = core.ToString(val)
	case string:
		s = val
	default:
		return 0, 0, false
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, 0, false
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) {
		return 0, 0, false
	}
	frac := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac = len(strings.TrimRight(s[i+1:], "0"))
	}
	return n, frac, true
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
