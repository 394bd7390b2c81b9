package review

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

// MaxRating is the highest value of a rating field.
const MaxRating = 5

// ErrInvalidForm is matched by every *ValidationError.
var ErrInvalidForm = errors.New("invalid review form")

// Value is the in-form representation of one answer. Kind selects which of
// the other fields is meaningful.
type Value struct {
	Kind      m.FieldType
	Text      string
	Number    float64
	HasNumber bool
	Bool      bool
}

// Empty reports whether the value counts as unanswered.
func (v Value) Empty() bool {
	switch v.Kind {
	case m.FieldCheckbox:
		return !v.Bool
	case m.FieldRating, m.FieldInteger:
		return !v.HasNumber
	}

	return v.Text == ""
}

// String renders the value for display.
func (v Value) String() string {
	switch v.Kind {
	case m.FieldCheckbox:
		if v.Bool {
			return "yes"
		}

		return "no"
	case m.FieldRating, m.FieldInteger:
		if !v.HasNumber {
			return ""
		}

		return formatNumber(v.Number)
	}

	return v.Text
}

// TextValue builds a text answer.
func TextValue(s string) Value { return Value{Kind: m.FieldText, Text: s} }

// NumberValue builds a numeric answer of kind rating or integer.
func NumberValue(kind m.FieldType, n float64) Value {
	return Value{Kind: kind, Number: n, HasNumber: true}
}

// CheckboxValue builds a checkbox answer.
func CheckboxValue(b bool) Value { return Value{Kind: m.FieldCheckbox, Bool: b} }

// codec converts between the wire string, user input and Value for one field type.
type codec struct {
	empty  func() Value
	decode func(wire string) Value
	encode func(v Value) string
	parse  func(input string) (Value, error)
	check  func(field m.FormField, v Value) string
}

var codecs = map[m.FieldType]codec{
	m.FieldCheckbox: {
		empty:  func() Value { return CheckboxValue(false) },
		decode: func(wire string) Value { return CheckboxValue(wire == "true") },
		encode: func(v Value) string { return strconv.FormatBool(v.Bool) },
		parse: func(input string) (Value, error) {
			switch strings.ToLower(strings.TrimSpace(input)) {
			case "true", "yes", "y", "1", "x":
				return CheckboxValue(true), nil
			case "false", "no", "n", "0", "":
				return CheckboxValue(false), nil
			}

			return Value{}, fmt.Errorf("%q is not yes or no", input)
		},
		check: func(field m.FormField, v Value) string {
			if field.IsRequired && !v.Bool {
				return "must be checked"
			}

			return ""
		},
	},
	m.FieldRating: numberCodec(m.FieldRating, func(field m.FormField, v Value) string {
		if !v.HasNumber {
			if field.IsRequired {
				return "is required"
			}

			return ""
		}

		if v.Number <= 0 || v.Number > MaxRating || v.Number != math.Trunc(v.Number) {
			return fmt.Sprintf("must be a whole number from 1 to %d", MaxRating)
		}

		return ""
	}),
	m.FieldInteger: numberCodec(m.FieldInteger, func(field m.FormField, v Value) string {
		if !v.HasNumber {
			if field.IsRequired {
				return "is required"
			}

			return ""
		}

		if v.Number != math.Trunc(v.Number) {
			return "must be a whole number"
		}

		return ""
	}),
	m.FieldText: {
		empty:  func() Value { return TextValue("") },
		decode: TextValue,
		encode: func(v Value) string { return v.Text },
		parse:  func(input string) (Value, error) { return TextValue(input), nil },
		check: func(field m.FormField, v Value) string {
			if field.IsRequired && strings.TrimSpace(v.Text) == "" {
				return "is required"
			}

			return ""
		},
	},
}

func numberCodec(kind m.FieldType, check func(m.FormField, Value) string) codec {
	empty := func() Value { return Value{Kind: kind} }

	return codec{
		empty: empty,
		decode: func(wire string) Value {
			n, ok := parseNumber(wire)
			if !ok {
				return empty()
			}

			return NumberValue(kind, n)
		},
		encode: func(v Value) string {
			if !v.HasNumber {
				return ""
			}

			return formatNumber(v.Number)
		},
		parse: func(input string) (Value, error) {
			if strings.TrimSpace(input) == "" {
				return empty(), nil
			}

			n, ok := parseNumber(input)
			if !ok {
				return Value{}, fmt.Errorf("%q is not a number", input)
			}

			return NumberValue(kind, n), nil
		},
		check: check,
	}
}

// parseNumber accepts finite decimal numbers. Blank input is not a number.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}

	return n, true
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func codecFor(kind m.FieldType) codec {
	if c, ok := codecs[kind]; ok {
		return c
	}

	return codecs[m.FieldText]
}

// ValidationError lists the fields that failed local validation, keyed by field id.
type ValidationError struct {
	Fields map[int]string
	order  []int
	labels map[int]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.order))
	for _, id := range e.order {
		parts = append(parts, e.labels[id]+" "+e.Fields[id])
	}

	return strings.Join(parts, ", ")
}

// Is reports whether target is ErrInvalidForm.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidForm }

// formDeps are the inputs the form is seeded from.
type formDeps struct {
	fields     []m.FormField
	selectedID int
	rating     *m.Rating
}

func (d formDeps) equal(o formDeps) bool {
	return d.selectedID == o.selectedID &&
		slices.Equal(d.fields, o.fields) &&
		ratingsEqual(d.rating, o.rating)
}

func ratingsEqual(a, b *m.Rating) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.ID == b.ID && a.MutantID == b.MutantID && a.UserID == b.UserID &&
		slices.Equal(a.FieldValues, b.FieldValues)
}

// ReviewForm holds the answers for the selected mutant. It re-seeds itself
// whenever the fields, the selection or the existing rating change.
type ReviewForm struct {
	deps    formDeps
	synced  bool
	fields  []m.FormField
	values  map[int]Value
	current *m.Rating
}

// NewReviewForm creates an empty form with no fields.
func NewReviewForm() *ReviewForm {
	return &ReviewForm{values: make(map[int]Value)}
}

// SortFields orders fields by position and then by id.
func SortFields(fields []m.FormField) []m.FormField {
	sorted := slices.Clone(fields)
	slices.SortStableFunc(sorted, func(a, b m.FormField) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
	})

	return sorted
}

// Sync re-seeds the form when any input differs from the previous call and
// reports whether it did. selected may be nil; rating may be nil.
func (f *ReviewForm) Sync(fields []m.FormField, selected *m.MutantOverview, rating *m.Rating) bool {
	deps := formDeps{fields: SortFields(fields), rating: cloneRating(rating)}
	if selected != nil {
		deps.selectedID = selected.ID
	}

	if f.synced && f.deps.equal(deps) {
		return false
	}

	f.deps = deps
	f.synced = true
	f.seed(selected, deps.rating)

	return true
}

func cloneRating(r *m.Rating) *m.Rating {
	if r == nil {
		return nil
	}

	out := *r
	out.FieldValues = slices.Clone(r.FieldValues)

	return &out
}

func (f *ReviewForm) seed(selected *m.MutantOverview, rating *m.Rating) {
	f.fields = f.deps.fields
	f.values = make(map[int]Value, len(f.fields))
	f.current = nil

	for _, field := range f.fields {
		f.values[field.ID] = codecFor(field.Type).empty()
	}

	if selected != nil && rating != nil && rating.MutantID == selected.ID {
		f.current = rating
	}

	if f.current == nil || len(f.current.FieldValues) == 0 {
		return
	}

	for _, fv := range f.current.FieldValues {
		field, ok := f.field(fv.FormFieldID)
		if !ok {
			continue
		}

		f.values[field.ID] = codecFor(field.Type).decode(fv.Value)
	}
}

func (f *ReviewForm) field(id int) (m.FormField, bool) {
	idx := slices.IndexFunc(f.fields, func(field m.FormField) bool { return field.ID == id })
	if idx < 0 {
		return m.FormField{}, false
	}

	return f.fields[idx], true
}

// Fields returns the form fields in display order.
func (f *ReviewForm) Fields() []m.FormField {
	return slices.Clone(f.fields)
}

// Value returns the current answer of field id.
func (f *ReviewForm) Value(id int) (Value, bool) {
	v, ok := f.values[id]
	return v, ok
}

// Values returns a copy of every answer keyed by field id.
func (f *ReviewForm) Values() map[int]Value {
	out := make(map[int]Value, len(f.values))
	for id, v := range f.values {
		out[id] = v
	}

	return out
}

// HasExistingRating reports whether the form was seeded from a stored rating.
func (f *ReviewForm) HasExistingRating() bool {
	return f.current != nil
}

// SubmitLabel names the submit action.
func (f *ReviewForm) SubmitLabel() string {
	if f.HasExistingRating() {
		return "Update Review"
	}

	return "Submit Review"
}

// Set replaces the answer of field id. The value kind must match the field type.
func (f *ReviewForm) Set(id int, v Value) error {
	field, ok := f.field(id)
	if !ok {
		return fmt.Errorf("unknown form field %d", id)
	}

	if v.Kind != field.Type {
		return fmt.Errorf("field %q expects a %s value, got %s", field.Label, field.Type, v.Kind)
	}

	f.values[id] = v

	return nil
}

// SetInput parses user input for field id and stores it.
func (f *ReviewForm) SetInput(id int, input string) error {
	field, ok := f.field(id)
	if !ok {
		return fmt.Errorf("unknown form field %d", id)
	}

	v, err := codecFor(field.Type).parse(input)
	if err != nil {
		return fmt.Errorf("field %q: %w", field.Label, err)
	}

	f.values[id] = v

	return nil
}

// Toggle flips a checkbox answer.
func (f *ReviewForm) Toggle(id int) error {
	v, ok := f.values[id]
	if !ok {
		return fmt.Errorf("unknown form field %d", id)
	}

	if v.Kind != m.FieldCheckbox {
		return fmt.Errorf("form field %d is not a checkbox", id)
	}

	v.Bool = !v.Bool
	f.values[id] = v

	return nil
}

// Validate checks every answer and returns a *ValidationError listing the failures.
func (f *ReviewForm) Validate() error {
	verr := &ValidationError{Fields: make(map[int]string), labels: make(map[int]string)}

	for _, field := range f.fields {
		if msg := codecFor(field.Type).check(field, f.values[field.ID]); msg != "" {
			verr.Fields[field.ID] = msg
			verr.labels[field.ID] = field.Label
			verr.order = append(verr.order, field.ID)
		}
	}

	if len(verr.order) == 0 {
		return nil
	}

	return verr
}

// Submission encodes the answers, dropping blank ones, in field order.
func (f *ReviewForm) Submission() m.RatingSubmission {
	sub := m.RatingSubmission{FieldValues: make([]m.FieldValueSubmission, 0, len(f.fields))}

	for _, field := range f.fields {
		v, ok := f.values[field.ID]
		if !ok {
			continue
		}

		encoded := codecFor(field.Type).encode(v)
		if encoded == "" {
			continue
		}

		sub.FieldValues = append(sub.FieldValues, m.FieldValueSubmission{FormFieldID: field.ID, Value: encoded})
	}

	return sub
}
