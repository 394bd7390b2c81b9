package model

// FieldType is the kind of answer a form field collects.
type FieldType string

const (
	// FieldRating is a star rating, stored as a positive number.
	FieldRating FieldType = "rating"
	// FieldCheckbox is a yes/no answer.
	FieldCheckbox FieldType = "checkbox"
	// FieldText is free text.
	FieldText FieldType = "text"
	// FieldInteger is a whole number.
	FieldInteger FieldType = "integer"
)

// FieldTypes lists every valid field type.
var FieldTypes = []FieldType{FieldRating, FieldCheckbox, FieldText, FieldInteger}

// FormField is one configurable question of a project's review form.
type FormField struct {
	ID         int
	ProjectID  int
	Label      string
	Type       FieldType
	IsRequired bool
	Position   int
}

// FieldValue is a stored answer. Value is always the wire string.
type FieldValue struct {
	ID          int
	FormFieldID int
	RatingID    int
	Value       string
}

// Rating is one reviewer's judgement of one mutant.
type Rating struct {
	ID          int
	MutantID    int
	UserID      int
	FieldValues []FieldValue
}

// FieldValueSubmission is a single answer sent to the server.
type FieldValueSubmission struct {
	FormFieldID int
	Value       string
}

// RatingSubmission is the create-or-update payload for a mutant's rating.
type RatingSubmission struct {
	FieldValues []FieldValueSubmission
}
