package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	m "github.com/PSE-TRIAGE/triage/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	rules := map[string]validator.Func{
		"mutant_status": func(fl validator.FieldLevel) bool {
			return m.MutantStatus(fl.Field().String()).Valid()
		},
		"field_type": func(fl validator.FieldLevel) bool {
			for _, t := range m.FieldTypes {
				if string(t) == fl.Field().String() {
					return true
				}
			}

			return false
		},
	}

	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
		}
	}
}

// ShapeError lists every field of a response that did not match its declared shape.
type ShapeError struct {
	Errors []string
}

func (e *ShapeError) Error() string {
	return strings.Join(e.Errors, ", ")
}

// checkShape validates a decoded response. Nil pointers are accepted as null bodies.
func checkShape(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return shapeError(validate.Struct(v.Interface()))
	case reflect.Slice:
		for i := range v.Len() {
			if err := checkShape(v.Index(i).Addr().Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}

	return nil
}

func shapeError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))

	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("field '%s' is missing", fe.Namespace()))
		case "mutant_status":
			messages = append(messages, fmt.Sprintf("field '%s' has unknown status %q", fe.Namespace(), fe.Value()))
		case "field_type":
			messages = append(messages, fmt.Sprintf("field '%s' has unknown field type %q", fe.Namespace(), fe.Value()))
		default:
			messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag()))
		}
	}

	return &ShapeError{Errors: messages}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token" validate:"required"`
}

type userWire struct {
	ID              *int   `json:"id" validate:"required"`
	Username        string `json:"username" validate:"required"`
	IsAdmin         *bool  `json:"is_admin" validate:"required"`
	IsActive        *bool  `json:"is_active"`
	MutantsReviewed *int   `json:"mutants_reviewed"`
}

func (w userWire) toModel() m.User {
	user := m.User{
		ID:       *w.ID,
		Username: w.Username,
		IsAdmin:  *w.IsAdmin,
		IsActive: true,
	}

	if w.IsActive != nil {
		user.IsActive = *w.IsActive
	}

	if w.MutantsReviewed != nil {
		user.MutantsReviewed = *w.MutantsReviewed
	}

	return user
}

type projectWire struct {
	ID              *int    `json:"id" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	CreatedAt       string  `json:"created_at" validate:"required"`
	TotalMutants    *int    `json:"total_mutants" validate:"required,min=0"`
	ReviewedMutants *int    `json:"reviewed_mutants" validate:"required,min=0"`
	CurrentStatus   *string `json:"current_status"`
}

func (w projectWire) toModel() m.Project {
	project := m.Project{
		ID:              *w.ID,
		Name:            w.Name,
		CreatedAt:       w.CreatedAt,
		TotalMutants:    *w.TotalMutants,
		ReviewedMutants: *w.ReviewedMutants,
	}

	if w.CurrentStatus != nil {
		project.CurrentStatus = *w.CurrentStatus
	}

	return project
}

type mutantOverviewWire struct {
	ID         *int    `json:"id" validate:"required"`
	Detected   *bool   `json:"detected" validate:"required"`
	Status     string  `json:"status" validate:"mutant_status"`
	SourceFile *string `json:"sourceFile" validate:"required"`
	LineNumber *int    `json:"lineNumber" validate:"required"`
	Mutator    *string `json:"mutator" validate:"required"`
	Ranking    *int    `json:"ranking" validate:"required"`
	Rated      *bool   `json:"rated" validate:"required"`
}

func (w mutantOverviewWire) toModel() m.MutantOverview {
	return m.MutantOverview{
		ID:         *w.ID,
		Status:     m.MutantStatus(w.Status),
		Detected:   *w.Detected,
		SourceFile: *w.SourceFile,
		LineNumber: *w.LineNumber,
		Mutator:    *w.Mutator,
		Ranking:    *w.Ranking,
		Rated:      *w.Rated,
	}
}

// additionalFields accepts either a string or a string-to-string object and keeps it as text.
type additionalFields struct {
	text *string
}

func (a *additionalFields) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		a.text = nil
		return nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		if text != "" {
			a.text = &text
		}

		return nil
	}

	var fields map[string]string
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("additionalFields must be a string or an object of strings: %w", err)
	}

	if len(fields) == 0 {
		a.text = nil
		return nil
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	text = string(encoded)
	a.text = &text

	return nil
}

type mutantDetailWire struct {
	ID                *int             `json:"id" validate:"required"`
	ProjectID         *int             `json:"project_id" validate:"required"`
	Detected          *bool            `json:"detected" validate:"required"`
	Status            string           `json:"status" validate:"mutant_status"`
	NumberOfTestsRun  *int             `json:"numberOfTestsRun" validate:"required"`
	SourceFile        *string          `json:"sourceFile" validate:"required"`
	MutatedClass      *string          `json:"mutatedClass" validate:"required"`
	MutatedMethod     *string          `json:"mutatedMethod" validate:"required"`
	MethodDescription *string          `json:"methodDescription" validate:"required"`
	LineNumber        *int             `json:"lineNumber" validate:"required"`
	Mutator           *string          `json:"mutator" validate:"required"`
	KillingTest       *string          `json:"killingTest"`
	Description       *string          `json:"description" validate:"required"`
	Ranking           *int             `json:"ranking" validate:"required"`
	AdditionalFields  additionalFields `json:"additionalFields"`
}

func (w mutantDetailWire) toModel() m.MutantDetail {
	return m.MutantDetail{
		ID:                *w.ID,
		ProjectID:         *w.ProjectID,
		Status:            m.MutantStatus(w.Status),
		Detected:          *w.Detected,
		NumberOfTestsRun:  *w.NumberOfTestsRun,
		SourceFile:        *w.SourceFile,
		MutatedClass:      *w.MutatedClass,
		MutatedMethod:     *w.MutatedMethod,
		MethodDescription: *w.MethodDescription,
		LineNumber:        *w.LineNumber,
		Mutator:           *w.Mutator,
		KillingTest:       w.KillingTest,
		Description:       *w.Description,
		Ranking:           *w.Ranking,
		AdditionalFields:  w.AdditionalFields.text,
	}
}

type sourceCodeWire struct {
	ProjectID          *int    `json:"project_id" validate:"required"`
	FullyQualifiedName *string `json:"fully_qualified_name" validate:"required"`
	Content            *string `json:"content"`
	Found              *bool   `json:"found" validate:"required"`
}

func (w sourceCodeWire) toModel() m.SourceCode {
	return m.SourceCode{
		ProjectID:          *w.ProjectID,
		FullyQualifiedName: *w.FullyQualifiedName,
		Content:            w.Content,
		Found:              *w.Found,
	}
}

type formFieldWire struct {
	ID         *int   `json:"id" validate:"required"`
	ProjectID  *int   `json:"project_id" validate:"required"`
	Label      string `json:"label" validate:"required"`
	Type       string `json:"type" validate:"field_type"`
	IsRequired *bool  `json:"is_required" validate:"required"`
	Position   *int   `json:"position" validate:"required"`
}

func (w formFieldWire) toModel() m.FormField {
	return m.FormField{
		ID:         *w.ID,
		ProjectID:  *w.ProjectID,
		Label:      w.Label,
		Type:       m.FieldType(w.Type),
		IsRequired: *w.IsRequired,
		Position:   *w.Position,
	}
}

type fieldValueWire struct {
	ID          *int    `json:"id" validate:"required"`
	FormFieldID *int    `json:"form_field_id" validate:"required"`
	RatingID    *int    `json:"rating_id" validate:"required"`
	Value       *string `json:"value" validate:"required"`
}

type ratingWire struct {
	ID          *int             `json:"id" validate:"required"`
	MutantID    *int             `json:"mutant_id" validate:"required"`
	UserID      *int             `json:"user_id" validate:"required"`
	FieldValues []fieldValueWire `json:"field_values" validate:"required,dive"`
}

func (w ratingWire) toModel() m.Rating {
	rating := m.Rating{
		ID:          *w.ID,
		MutantID:    *w.MutantID,
		UserID:      *w.UserID,
		FieldValues: make([]m.FieldValue, 0, len(w.FieldValues)),
	}

	for _, fv := range w.FieldValues {
		rating.FieldValues = append(rating.FieldValues, m.FieldValue{
			ID:          *fv.ID,
			FormFieldID: *fv.FormFieldID,
			RatingID:    *fv.RatingID,
			Value:       *fv.Value,
		})
	}

	return rating
}

type fieldValueCreateWire struct {
	FormFieldID int    `json:"form_field_id"`
	Value       string `json:"value"`
}

type ratingCreateWire struct {
	FieldValues []fieldValueCreateWire `json:"field_values"`
}

func ratingCreateFromModel(sub m.RatingSubmission) ratingCreateWire {
	out := ratingCreateWire{FieldValues: make([]fieldValueCreateWire, 0, len(sub.FieldValues))}
	for _, fv := range sub.FieldValues {
		out.FieldValues = append(out.FieldValues, fieldValueCreateWire{FormFieldID: fv.FormFieldID, Value: fv.Value})
	}

	return out
}

type algorithmWire struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description" validate:"required"`
}

type algorithmListWire struct {
	Algorithms []algorithmWire `json:"algorithms" validate:"required,dive"`
}

type applyAlgorithmRequest struct {
	Algorithm string `json:"algorithm" validate:"required"`
}

type applyAlgorithmWire struct {
	Success       *bool   `json:"success" validate:"required"`
	AlgorithmName string  `json:"algorithm_name" validate:"required"`
	MutantsRanked *int    `json:"mutants_ranked" validate:"required,min=0"`
	Message       *string `json:"message" validate:"required"`
}

func (w applyAlgorithmWire) toModel() m.AlgorithmResult {
	return m.AlgorithmResult{
		Success:       *w.Success,
		AlgorithmName: w.AlgorithmName,
		MutantsRanked: *w.MutantsRanked,
		Message:       *w.Message,
	}
}
