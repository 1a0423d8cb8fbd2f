package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	pkgerrors "dailytens/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Messages returned to authoring clients, kept stable for existing tooling.
const (
	MsgInvalidPayload = "Invalid request body format"
	MsgInvalidDate    = "Date must be in YYYY-MM-DD format"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return IsISODate(fl.Field().String())
	})
	return v
}

// IsISODate reports whether s has the YYYY-MM-DD shape. No calendar check is
// made: "2024-13-40" passes.
func IsISODate(s string) bool {
	return isoDatePattern.MatchString(s)
}

// payload mirrors the wire shape with pointers so absent and null fields can
// be told apart from empty strings.
type payload struct {
	Title          *string   `json:"title" validate:"required"`
	Date           *string   `json:"date" validate:"required"`
	CorrectAnswers []*string `json:"correctAnswers" validate:"required,len=10,dive,required"`
}

var errTrailingData = errors.New("unexpected data after JSON object")

// decodePayload matches keys exactly, unlike encoding/json's struct decoding,
// and rejects anything after the first JSON value.
func decodePayload(raw []byte) (*payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errTrailingData
	}

	var p payload
	for _, f := range []struct {
		key string
		dst interface{}
	}{
		{"title", &p.Title},
		{"date", &p.Date},
		{"correctAnswers", &p.CorrectAnswers},
	} {
		v, ok := fields[f.key]
		if !ok {
			return nil, fmt.Errorf("%s is required", f.key)
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
	}

	if err := validate.Struct(&p); err != nil {
		return nil, formatValidationError(err)
	}
	return &p, nil
}

// IsWellFormedPayload reports whether raw is a JSON object whose title and
// date are strings and whose correctAnswers is a list of exactly AnswerCount
// strings. It does not look at the date format.
func IsWellFormedPayload(raw []byte) bool {
	_, err := decodePayload(raw)
	return err == nil
}

// ParsePayload applies the shape check and then the date format check and
// returns the record. Both failures are validation errors with distinct codes.
func ParsePayload(raw []byte) (*Record, error) {
	p, err := decodePayload(raw)
	if err != nil {
		return nil, pkgerrors.NewValidationError(MsgInvalidPayload).
			WithCode(pkgerrors.CodeInvalidPayload).
			WithDetails(map[string]interface{}{"reason": err.Error()})
	}
	if !IsISODate(*p.Date) {
		return nil, pkgerrors.NewValidationError(MsgInvalidDate).WithCode(pkgerrors.CodeInvalidDate)
	}

	answers := make([]string, len(p.CorrectAnswers))
	for i, a := range p.CorrectAnswers {
		answers[i] = *a
	}
	return &Record{
		Date:           *p.Date,
		Title:          *p.Title,
		CorrectAnswers: answers,
	}, nil
}

// ValidateDate returns a validation error when date is not YYYY-MM-DD.
func ValidateDate(date string) error {
	if err := validate.Var(date, "required,isodate"); err != nil {
		return pkgerrors.NewValidationError(MsgInvalidDate).
			WithCode(pkgerrors.CodeInvalidDate).
			WithDetails(map[string]interface{}{"date": date})
	}
	return nil
}

// ValidateRecord applies the same structural rules as ParsePayload to a typed
// record, for callers that already hold one.
func ValidateRecord(r *Record) error {
	if r == nil || len(r.CorrectAnswers) != AnswerCount {
		return pkgerrors.NewValidationError(MsgInvalidPayload).WithCode(pkgerrors.CodeInvalidPayload)
	}
	return ValidateDate(r.Date)
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, formatFieldError(e))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return err
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "len":
		return fmt.Sprintf("%s must have exactly %s entries", field, e.Param())
	case "isodate":
		return fmt.Sprintf("%s must be YYYY-MM-DD", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
