package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Field error codes
const (
	CodeRequired      = "Required"
	CodeInvalidAmount = "InvalidAmount"
)

// Draft is an unvalidated, user-supplied candidate expense.
// Amount and Date arrive as raw form input.
type Draft struct {
	Title    string `json:"title" validate:"notblank"`
	Amount   string `json:"amount" validate:"positive_amount"`
	Category string `json:"category"`
	Date     string `json:"date" validate:"calendar_date"`
	Notes    string `json:"notes"`
}

// FieldError describes a single invalid draft field
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors is the full set of field errors found in a draft
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid expense: " + strings.Join(parts, "; ")
}

// ByField indexes the messages by field name
func (v ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Field] = fe.Message
	}
	return out
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		_, err := ParseAmount(fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	}))

	return v
}

// Validate checks every rule of a draft and returns either the normalized
// record or all the field errors together.
func Validate(d Draft) (ValidatedExpense, error) {
	if err := validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ValidatedExpense{}, fmt.Errorf("failed to validate expense: %w", err)
		}

		out := make(ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, toFieldError(fe))
		}
		return ValidatedExpense{}, out
	}

	amount, _ := ParseAmount(d.Amount)
	date, _ := ParseDate(d.Date)

	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = Categories[0]
	}

	return ValidatedExpense{
		Title:    strings.TrimSpace(d.Title),
		Amount:   amount,
		Category: category,
		Date:     date,
		Notes:    d.Notes,
	}, nil
}

func toFieldError(fe validator.FieldError) FieldError {
	switch fe.Tag() {
	case "positive_amount":
		return FieldError{Field: fe.Field(), Code: CodeInvalidAmount, Message: "Amount must be positive"}
	case "calendar_date":
		return FieldError{Field: fe.Field(), Code: CodeRequired, Message: "Date is required"}
	case "notblank":
		return FieldError{Field: fe.Field(), Code: CodeRequired, Message: "Title is required"}
	default:
		return FieldError{Field: fe.Field(), Code: CodeRequired, Message: fe.Error()}
	}
}

// ParseAmount parses a monetary amount and rounds it to the nearest cent.
// The rounded value must be strictly positive.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("amount is empty")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount is not numeric: %w", err)
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, errors.New("amount must be a positive value")
	}

	return amount, nil
}

// ParseDate accepts a calendar date (YYYY-MM-DD) or an ISO-8601 date-time and
// returns midnight UTC of that calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("date is empty")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %q", s)
}
