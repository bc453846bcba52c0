// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
)

// CodeValidationError is the API error code for rejected parameters.
const CodeValidationError = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator. Error field names come from the
// `query` tag, then `json`, so messages name the parameter the client sent.
// The "civildate" tag accepts YYYY-MM-DD calendar dates.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(paramName)
		if err := v.RegisterValidation("civildate", func(fl validator.FieldLevel) bool {
			_, err := slots.ParseDate(fl.Field().String())
			return err == nil
		}); err != nil {
			panic(fmt.Sprintf("register civildate: %v", err))
		}
		validate = v
	})
	return validate
}

func paramName(field reflect.StructField) string {
	for _, key := range []string{"query", "json"} {
		name, _, _ := strings.Cut(field.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return field.Name
}

// FieldError is one rejected parameter.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

// Errors is the set of rejected parameters of one request. A nil Errors
// means the request is valid.
type Errors []FieldError

// Error joins the field messages.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Message
	}
	return strings.Join(parts, "; ")
}

// ToAPIError renders the errors as a VALIDATION_ERROR payload. A single
// field error puts field, tag and value in the details; several produce a
// "fields" list.
func (e Errors) ToAPIError() *models.APIError {
	switch len(e) {
	case 0:
		return &models.APIError{Code: CodeValidationError, Message: "Validation failed"}
	case 1:
		return &models.APIError{
			Code:    CodeValidationError,
			Message: e[0].Message,
			Details: map[string]interface{}{
				"field": e[0].Field,
				"tag":   e[0].Tag,
				"value": e[0].Value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(e))
	messages := make([]string, len(e))
	for i, fe := range e {
		fields[i] = map[string]interface{}{
			"field":   fe.Field,
			"tag":     fe.Tag,
			"message": fe.Message,
		}
		messages[i] = fe.Field + ": " + fe.Message
	}
	return &models.APIError{
		Code:    CodeValidationError,
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// ValidateStruct checks s against its `validate` tags and returns nil when
// it passes.
//
//	if errs := validation.ValidateStruct(&req); errs != nil {
//		respondAPIError(w, r, http.StatusBadRequest, errs.ToAPIError())
//		return
//	}
func ValidateStruct(s interface{}) Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "civildate":
		return field + " must be a calendar date in YYYY-MM-DD format"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
