package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/geocoder89/fitspark/internal/validation"
	"github.com/gin-gonic/gin"
)

// BindJSON binds and validates a JSON body, answering 400 with field details
// when it does not fit out.
func BindJSON(ctx *gin.Context, out any) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondBadRequest(ctx, "Invalid request body", parseBindError(err, out))

		return false
	}

	return true
}

// BindForm binds a posted form into out. Field failures come back as a
// *validation.Error keyed by the form names so the page can show them next to
// their inputs.
func BindForm(ctx *gin.Context, out any) *validation.Error {
	err := ctx.ShouldBind(out)
	if err == nil {
		return nil
	}

	if fields := validation.Fields(err, out); fields != nil {
		return &validation.Error{Fields: fields}
	}

	var verr validation.Error
	verr.Add("", "form", "The form could not be read. Please try again.")
	return &verr
}

func parseBindError(err error, out any) any {
	if fields := validation.Fields(err, out); fields != nil {
		return gin.H{"fields": fields}
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return gin.H{
			"json": "invalid_json_syntax",
		}
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := validation.JSONPath(baseStructType(out), strings.Split(strings.TrimSpace(unmatchedTypeError.Field), "."))

		if field == "" {
			field = strings.TrimSpace(unmatchedTypeError.Field)
		}

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []validation.FieldError{
				{
					Field:   field,
					Rule:    "type",
					Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
				},
			},
		}
	}

	// final fallback if the error could not be deciphered
	return gin.H{"reason": err.Error()}
}

func baseStructType(v any) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}
