package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shareit/internal/apperr"
)

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}

// bind decodes the body into req and validates it, reporting both kinds of
// failure as ValidationError.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			fields := make([]string, 0, len(ves))
			for _, fe := range ves {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return apperr.Validation("invalid fields: %s", strings.Join(fields, ", "))
		}
		return apperr.Validation("invalid body")
	}
	return nil
}
