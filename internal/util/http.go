package util

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kashguard/go-kms-signer/internal/api/httperrors"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// BindAndValidateBody binds the request body into v and validates its `validate` tags.
// The returned error is always an *httperrors.HTTPError ready to be rendered.
func BindAndValidateBody(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return httperrors.ErrBadRequestInvalidBody.WithInternal(err)
	}

	if err := getValidator().Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return httperrors.ErrBadRequestInvalidBody.WithInternal(err)
		}

		// first failing field only
		fe := fieldErrs[0]
		if fe.Tag() == "hexadecimal" {
			return httperrors.ErrBadRequestInvalidMessageHex.WithDetail(fe.Field()).WithInternal(err)
		}
		return httperrors.ErrBadRequestInvalidBody.
			WithDetail(fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())).
			WithInternal(err)
	}

	return nil
}
