package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/identity"
	"github.com/shopwise/checkout/internal/middleware"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// decodeBody decodes and validates a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindInvalidRequest, "Invalid request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Wrap(apperr.KindInvalidRequest, "Invalid request body", err)
	}

	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return apperr.Wrap(apperr.KindInvalidRequest, msg, err)
}

// principal returns the caller set by the auth middleware.
func principal(r *http.Request) (*identity.Principal, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return nil, apperr.Unauthorized("Please login to continue")
	}
	return p, nil
}

// shopFromPath returns the {shopId} path parameter when the authenticated
// seller owns it.
func shopFromPath(r *http.Request) (string, error) {
	p, err := principal(r)
	if err != nil {
		return "", err
	}
	shopID := chi.URLParam(r, "shopId")
	if p.Role != identity.RoleSeller || p.ID != shopID {
		return "", apperr.Unauthorized("You are not allowed to access this shop")
	}
	return shopID, nil
}
