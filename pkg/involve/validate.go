package involve

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMalformedPage indicates the payload does not match the product page shape.
	ErrMalformedPage = errors.New("malformed product page")

	// ErrMissingListings indicates the payload carries no listing sequence at data.data.
	ErrMissingListings = errors.New("product listings missing")
)

// PageValidator decodes and shape-checks product page payloads.
type PageValidator struct {
	validate *validator.Validate
}

// NewPageValidator creates a validator that reports fields by their JSON names.
func NewPageValidator() *PageValidator {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &PageValidator{validate: validate}
}

// Parse decodes payload into a ProductPage. The returned error wraps
// ErrMalformedPage or ErrMissingListings; the page is nil whenever err is set.
func (v *PageValidator) Parse(payload []byte) (*ProductPage, error) {
	var resp ProductPageResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	if resp.Data == nil || resp.Data.Listings == nil {
		return nil, ErrMissingListings
	}

	if err := v.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPage, describe(err))
	}

	return resp.Data, nil
}

// describe flattens validator errors into "field:tag" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s:%s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
