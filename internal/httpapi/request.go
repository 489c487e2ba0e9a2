package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type productRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"required,min=10,max=2000"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Stock       *int     `json:"stock" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required,min=2,max=50"`
	Brand       string   `json:"brand" validate:"omitempty,max=50"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
}

type productUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=2000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,min=2,max=50"`
	Brand       *string  `json:"brand" validate:"omitempty,max=50"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,min=5,max=500"`
}

type addressRequest struct {
	Street  string `json:"street" validate:"required,min=5,max=100"`
	City    string `json:"city" validate:"required,min=2,max=50"`
	State   string `json:"state" validate:"required,min=2,max=50"`
	ZipCode string `json:"zipCode" validate:"required,numeric,min=5,max=10"`
	Country string `json:"country" validate:"required,min=2,max=50"`
}

type orderItemRequest struct {
	ProductID string `json:"productId" validate:"required,len=24,hexadecimal"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type placeOrderRequest struct {
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress addressRequest     `json:"shippingAddress" validate:"required"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required,oneof=credit_card debit_card paypal cash_on_delivery"`
}

type statusUpdateRequest struct {
	Status      string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	TrackingURL string `json:"trackingUrl" validate:"omitempty,url"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var upper, lower, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return upper && lower && digit
	})
	return v
}

// bind decodes the JSON body into dst and validates it. On failure it
// writes the error response itself and returns false.
func bind(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeValidationErrors(w, map[string]string{"body": "Invalid JSON body"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeValidationErrors(w, validationMessages(err))
		return false
	}
	return true
}

func validationMessages(err error) map[string]string {
	out := map[string]string{}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		out["body"] = "Invalid request body"
		return out
	}
	for _, fe := range vErrs {
		out[fe.Field()] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Split(fe.Param(), " "), ", ")
	case "len", "hexadecimal":
		return "Must be a valid id"
	case "numeric":
		return "Must contain only digits"
	case "url":
		return "Must be a valid URL"
	case "password":
		return "Must contain at least one uppercase letter, one lowercase letter and one number"
	default:
		return "Is invalid"
	}
}
