package handler

import (
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo so handlers can
// call c.Validate on their request DTOs.
type RequestValidator struct {
    v *validator.Validate
}

func NewValidator() *RequestValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    // report json names rather than Go field names
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &RequestValidator{v: v}
}

// Validate returns a single readable message for the first failing field.
func (rv *RequestValidator) Validate(i interface{}) error {
    err := rv.v.Struct(i)
    if err == nil {
        return nil
    }
    verrs, ok := err.(validator.ValidationErrors)
    if !ok || len(verrs) == 0 {
        return err
    }
    fe := verrs[0]
    switch fe.Tag() {
    case "required":
        return fmt.Errorf("%s is required", fe.Field())
    case "email":
        return fmt.Errorf("%s must be a valid email", fe.Field())
    case "gt":
        return fmt.Errorf("%s must be greater than %s", fe.Field(), fe.Param())
    case "gte", "min":
        return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
    case "max", "lte":
        return fmt.Errorf("%s must be at most %s", fe.Field(), fe.Param())
    default:
        return fmt.Errorf("%s is invalid", fe.Field())
    }
}
