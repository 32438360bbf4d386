package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// newValidator crea el validador de requests con soporte para decimal.Decimal:
// los decimales se validan por su representación en texto y "dpositive" exige > 0.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("dpositive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	return v
}

// parseAndValidate decodifica el body y aplica las reglas validate de la struct.
// Si falla, ya respondió 400 y devuelve ok=false.
func parseAndValidate(c *fiber.Ctx, v *validator.Validate, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := v.Struct(out); err != nil {
		return false, badRequest(c, "VALIDATION", validationMessage(err))
	}
	return true, nil
}

// validationMessage resume los campos inválidos en un solo mensaje.
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Namespace()+": "+fe.Tag())
	}
	return "datos inválidos: " + strings.Join(msgs, "; ")
}
