package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"rentals/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the details list of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerOnce sync.Once

// RegisterValidators installs the custom tags on gin's validator and reports field
// names by their json tag. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		if err := v.RegisterValidation("civildate", validateCivilDate); err != nil {
			panic(fmt.Sprintf("gagal mendaftarkan validator civildate: %v", err))
		}
	})
}

// validateCivilDate accepts YYYY-MM-DD. Empty values pass; pair with required when needed.
func validateCivilDate(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	_, err := domain.ParseDate(s)
	return err == nil
}

// translateBindError turns a binding failure into a message and per-field details.
func translateBindError(err error) (string, []FieldError) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "payload tidak valid: " + err.Error(), nil
	}
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return "payload tidak valid", details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "wajib diisi"
	case "email":
		return "format email tidak valid"
	case "civildate":
		return "format tanggal harus YYYY-MM-DD"
	case "oneof":
		return "harus salah satu dari: " + fe.Param()
	case "gt":
		return "harus lebih besar dari " + fe.Param()
	case "gte", "min":
		return "minimal " + fe.Param()
	case "max":
		return "maksimal " + fe.Param()
	default:
		return fmt.Sprintf("gagal validasi '%s'", fe.Tag())
	}
}
