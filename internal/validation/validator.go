// Package validation проверяет входящие запросы с помощью go-playground/validator.
// Экземпляр валидатора один на процесс: он кэширует описание структур.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/akozadaev/route_scout/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError - ошибка проверки одного поля.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// RequestValidationError содержит все ошибки проверки запроса.
type RequestValidationError struct {
	Fields []FieldError
}

// Error объединяет сообщения всех полей.
func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// Validator возвращает общий экземпляр валидатора с зарегистрированными правилами.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// order: режим сортировки выдачи, включая подписи из интерфейса
		_ = validate.RegisterValidation("order", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseOrderMode(fl.Field().String())
			return ok
		})
	})
	return validate
}

// ValidateStruct проверяет структуру. Возвращает nil или *RequestValidationError.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: translate(fe),
		}
	}
	return &RequestValidationError{Fields: fields}
}

var messageTemplates = map[string]string{
	"required": "%s is required",
	"order":    "%s must be one of: relevance, popularity, quality",
}

var paramTemplates = map[string]string{
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"max":      "%s must be at most %s characters",
	"gtefield": "%s must be greater than or equal to %s",
	"ltefield": "%s must be less than or equal to %s",
}

func translate(fe validator.FieldError) string {
	if tpl, ok := messageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tpl, fe.Field())
	}
	if tpl, ok := paramTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tpl, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
