package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator адаптер go-playground/validator для echo
type Validator struct {
	validate *validator.Validate
}

// NewValidator создаёт валидатор запросов
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate проверяет структуру запроса по тегам validate
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
