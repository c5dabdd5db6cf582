package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/quotelink/referral-api/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate aplica as tags `validate` do DTO e devolve apperr.ErrValidation
// com a lista de campos reprovados.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("%v", err)
	}
	campos := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		campos = append(campos, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperr.Validation("campos inválidos: %s", strings.Join(campos, ", "))
}
