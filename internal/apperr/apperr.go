// Package apperr define a taxonomia de erros compartilhada pelos handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation = errors.New("dados inválidos")
	ErrNotFound   = errors.New("não encontrado")
	ErrStorage    = errors.New("erro de armazenamento")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Storage embrulha uma falha do banco mantendo a causa original na cadeia.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Status traduz o erro para o código HTTP correspondente.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Write responde com o texto do erro, escondendo detalhes de falhas internas.
func Write(w http.ResponseWriter, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "erro interno"
	}
	http.Error(w, msg, status)
}
