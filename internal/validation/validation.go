package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gravadigital/navidad-api/internal/domain/vote"
)

// ValidateRequired valida que un campo no esté vacío
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", vote.ErrValidation, fieldName)
	}
	return nil
}

// ValidateMaxLength valida la longitud máxima de un string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%w: %s must be at most %d characters long", vote.ErrValidation, fieldName, maxLength)
	}
	return nil
}

// ValidateUUID valida que un string sea un UUID válido
func ValidateUUID(value, fieldName string) error {
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("%w: %s must be a valid UUID", vote.ErrValidation, fieldName)
	}
	return nil
}

// ValidateEmail valida formato básico de email
func ValidateEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: email must have a valid format", vote.ErrValidation)
	}
	return nil
}

// LoginValidation contiene validaciones para el inicio de sesión
type LoginValidation struct{}

// ValidateName valida el nombre elegido del padrón
func (v LoginValidation) ValidateName(name string) error {
	if err := ValidateRequired(name, "name"); err != nil {
		return err
	}
	return ValidateMaxLength(name, 64, "name")
}

// ValidatePassword valida la contraseña
func (v LoginValidation) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", vote.ErrValidation)
	}
	return ValidateMaxLength(password, 72, "password")
}

// VoteValidation contiene validaciones para emitir un voto
type VoteValidation struct{}

// ValidateOptionID valida el identificador de la opción
func (v VoteValidation) ValidateOptionID(optionID string) error {
	if err := ValidateRequired(optionID, "option_id"); err != nil {
		return err
	}
	return ValidateMaxLength(optionID, 64, "option_id")
}
