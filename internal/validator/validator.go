package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"fintrack/internal/apperr"
)

const (
	MaxNameLength        = 50
	MaxDescriptionLength = 500
)

var (
	ErrInvalidName        = apperr.New(apperr.InvalidInput, "name must be 1-50 characters")
	ErrInvalidColor       = apperr.New(apperr.InvalidInput, "color must be #RRGGBB")
	ErrInvalidDescription = apperr.New(apperr.InvalidInput, "description must be at most 500 characters")
	ErrInvalidID          = apperr.New(apperr.InvalidInput, "invalid identifier")
)

var (
	colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	idRegex    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ValidateName trims the name and checks its length in characters.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// ValidateColor accepts an empty color.
func ValidateColor(color string) error {
	if color == "" || colorRegex.MatchString(color) {
		return nil
	}
	return ErrInvalidColor
}

func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	return nil
}

func ValidateID(id string) error {
	if !idRegex.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}
