package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"live-trivia/internal/game"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("gamecode", func(fl validator.FieldLevel) bool {
			return game.ValidCode(game.NormalizeCode(fl.Field().String()))
		})
	})
}

type requestError struct {
	message string
}

func (e requestError) Error() string {
	return e.message
}

var (
	errMalformedMessage = requestError{message: "malformed message"}
	errUnknownMessage   = requestError{message: "unknown message type"}
	errAlreadyInGame    = requestError{message: "already in a game; leave it first"}
)

func validateName(name string, maxLen int) (string, error) {
	return validateText("name", name, maxLen)
}

func validateAnswerText(text string, maxLen int) (string, error) {
	return validateText("answer", text, maxLen)
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", requestError{message: fmt.Sprintf("%s is required", label)}
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", requestError{message: fmt.Sprintf("%s must be %d characters or fewer", label, maxLen)}
	}
	if !isSafeText(trimmed) {
		return "", requestError{message: fmt.Sprintf("%s contains unsupported characters", label)}
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

// Answers and names are free text in any language; only control and
// non-printable runes are rejected.
func isSafeText(text string) bool {
	if !utf8.ValidString(text) {
		return false
	}
	for _, r := range text {
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
