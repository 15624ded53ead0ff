package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ledes.com/labportal/pkg/apperror"
)

const passwordSymbols = "@$!%*?&"

// Register installs the custom validation tags on gin's validator engine.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	if err := v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return ClockTime(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("trimmin", trimmedMin)
}

// trimmedMin checks the length of a string after surrounding spaces are
// removed, the way services store it.
func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return TrimmedLen(fl.Field().String()) >= n
}

// TrimmedLen counts the characters of s without surrounding spaces.
func TrimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// ClockTime reports whether s is a 24-hour HH:MM time.
func ClockTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	return hour < 24 && minute < 60
}

// StrongPassword reports whether s has at least 10 characters drawn from
// letters, digits and @#$!%*?&, with one lower case letter, one upper case
// letter, one digit and one of @$!%*?&.
func StrongPassword(s string) bool {
	if len(s) < 10 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		case r == '#':
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

// BindError wraps a binding failure as a 400 with readable field messages.
func BindError(err error) *apperror.AppError {
	return apperror.New(http.StatusBadRequest, FormatValidationError(err), err)
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "corpo da requisição inválido"
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return "parâmetro inválido"
	}
	return "requisição inválida"
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", field)
	case "email":
		return fmt.Sprintf("%s deve ser um email válido", field)
	case "strongpassword":
		return fmt.Sprintf("%s não atende aos requisitos mínimos", field)
	case "hhmm":
		return fmt.Sprintf("%s deve estar no formato HH:MM", field)
	case "datetime":
		return fmt.Sprintf("%s deve estar no formato %s", field, fe.Param())
	case "trimmin":
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres", field, fe.Param())
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s deve ter no mínimo %s caracteres", field, fe.Param())
		}
		return fmt.Sprintf("%s deve ser no mínimo %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s deve ter no máximo %s caracteres", field, fe.Param())
		}
		return fmt.Sprintf("%s deve ser no máximo %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s inválido", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Email":       "Email",
		"Password":    "Senha",
		"FirstName":   "Nome",
		"LastName":    "Sobrenome",
		"Name":        "Nome",
		"Title":       "Título",
		"Body":        "Corpo",
		"Description": "Descrição",
		"StartDate":   "Data de início",
		"VisibleFrom": "Data de agendamento",
		"OpensAt":     "Horário de abertura",
		"ClosesAt":    "Horário de fechamento",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
