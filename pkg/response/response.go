package response

import (
	"errors"
	"net/http"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/logger"

	"github.com/gin-gonic/gin"
)

const accountKey = "labportal.account"

// Envelope is the body shape of every API response.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

var defaultMessages = map[int]string{
	http.StatusBadRequest:          "Requisição inválida.",
	http.StatusUnauthorized:        "Não autorizado.",
	http.StatusForbidden:           "Usuário sem permissão.",
	http.StatusNotFound:            "Recurso não encontrado.",
	http.StatusConflict:            "Registro já existe.",
	http.StatusTooManyRequests:     "Muitas tentativas, tente novamente mais tarde.",
	http.StatusInternalServerError: "Erro interno do servidor.",
}

// JSON writes a success envelope.
func JSON(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Status: status, Message: message, Data: data})
}

// SetAccount stores the authenticated account for the rest of the request.
func SetAccount(c *gin.Context, account *entity.Account) {
	c.Set(accountKey, account)
}

// GetAccount retrieves the authenticated account from the context
func GetAccount(c *gin.Context) (*entity.Account, error) {
	v, exists := c.Get(accountKey)
	if !exists {
		return nil, apperror.Unauthorized(defaultMessages[http.StatusUnauthorized])
	}
	account, ok := v.(*entity.Account)
	if !ok || account == nil {
		return nil, apperror.Unauthorized(defaultMessages[http.StatusUnauthorized])
	}
	return account, nil
}

// OptionalAccount returns the authenticated account or nil for anonymous requests.
func OptionalAccount(c *gin.Context) *entity.Account {
	account, err := GetAccount(c)
	if err != nil {
		return nil
	}
	return account
}

// Error translates err into the envelope and status code. It is the only place
// where errors become HTTP responses.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	message := defaultMessages[code]
	var data any
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && code != http.StatusInternalServerError {
		if appErr.Message != "" {
			message = appErr.Message
		}
		data = appErr.Data
	}
	if message == "" {
		message = http.StatusText(code)
	}

	// Log internal errors
	if code == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).WithError(err).Error("internal error")
	}

	c.AbortWithStatusJSON(code, Envelope{Status: code, Message: message, Data: data})
}

// Recovery converts panics into a 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).WithField("panic", recovered).Error("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
			Status:  http.StatusInternalServerError,
			Message: defaultMessages[http.StatusInternalServerError],
		})
	})
}
