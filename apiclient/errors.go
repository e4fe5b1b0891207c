package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Friendly messages shown to users.
const (
	MsgNetworkError       = "Erro de conexão. Verifique sua internet."
	MsgServerError        = "Erro interno do servidor. Tente novamente."
	MsgNotFound           = "Recurso não encontrado."
	MsgUnauthorized       = "Não autorizado. Faça login novamente."
	MsgGenericError       = "Ocorreu um erro inesperado."
	MsgBadRequest         = "Dados inválidos enviados."
	MsgForbidden          = "Acesso negado."
	MsgUsuarioNotFound    = "Usuário não encontrado."
	MsgLoginAlreadyExists = "Login já existe no sistema."
	MsgEmailAlreadyExists = "E-mail já existe no sistema."
	MsgInvalidCredentials = "Login ou senha inválidos."
	MsgUserExpired        = "Usuário expirado."
	MsgUserInactive       = "Usuário inativo."
)

// APIError is a failed backend call. Status 0 means no response was received.
type APIError struct {
	Method     string
	Path       string
	Status     int
	StatusText string
	Message    string
	Body       []byte
	Err        error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: no response: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.StatusText)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Message turns an error into text fit for a notification.
func Message(err error) string {
	if err == nil {
		return ""
	}
	apiErr, ok := asAPIError(err)
	if !ok {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return MsgGenericError
	}
	if apiErr.Status == 0 {
		return MsgNetworkError
	}

	switch apiErr.Status {
	case http.StatusBadRequest:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgBadRequest
	case http.StatusUnauthorized:
		return MsgUnauthorized
	case http.StatusForbidden:
		return MsgForbidden
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusInternalServerError:
		return MsgServerError
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return fmt.Sprintf("Erro %d: %s", apiErr.Status, apiErr.StatusText)
}

// BackendMessage returns the message the backend sent, if any.
func BackendMessage(err error) string {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Message
	}
	return ""
}

func StatusCode(err error) int {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

func IsNetworkError(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Status == 0
}

func IsServerError(err error) bool {
	return StatusCode(err) >= 500
}

func IsClientError(err error) bool {
	s := StatusCode(err)
	return s >= 400 && s < 500
}
