package server

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/jrsteele09/fedteam/internal/validation"
	"github.com/jrsteele09/fedteam/users"
)

const passwordHint = "Use de 6 a 250 caracteres com letras maiúsculas, minúsculas e números."

var passwordCheckTmpl = template.Must(template.New("password_check").Parse(
	`{{define "password_check"}}{{if .Valid}}<span class="field-ok">Senha forte</span>{{else}}<span class="field-error">{{.Message}}</span>{{end}}{{end}}`,
))

// ValidatePasswordHandler checks password strength for the usuario form as the admin types
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		password := r.FormValue("senha")
		if password == "" {
			w.Header().Set("Content-Type", contentTypeHTML)
			w.WriteHeader(http.StatusOK)
			return
		}

		data := struct {
			Valid   bool
			Message string
		}{Valid: true}
		if err := users.ValidatePasswordStrength(password); err != nil {
			data.Valid = false
			data.Message = err.Error()
			var verrs validation.Errors
			if errors.As(err, &verrs) {
				data.Message = verrs.Summary()
			}
			w.Header().Set("HX-Trigger", "passwordInvalid")
		} else {
			w.Header().Set("HX-Trigger", "passwordValid")
		}
		renderFragment(w, r, http.StatusOK, passwordCheckTmpl, "password_check", data)
	}
}
