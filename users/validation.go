package users

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/utils"
	"github.com/jrsteele09/fedteam/internal/validation"
)

// ValidationErrors maps a form field to its messages.
type ValidationErrors = validation.Errors

func validateIdentity(errs ValidationErrors, login, nome, email string) {
	switch login = strings.TrimSpace(login); {
	case login == "":
		errs.Add("login", "Login é obrigatório")
	case len([]rune(login)) > LoginMaxLength:
		errs.Add("login", fmt.Sprintf("Login não pode ter mais de %d caracteres", LoginMaxLength))
	}

	switch nome = strings.TrimSpace(nome); {
	case nome == "":
		errs.Add("nome", "Nome é obrigatório")
	case len([]rune(nome)) > NomeMaxLength:
		errs.Add("nome", fmt.Sprintf("Nome não pode ter mais de %d caracteres", NomeMaxLength))
	}

	switch email = strings.TrimSpace(email); {
	case email == "":
		errs.Add("email", "E-mail é obrigatório")
	case len([]rune(email)) > EmailMaxLength:
		errs.Add("email", fmt.Sprintf("E-mail não pode ter mais de %d caracteres", EmailMaxLength))
	default:
		if _, err := mail.ParseAddress(email); err != nil {
			errs.Add("email", "E-mail inválido")
		}
	}
}

func validateAccessCode(errs ValidationErrors, code int) {
	if _, err := auth.ParseAccessCode(code); err != nil {
		errs.Add("cdTpAcesso", "Tipo de acesso inválido")
	}
}

func validateExpiry(errs ValidationErrors, dtExpiracao *string) {
	if dtExpiracao == nil || *dtExpiracao == "" {
		return
	}
	if _, err := utils.ParseDate(*dtExpiracao, nil); err != nil {
		errs.Add("dtExpiracao", "Data de expiração inválida")
	}
}

func ValidateCreate(u UsuarioCreate) error {
	errs := ValidationErrors{}
	validateIdentity(errs, u.Login, u.Nome, u.Email)
	if len([]rune(u.Senha)) < PasswordMinLength {
		errs.Add("senha", fmt.Sprintf("Senha deve ter pelo menos %d caracteres", PasswordMinLength))
	}
	if u.CdTpAcesso != nil {
		validateAccessCode(errs, *u.CdTpAcesso)
	}
	validateExpiry(errs, u.DtExpiracao)
	return errs.Err()
}

// ValidateUpdate only checks the password when a new one is supplied.
func ValidateUpdate(u UsuarioUpdate) error {
	errs := ValidationErrors{}
	validateIdentity(errs, u.Login, u.Nome, u.Email)
	if senha := utils.Value(u.Senha); senha != "" && len([]rune(senha)) < PasswordMinLength {
		errs.Add("senha", fmt.Sprintf("Senha deve ter pelo menos %d caracteres", PasswordMinLength))
	}
	validateAccessCode(errs, u.CdTpAcesso)
	validateExpiry(errs, u.DtExpiracao)
	return errs.Err()
}
