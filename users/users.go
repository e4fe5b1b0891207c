package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	LoginMaxLength    = 250
	NomeMaxLength     = 250
	EmailMaxLength    = 250
	PasswordMinLength = 6
	PasswordMaxLength = 250
)

var NowTimeFunc = time.Now

// Usuario is a user account as exposed by the backend.
type Usuario struct {
	CdUsuario    int64   `json:"cdUsuario"`
	Login        string  `json:"login"`
	Senha        string  `json:"senha,omitempty"` // hash as returned by the backend
	Nome         string  `json:"nome"`
	Email        string  `json:"email"`
	DataCadastro string  `json:"dataCadastro"`
	FlAtivo      bool    `json:"flAtivo"`
	DtExpiracao  *string `json:"dtExpiracao,omitempty"`
	CdTpAcesso   int     `json:"cdTpAcesso"`
}

// UsuarioCreate carries the plain text password; hashing is the backend's job.
type UsuarioCreate struct {
	Login       string  `json:"login"`
	Senha       string  `json:"senha"`
	Nome        string  `json:"nome"`
	Email       string  `json:"email"`
	FlAtivo     *bool   `json:"flAtivo,omitempty"`
	DtExpiracao *string `json:"dtExpiracao,omitempty"`
	CdTpAcesso  *int    `json:"cdTpAcesso,omitempty"`
}

type UsuarioUpdate struct {
	Login       string  `json:"login"`
	Senha       *string `json:"senha,omitempty"`
	Nome        string  `json:"nome"`
	Email       string  `json:"email"`
	FlAtivo     *bool   `json:"flAtivo,omitempty"`
	DtExpiracao *string `json:"dtExpiracao,omitempty"`
	CdTpAcesso  int     `json:"cdTpAcesso"`
}

// AccessLabel is the Portuguese name of the user's access code.
func (u Usuario) AccessLabel() string {
	return auth.AccessCode(u.CdTpAcesso).String()
}

func (u Usuario) Status(now time.Time) Status {
	return UserStatus(u.FlAtivo, u.DtExpiracao, now)
}

// ValidatePasswordStrength checks the password against the account rules:
// - between 6 and 250 characters
// - at least one lowercase letter, one uppercase letter and one digit
func ValidatePasswordStrength(password string) error {
	errs := ValidationErrors{}
	length := len([]rune(password))
	if length < PasswordMinLength {
		errs.Add("senha", fmt.Sprintf("Senha deve ter pelo menos %d caracteres", PasswordMinLength))
	}
	if length > PasswordMaxLength {
		errs.Add("senha", fmt.Sprintf("Senha não pode ter mais de %d caracteres", PasswordMaxLength))
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}
	if !hasLower {
		errs.Add("senha", "Senha deve conter pelo menos uma letra minúscula")
	}
	if !hasUpper {
		errs.Add("senha", "Senha deve conter pelo menos uma letra maiúscula")
	}
	if !hasNumber {
		errs.Add("senha", "Senha deve conter pelo menos um número")
	}
	return errs.Err()
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// MaskLogin keeps the first and last two characters of logins longer than four.
func MaskLogin(login string) string {
	r := []rune(login)
	if len(r) <= 4 {
		return login
	}
	return string(r[:2]) + strings.Repeat("*", len(r)-4) + string(r[len(r)-2:])
}

// FormatDataCadastro renders a timestamp as dd/mm/aaaa, hh:mm.
func FormatDataCadastro(dataCadastro string) string {
	d, err := utils.ParseDate(dataCadastro, time.Local)
	if err != nil {
		return "Data inválida"
	}
	return d.Format("02/01/2006, 15:04")
}

// FormatDataExpiracao renders an optional expiry as dd/mm/aaaa.
func FormatDataExpiracao(dtExpiracao *string) string {
	if dtExpiracao == nil || *dtExpiracao == "" {
		return "Sem expiração"
	}
	d, err := utils.ParseDate(*dtExpiracao, time.Local)
	if err != nil {
		return "Data inválida"
	}
	return d.Format("02/01/2006")
}
