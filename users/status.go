package users

import (
	"time"

	"github.com/jrsteele09/fedteam/internal/utils"
)

type Status string

const (
	StatusAtivo    Status = "ATIVO"
	StatusInativo  Status = "INATIVO"
	StatusExpirado Status = "EXPIRADO"
)

// IsExpired reports whether dtExpiracao lies before now. Missing or unreadable dates never expire.
func IsExpired(dtExpiracao *string, now time.Time) bool {
	if dtExpiracao == nil || *dtExpiracao == "" {
		return false
	}
	d, err := utils.ParseDate(*dtExpiracao, now.Location())
	if err != nil {
		return false
	}
	return d.Before(now)
}

// UserStatus: inactive wins over expired.
func UserStatus(flAtivo bool, dtExpiracao *string, now time.Time) Status {
	if !flAtivo {
		return StatusInativo
	}
	if IsExpired(dtExpiracao, now) {
		return StatusExpirado
	}
	return StatusAtivo
}
