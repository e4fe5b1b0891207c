package mockapi

import (
	"fmt"
	"time"

	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/utils"
	"github.com/jrsteele09/fedteam/trainings"
	"github.com/jrsteele09/fedteam/users"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "Senha123"

// SeedLogins maps each access code to the login of its seeded account.
var SeedLogins = map[auth.AccessCode]string{
	auth.AccessAdmin:      "admin",
	auth.AccessRestricted: "profissional",
	auth.AccessAthlete:    "atleta",
	auth.AccessVisitor:    "visitante",
	auth.AccessGuest:      "convidado",
	auth.AccessStandard:   "padrao",
}

// Seed creates one active account per access code plus an inactive and an
// expired account, and a few trainings between them.
func Seed(userRepo users.UserRepo, treinoRepo trainings.TreinoRepo, now time.Time) error {
	hash, err := users.HashPassword(SeedPassword)
	if err != nil {
		return fmt.Errorf("[mockapi Seed] %w", err)
	}
	stamp := now.Format(time.RFC3339)

	ids := make(map[auth.AccessCode]int64)
	for _, code := range auth.AccessCodes() {
		login := SeedLogins[code]
		u, err := userRepo.Create(users.Usuario{
			Login:        login,
			Senha:        hash,
			Nome:         code.String() + " Fed Team",
			Email:        login + "@fedteam.local",
			DataCadastro: stamp,
			FlAtivo:      true,
			CdTpAcesso:   int(code),
		})
		if err != nil {
			return fmt.Errorf("[mockapi Seed] create %s: %w", login, err)
		}
		ids[code] = u.CdUsuario
	}

	expired := now.AddDate(0, 0, -1).Format("2006-01-02")
	for _, u := range []users.Usuario{
		{Login: "inativo", Nome: "Conta Inativa", Email: "inativo@fedteam.local", FlAtivo: false},
		{Login: "expirado", Nome: "Conta Expirada", Email: "expirado@fedteam.local", FlAtivo: true, DtExpiracao: utils.Ptr(expired)},
	} {
		u.Senha = hash
		u.DataCadastro = stamp
		u.CdTpAcesso = int(auth.AccessAthlete)
		if _, err := userRepo.Create(u); err != nil {
			return fmt.Errorf("[mockapi Seed] create %s: %w", u.Login, err)
		}
	}

	day := utils.StartOfDay(now)
	for _, t := range []trainings.Treino{
		{DsTreino: "Preparação física", DtInicio: day.AddDate(0, 0, -10), DtFinal: day.AddDate(0, 0, 20), Obs: "Foco em resistência"},
		{DsTreino: "Hipertrofia", DtInicio: day.AddDate(0, 0, 7), DtFinal: day.AddDate(0, 2, 7)},
		{DsTreino: "Recuperação", DtInicio: day.AddDate(0, -2, 0), DtFinal: day.AddDate(0, 0, -3)},
	} {
		t.DtCadastro = now
		t.CdProfissional = ids[auth.AccessAdmin]
		t.CdAtleta = ids[auth.AccessAthlete]
		if _, err := treinoRepo.Create(t); err != nil {
			return fmt.Errorf("[mockapi Seed] create treino: %w", err)
		}
	}
	return nil
}
