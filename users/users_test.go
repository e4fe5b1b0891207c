package users_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/fedteam/internal/utils"
	"github.com/jrsteele09/fedteam/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("Senha123"))

	err := users.ValidatePasswordStrength("abc")
	require.Error(t, err)
	var verrs users.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, []string{
		"Senha deve ter pelo menos 6 caracteres",
		"Senha deve conter pelo menos uma letra maiúscula",
		"Senha deve conter pelo menos um número",
	}, verrs["senha"])
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Senha123")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("Senha123", hash))
	require.False(t, users.CheckPasswordHash("senha123", hash))
}

func TestValidateCreate(t *testing.T) {
	valid := users.UsuarioCreate{Login: "joao", Senha: "123456", Nome: "João", Email: "joao@fedteam.com"}
	require.NoError(t, users.ValidateCreate(valid))

	t.Run("limits", func(t *testing.T) {
		long := make([]rune, 251)
		for i := range long {
			long[i] = 'a'
		}
		bad := valid
		bad.Login = string(long)
		bad.Senha = "12345"
		bad.Email = "not-an-email"
		bad.CdTpAcesso = utils.Ptr(9)

		var verrs users.ValidationErrors
		require.ErrorAs(t, users.ValidateCreate(bad), &verrs)
		require.Equal(t, "Login não pode ter mais de 250 caracteres", verrs.First("login"))
		require.Equal(t, "Senha deve ter pelo menos 6 caracteres", verrs.First("senha"))
		require.Equal(t, "E-mail inválido", verrs.First("email"))
		require.Equal(t, "Tipo de acesso inválido", verrs.First("cdTpAcesso"))
		require.Empty(t, verrs.First("nome"))
	})

	t.Run("required fields", func(t *testing.T) {
		var verrs users.ValidationErrors
		require.ErrorAs(t, users.ValidateCreate(users.UsuarioCreate{}), &verrs)
		require.Len(t, verrs, 4)
	})
}

func TestValidateUpdate(t *testing.T) {
	u := users.UsuarioUpdate{Login: "joao", Nome: "João", Email: "joao@fedteam.com", CdTpAcesso: 1}
	require.NoError(t, users.ValidateUpdate(u))

	u.Senha = utils.Ptr("")
	require.NoError(t, users.ValidateUpdate(u))

	u.Senha = utils.Ptr("123")
	require.Error(t, users.ValidateUpdate(u))

	u.Senha = nil
	u.CdTpAcesso = 0
	require.Error(t, users.ValidateUpdate(u))
}

func TestUserStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := "2025-05-01"
	future := "2025-07-01T00:00:00Z"
	garbage := "soon"

	require.Equal(t, users.StatusInativo, users.UserStatus(false, &past, now))
	require.Equal(t, users.StatusExpirado, users.UserStatus(true, &past, now))
	require.Equal(t, users.StatusAtivo, users.UserStatus(true, &future, now))
	require.Equal(t, users.StatusAtivo, users.UserStatus(true, nil, now))
	require.Equal(t, users.StatusAtivo, users.UserStatus(true, &garbage, now))
}

func TestFormatting(t *testing.T) {
	require.Equal(t, "jo", users.MaskLogin("jo"))
	require.Equal(t, "joao", users.MaskLogin("joao"))
	require.Equal(t, "ma******va", users.MaskLogin("mariasilva"))

	require.Equal(t, "01/03/2025, 10:30", users.FormatDataCadastro("2025-03-01T10:30:00"))
	require.Equal(t, "Data inválida", users.FormatDataCadastro("ontem"))
	require.Equal(t, "Sem expiração", users.FormatDataExpiracao(nil))
	require.Equal(t, "31/12/2025", users.FormatDataExpiracao(utils.Ptr("2025-12-31")))
	require.Equal(t, "Data inválida", users.FormatDataExpiracao(utils.Ptr("x")))

	require.Equal(t, "Profissional", users.Usuario{CdTpAcesso: 2}.AccessLabel())
}

func TestFilters(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	list := []users.Usuario{
		{CdUsuario: 1, Nome: "Ana Souza", Login: "ana", Email: "ana@x.com", FlAtivo: true},
		{CdUsuario: 2, Nome: "Bruno", Login: "bruno", Email: "bruno@y.com", FlAtivo: false},
		{CdUsuario: 3, Nome: "Carla", Login: "carla", Email: "carla@x.com", FlAtivo: true, DtExpiracao: utils.Ptr("2025-01-01")},
	}

	require.Len(t, users.Filters{}.Apply(list, now), 3)
	require.Len(t, users.Filters{Email: "@X.com"}.Apply(list, now), 2)
	require.Len(t, users.Filters{Nome: "souza"}.Apply(list, now), 1)
	require.Len(t, users.Filters{FlAtivo: utils.Ptr(false)}.Apply(list, now), 1)

	expired := users.Filters{Expirado: utils.Ptr(true)}.Apply(list, now)
	require.Len(t, expired, 1)
	require.Equal(t, int64(3), expired[0].CdUsuario)
}
