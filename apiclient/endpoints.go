package apiclient

import (
	"context"
	"strconv"

	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/trainings"
	"github.com/jrsteele09/fedteam/users"
)

const (
	EndpointLogin           = auth.LoginEndpoint
	EndpointUsuarios        = "/v1/usuarios"
	EndpointTreino          = "/v1/treino"
	EndpointTreinoWithUsers = "/v1/treino/with-users"
)

func UsuarioPath(id int64) string {
	return EndpointUsuarios + "/" + strconv.FormatInt(id, 10)
}

func TreinoPath(id int64) string {
	return EndpointTreino + "/" + strconv.FormatInt(id, 10)
}

type LoginCredentials struct {
	Login string `json:"login"`
	Senha string `json:"senha"`
}

type LoginResponse struct {
	Token      string `json:"token"`
	CdUsuario  int64  `json:"cdUsuario"`
	Login      string `json:"login"`
	Nome       string `json:"nome"`
	Email      string `json:"email"`
	ExpiresIn  int64  `json:"expiresIn"`
	CdTpAcesso int    `json:"cdTpAcesso"`
	TipoAcesso string `json:"tipoAcesso"`
}

// User maps the login payload to the identity kept in the session.
func (r LoginResponse) User() auth.User {
	return auth.User{
		ID:         strconv.FormatInt(r.CdUsuario, 10),
		Nome:       r.Nome,
		Login:      r.Login,
		Email:      r.Email,
		Perfil:     r.TipoAcesso,
		CdTpAcesso: r.CdTpAcesso,
	}
}

func (c *Client) Login(ctx context.Context, creds LoginCredentials) (LoginResponse, error) {
	return Post[LoginResponse](ctx, c, EndpointLogin, creds)
}

func (c *Client) ListUsuarios(ctx context.Context) ([]users.Usuario, error) {
	return GetWithRetry[[]users.Usuario](ctx, c, EndpointUsuarios)
}

func (c *Client) GetUsuario(ctx context.Context, id int64) (users.Usuario, error) {
	return GetWithRetry[users.Usuario](ctx, c, UsuarioPath(id))
}

func (c *Client) CreateUsuario(ctx context.Context, in users.UsuarioCreate) (users.Usuario, error) {
	return Post[users.Usuario](ctx, c, EndpointUsuarios, in)
}

func (c *Client) UpdateUsuario(ctx context.Context, id int64, in users.UsuarioUpdate) (users.Usuario, error) {
	return Put[users.Usuario](ctx, c, UsuarioPath(id), in)
}

func (c *Client) DeleteUsuario(ctx context.Context, id int64) error {
	return Delete(ctx, c, UsuarioPath(id))
}

func (c *Client) ListTreinos(ctx context.Context) ([]trainings.Treino, error) {
	return GetWithRetry[[]trainings.Treino](ctx, c, EndpointTreino)
}

// ListTreinosWithUsers returns trainings joined with their professional and
// athlete, enriched with status and progress as of now.
func (c *Client) ListTreinosWithUsers(ctx context.Context) ([]trainings.TreinoWithUsers, error) {
	list, err := GetWithRetry[[]trainings.TreinoWithUsers](ctx, c, EndpointTreinoWithUsers)
	if err != nil {
		return nil, err
	}
	now := trainings.NowTimeFunc()
	for i := range list {
		list[i].Enrich(now)
	}
	return list, nil
}

func (c *Client) GetTreino(ctx context.Context, id int64) (trainings.Treino, error) {
	return GetWithRetry[trainings.Treino](ctx, c, TreinoPath(id))
}

func (c *Client) CreateTreino(ctx context.Context, in trainings.TreinoCreate) (trainings.Treino, error) {
	return Post[trainings.Treino](ctx, c, EndpointTreino, in)
}

func (c *Client) UpdateTreino(ctx context.Context, id int64, in trainings.TreinoUpdate) (trainings.Treino, error) {
	return Put[trainings.Treino](ctx, c, TreinoPath(id), in)
}

func (c *Client) DeleteTreino(ctx context.Context, id int64) error {
	return Delete(ctx, c, TreinoPath(id))
}
