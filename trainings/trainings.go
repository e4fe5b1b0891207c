package trainings

import (
	"time"
)

const (
	DsTreinoMaxLength = 250
	ObsMaxLength      = 2500
	MaxDurationDays   = 365
)

var NowTimeFunc = time.Now

type Treino struct {
	CdTreino         int64     `json:"cdTreino"`
	DsTreino         string    `json:"dsTreino"`
	DtCadastro       time.Time `json:"dtCadastro"`
	DtInicio         time.Time `json:"dtInicio"`
	DtFinal          time.Time `json:"dtFinal"`
	CdProfissional   int64     `json:"cdProfissional"`
	NomeProfissional string    `json:"nomeProfissional,omitempty"`
	CdAtleta         int64     `json:"cdAtleta"`
	NomeAtleta       string    `json:"nomeAtleta,omitempty"`
	Obs              string    `json:"obs,omitempty"`
}

type TreinoCreate struct {
	DsTreino       string    `json:"dsTreino"`
	DtInicio       time.Time `json:"dtInicio"`
	DtFinal        time.Time `json:"dtFinal"`
	CdProfissional int64     `json:"cdProfissional"`
	CdAtleta       int64     `json:"cdAtleta"`
	Obs            string    `json:"obs,omitempty"`
}

// TreinoUpdate only sends the fields that are set.
type TreinoUpdate struct {
	DsTreino       *string    `json:"dsTreino,omitempty"`
	DtInicio       *time.Time `json:"dtInicio,omitempty"`
	DtFinal        *time.Time `json:"dtFinal,omitempty"`
	CdProfissional *int64     `json:"cdProfissional,omitempty"`
	CdAtleta       *int64     `json:"cdAtleta,omitempty"`
	Obs            *string    `json:"obs,omitempty"`
}

// Apply returns t with the set fields of u.
func (u TreinoUpdate) Apply(t Treino) Treino {
	if u.DsTreino != nil {
		t.DsTreino = *u.DsTreino
	}
	if u.DtInicio != nil {
		t.DtInicio = *u.DtInicio
	}
	if u.DtFinal != nil {
		t.DtFinal = *u.DtFinal
	}
	if u.CdProfissional != nil {
		t.CdProfissional = *u.CdProfissional
	}
	if u.CdAtleta != nil {
		t.CdAtleta = *u.CdAtleta
	}
	if u.Obs != nil {
		t.Obs = *u.Obs
	}
	return t
}

type UsuarioTreino struct {
	CdUsuario  int64  `json:"cdUsuario"`
	Nome       string `json:"nome"`
	Login      string `json:"login"`
	Email      string `json:"email,omitempty"`
	CdTpAcesso int    `json:"cdTpAcesso"`
}

type ProfissionalInfo struct {
	UsuarioTreino
	Especialidade string `json:"especialidade,omitempty"`
	Cref          string `json:"cref,omitempty"`
}

type AtletaInfo struct {
	UsuarioTreino
	Idade  int     `json:"idade,omitempty"`
	Peso   float64 `json:"peso,omitempty"`
	Altura float64 `json:"altura,omitempty"`
}

type Status string

const (
	StatusPlanejado   Status = "planejado"
	StatusEmAndamento Status = "em_andamento"
	StatusConcluido   Status = "concluido"
	StatusCancelado   Status = "cancelado"
)

// Label is the status text shown to users.
func (s Status) Label() string {
	switch s {
	case StatusEmAndamento:
		return "Em Andamento"
	case StatusConcluido:
		return "Concluído"
	case StatusCancelado:
		return "Cancelado"
	default:
		return "Planejado"
	}
}

type TreinoWithUsers struct {
	CdTreino     int64            `json:"cdTreino"`
	DsTreino     string           `json:"dsTreino"`
	DtCadastro   time.Time        `json:"dtCadastro"`
	DtInicio     time.Time        `json:"dtInicio"`
	DtFinal      time.Time        `json:"dtFinal"`
	Obs          string           `json:"obs,omitempty"`
	Profissional ProfissionalInfo `json:"profissional"`
	Atleta       AtletaInfo       `json:"atleta"`

	DuracaoPlaneada int    `json:"duracaoPlaneada,omitempty"`
	Status          Status `json:"status,omitempty"`
	Progresso       int    `json:"progresso,omitempty"`
}
