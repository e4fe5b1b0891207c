package trainings

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jrsteele09/fedteam/internal/utils"
	"github.com/jrsteele09/fedteam/internal/validation"
)

var (
	ErrStartInPast     = errors.New("Data de início não pode ser anterior a hoje")
	ErrEndBeforeStart  = errors.New("Data final deve ser posterior à data de início")
	ErrDurationTooLong = fmt.Errorf("Duração do treino não pode exceder %d dias", MaxDurationDays)
)

const day = 24 * time.Hour

// Duration is the number of days between start and end, rounded up.
func Duration(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// ValidateDates checks a training period against today, taken from now.
func ValidateDates(start, end, now time.Time) error {
	if start.Before(utils.StartOfDay(now)) {
		return ErrStartInPast
	}
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	if Duration(start, end) > MaxDurationDays {
		return ErrDurationTooLong
	}
	return nil
}

func ValidateCreate(t TreinoCreate, now time.Time) error {
	errs := validation.Errors{}
	if strings.TrimSpace(t.DsTreino) == "" {
		errs.Add("dsTreino", "Nome do treino é obrigatório")
	}
	errs.MaxLength("dsTreino", t.DsTreino, DsTreinoMaxLength, fmt.Sprintf("Nome do treino não pode ter mais de %d caracteres", DsTreinoMaxLength))
	errs.MaxLength("obs", t.Obs, ObsMaxLength, fmt.Sprintf("Observações não podem ter mais de %d caracteres", ObsMaxLength))
	if t.CdProfissional <= 0 {
		errs.Add("cdProfissional", "Profissional é obrigatório")
	}
	if t.CdAtleta <= 0 {
		errs.Add("cdAtleta", "Atleta é obrigatório")
	}
	if t.DtInicio.IsZero() || t.DtFinal.IsZero() {
		errs.Add("datas", "Datas de início e final são obrigatórias")
	} else if err := ValidateDates(t.DtInicio, t.DtFinal, now); err != nil {
		errs.Add("datas", err.Error())
	}
	return errs.Err()
}

// ValidateUpdate checks the merged training. The start date may lie in the
// past once a training has begun.
func ValidateUpdate(t Treino) error {
	errs := validation.Errors{}
	if strings.TrimSpace(t.DsTreino) == "" {
		errs.Add("dsTreino", "Nome do treino é obrigatório")
	}
	errs.MaxLength("dsTreino", t.DsTreino, DsTreinoMaxLength, fmt.Sprintf("Nome do treino não pode ter mais de %d caracteres", DsTreinoMaxLength))
	errs.MaxLength("obs", t.Obs, ObsMaxLength, fmt.Sprintf("Observações não podem ter mais de %d caracteres", ObsMaxLength))
	if !t.DtFinal.After(t.DtInicio) {
		errs.Add("datas", ErrEndBeforeStart.Error())
	} else if Duration(t.DtInicio, t.DtFinal) > MaxDurationDays {
		errs.Add("datas", ErrDurationTooLong.Error())
	}
	return errs.Err()
}

// StatusAt derives the schedule status at now.
func StatusAt(start, end, now time.Time) Status {
	switch {
	case now.After(end):
		return StatusConcluido
	case !now.Before(start):
		return StatusEmAndamento
	default:
		return StatusPlanejado
	}
}

// Progress is the elapsed share of the training period in percent.
func Progress(start, end, now time.Time) int {
	total := Duration(start, end)
	switch {
	case total == 0 || now.After(end):
		return 100
	case now.Before(start):
		return 0
	}
	p := Duration(start, now) * 100 / total
	if p > 100 {
		p = 100
	}
	return p
}

// Enrich fills the computed fields. A cancelled training keeps its status.
func (t *TreinoWithUsers) Enrich(now time.Time) {
	t.DuracaoPlaneada = Duration(t.DtInicio, t.DtFinal)
	if t.Status != StatusCancelado {
		t.Status = StatusAt(t.DtInicio, t.DtFinal, now)
	}
	t.Progresso = Progress(t.DtInicio, t.DtFinal, now)
}

type Stats struct {
	Total       int
	EmAndamento int
	Concluidos  int
}

func ComputeStats(list []TreinoWithUsers, now time.Time) Stats {
	s := Stats{Total: len(list)}
	for _, t := range list {
		switch StatusAt(t.DtInicio, t.DtFinal, now) {
		case StatusEmAndamento:
			s.EmAndamento++
		case StatusConcluido:
			s.Concluidos++
		}
	}
	return s
}

// History returns the trainings that ended within the last periodDays days,
// most recent first. periodDays <= 0 means the whole period.
func History(list []TreinoWithUsers, now time.Time, periodDays int) []TreinoWithUsers {
	out := make([]TreinoWithUsers, 0)
	from := now.AddDate(0, 0, -periodDays)
	for _, t := range list {
		if !now.After(t.DtFinal) {
			continue
		}
		if periodDays > 0 && t.DtFinal.Before(from) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DtFinal.After(out[j].DtFinal)
	})
	return out
}
