package trainings

import "errors"

var ErrNotFound = errors.New("treino not found")

// TreinoRepo stores trainings for the mock backend.
type TreinoRepo interface {
	Create(t Treino) (Treino, error)
	Update(t Treino) (Treino, error)
	Delete(id int64) error
	GetByID(id int64) (Treino, error)
	List() ([]Treino, error)
}
