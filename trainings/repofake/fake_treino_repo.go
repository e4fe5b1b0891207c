package faketreinorepo

import (
	"sort"
	"sync"

	"github.com/jrsteele09/fedteam/trainings"
)

var _ trainings.TreinoRepo = (*FakeTreinoRepo)(nil)

type FakeTreinoRepo struct {
	treinos map[int64]trainings.Treino
	nextID  int64
	lock    sync.RWMutex
}

func NewFakeTreinoRepo() *FakeTreinoRepo {
	return &FakeTreinoRepo{
		treinos: make(map[int64]trainings.Treino),
		nextID:  1,
	}
}

func (r *FakeTreinoRepo) Create(t trainings.Treino) (trainings.Treino, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	t.CdTreino = r.nextID
	r.nextID++
	r.treinos[t.CdTreino] = t
	return t, nil
}

func (r *FakeTreinoRepo) Update(t trainings.Treino) (trainings.Treino, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.treinos[t.CdTreino]; !ok {
		return trainings.Treino{}, trainings.ErrNotFound
	}
	r.treinos[t.CdTreino] = t
	return t, nil
}

func (r *FakeTreinoRepo) Delete(id int64) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.treinos[id]; !ok {
		return trainings.ErrNotFound
	}
	delete(r.treinos, id)
	return nil
}

func (r *FakeTreinoRepo) GetByID(id int64) (trainings.Treino, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	t, ok := r.treinos[id]
	if !ok {
		return trainings.Treino{}, trainings.ErrNotFound
	}
	return t, nil
}

func (r *FakeTreinoRepo) List() ([]trainings.Treino, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]trainings.Treino, 0, len(r.treinos))
	for _, t := range r.treinos {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CdTreino < list[j].CdTreino
	})
	return list, nil
}
