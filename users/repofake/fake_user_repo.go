package fakeuserrepo

import (
	"sort"
	"strings"
	"sync"

	"github.com/jrsteele09/fedteam/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory account store with auto-incrementing ids.
type FakeUserRepo struct {
	users  map[int64]users.Usuario
	logins map[string]int64 // lower-cased login to id
	nextID int64
	lock   sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:  make(map[int64]users.Usuario),
		logins: make(map[string]int64),
		nextID: 1,
	}
}

func (ur *FakeUserRepo) Create(u users.Usuario) (users.Usuario, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if err := ur.checkUnique(u, 0); err != nil {
		return users.Usuario{}, err
	}
	u.CdUsuario = ur.nextID
	ur.nextID++
	ur.users[u.CdUsuario] = u
	ur.logins[strings.ToLower(u.Login)] = u.CdUsuario
	return u, nil
}

func (ur *FakeUserRepo) Update(u users.Usuario) (users.Usuario, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	existing, ok := ur.users[u.CdUsuario]
	if !ok {
		return users.Usuario{}, users.ErrNotFound
	}
	if err := ur.checkUnique(u, u.CdUsuario); err != nil {
		return users.Usuario{}, err
	}
	delete(ur.logins, strings.ToLower(existing.Login))
	ur.users[u.CdUsuario] = u
	ur.logins[strings.ToLower(u.Login)] = u.CdUsuario
	return u, nil
}

func (ur *FakeUserRepo) Delete(id int64) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	delete(ur.logins, strings.ToLower(u.Login))
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByID(id int64) (users.Usuario, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return users.Usuario{}, users.ErrNotFound
	}
	return u, nil
}

func (ur *FakeUserRepo) GetByLogin(login string) (users.Usuario, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.logins[strings.ToLower(login)]
	if !ok {
		return users.Usuario{}, users.ErrNotFound
	}
	return ur.users[id], nil
}

// List returns all accounts ordered by id.
func (ur *FakeUserRepo) List() ([]users.Usuario, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]users.Usuario, 0, len(ur.users))
	for _, u := range ur.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CdUsuario < list[j].CdUsuario
	})
	return list, nil
}

// checkUnique must be called with the lock held.
func (ur *FakeUserRepo) checkUnique(u users.Usuario, self int64) error {
	if id, ok := ur.logins[strings.ToLower(u.Login)]; ok && id != self {
		return users.ErrLoginExists
	}
	for id, other := range ur.users {
		if id != self && strings.EqualFold(other.Email, u.Email) {
			return users.ErrEmailExists
		}
	}
	return nil
}
