package users

import "errors"

var (
	ErrNotFound    = errors.New("usuario not found")
	ErrLoginExists = errors.New("login already exists")
	ErrEmailExists = errors.New("email already exists")
)

// UserRepo stores accounts for the mock backend.
type UserRepo interface {
	Create(u Usuario) (Usuario, error)
	Update(u Usuario) (Usuario, error)
	Delete(id int64) error
	GetByID(id int64) (Usuario, error)
	GetByLogin(login string) (Usuario, error)
	List() ([]Usuario, error)
}
