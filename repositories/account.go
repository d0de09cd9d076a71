//go:generate go run go.uber.org/mock/mockgen -source=account.go -destination=../mocks/mock_account_repository.go -package=mocks
package repositories

import (
	"chat-sim/domain/chat"
	"chat-sim/errors"
	"fmt"
	"sync"
)

type IAccountRepository interface {
	CurrentUser() chat.User
	SaveUser(user chat.User) error
}

// AccountRepository keeps the profile of the acting account for the session.
// There is no backend: the profile lives as long as the process.
type AccountRepository struct {
	mu   sync.RWMutex
	user chat.User
}

func NewAccountRepository(user chat.User) *AccountRepository {
	return &AccountRepository{user: user}
}

func (r *AccountRepository) CurrentUser() chat.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.user
}

// SaveUser replaces the profile. The id cannot change.
func (r *AccountRepository) SaveUser(user chat.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID != r.user.ID {
		return fmt.Errorf("%w: %s", errors.ErrUnknownAccount, user.ID)
	}
	r.user = user
	return nil
}
