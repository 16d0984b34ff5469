package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/tournament-scoring/internal/domain/accesscode"
	"golang.org/x/crypto/bcrypt"
)

// AccessCodeRepository compares presented codes against bcrypt hashes, the
// same check validate_access_code performs in Postgres.
type AccessCodeRepository struct {
	store *Store
}

func NewAccessCodeRepository(store *Store) *AccessCodeRepository {
	return &AccessCodeRepository{store: store}
}

func (r *AccessCodeRepository) Validate(_ context.Context, code string) (accesscode.Grant, bool, error) {
	r.store.mu.RLock()
	codes := append([]accesscode.AccessCode(nil), r.store.accessCodes...)
	r.store.mu.RUnlock()

	for _, item := range codes {
		if !item.Active {
			continue
		}
		err := bcrypt.CompareHashAndPassword([]byte(item.CodeHash), []byte(code))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			continue
		}
		if err != nil {
			return accesscode.Grant{}, false, fmt.Errorf("compare access code %s: %w", item.ID, err)
		}
		return accesscode.Grant{CodeID: item.ID, Role: item.Role, TeamID: item.TeamID}, true, nil
	}
	return accesscode.Grant{}, false, nil
}

func (r *AccessCodeRepository) Create(_ context.Context, item accesscode.AccessCode) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.accessCodes {
		if existing.ID == item.ID {
			return fmt.Errorf("access code %s already exists", item.ID)
		}
	}
	r.store.accessCodes = append(r.store.accessCodes, item)
	return nil
}

var _ accesscode.Repository = (*AccessCodeRepository)(nil)
