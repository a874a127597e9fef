package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cleared-dev/disburse/internal/model"
)

// ErrNotFound is returned when an ownership has no reference accounts.
var ErrNotFound = errors.New("ownership not found")

// Service provides in-memory lookup of reference accounts by ownership.
type Service struct {
	entries     []Entry
	byOwnership map[string]model.ReferenceAccounts
}

// NewService creates a Service. Later entries for the same ownership and
// role replace earlier ones.
func NewService(entries []Entry) *Service {
	byOwnership := make(map[string]model.ReferenceAccounts)
	for _, e := range entries {
		ref := byOwnership[e.Ownership]
		ref.Ownership = e.Ownership
		switch e.Role {
		case model.RolePlatformFee:
			ref.PlatformFeeAccount = e.Account
		case model.RoleExpense:
			ref.ExpenseAccount = e.Account
		}
		byOwnership[e.Ownership] = ref
	}
	return &Service{entries: entries, byOwnership: byOwnership}
}

// Load reads a reference accounts CSV file and returns a Service.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference accounts: %w", err)
	}
	defer f.Close()

	entries, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading reference accounts: %w", err)
	}
	return NewService(entries), nil
}

// All returns all entries in file order.
func (s *Service) All() []Entry {
	return s.entries
}

// Lookup returns the reference accounts for an ownership.
func (s *Service) Lookup(ownership string) (model.ReferenceAccounts, error) {
	ref, ok := s.byOwnership[ownership]
	if !ok {
		return model.ReferenceAccounts{}, fmt.Errorf("%w: %q", ErrNotFound, ownership)
	}
	return ref, nil
}

// Exists reports whether an ownership has any reference account.
func (s *Service) Exists(ownership string) bool {
	_, ok := s.byOwnership[ownership]
	return ok
}

// Ownerships returns all known ownerships, sorted.
func (s *Service) Ownerships() []string {
	out := make([]string, 0, len(s.byOwnership))
	for o := range s.byOwnership {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// Save writes the entries to path, creating parent directories.
func (s *Service) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating reference accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating reference accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.entries); err != nil {
		return fmt.Errorf("writing reference accounts: %w", err)
	}
	return nil
}
