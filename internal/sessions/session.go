package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/kvstore"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
)

// Keys of the local session record.
const (
	KeyIdentifier = "user_identifier"
	KeyName       = "user_name"
	KeyEmail      = "user_email"
)

var allKeys = []string{KeyIdentifier, KeyName, KeyEmail}

// Store reads and writes the signed-in student in a local key-value store.
type Store struct {
	kv kvstore.Store
}

func NewStore(kv kvstore.Store) *Store { return &Store{kv: kv} }

// Load returns the stored fields. Absent keys are returned as empty strings;
// the second result is false when none of the keys are present.
func (s *Store) Load(ctx context.Context) (models.Session, bool, error) {
	var out models.Session
	found := false
	for _, k := range allKeys {
		v, ok, err := s.kv.Get(ctx, k)
		if err != nil {
			return models.Session{}, false, fmt.Errorf("read %s: %w", k, err)
		}
		if !ok {
			continue
		}
		found = true
		switch k {
		case KeyIdentifier:
			out.Identifier = v
		case KeyName:
			out.Name = v
		case KeyEmail:
			out.Email = v
		}
	}
	return out, found, nil
}

// Active reports whether the record describes a signed-in student.
func Active(s models.Session) bool {
	return s.Identifier != "" && s.Name != ""
}

// Save writes all three fields.
func (s *Store) Save(ctx context.Context, sess models.Session) error {
	vals := map[string]string{
		KeyIdentifier: sess.Identifier,
		KeyName:       sess.Name,
		KeyEmail:      sess.Email,
	}
	for _, k := range allKeys {
		if err := s.kv.Set(ctx, k, vals[k]); err != nil {
			return fmt.Errorf("write %s: %w", k, err)
		}
	}
	return nil
}

// Clear removes all three fields. Engines that cannot delete get the key
// overwritten with an empty string instead.
func (s *Store) Clear(ctx context.Context) error {
	for _, k := range allKeys {
		err := s.kv.Delete(ctx, k)
		if errors.Is(err, kvstore.ErrDeleteUnsupported) {
			err = s.kv.Set(ctx, k, "")
		}
		if err != nil {
			return fmt.Errorf("clear %s: %w", k, err)
		}
	}
	return nil
}
