// Package records is the remote collection of registered students.
package records

import (
	"context"
	"errors"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
)

var (
	// ErrExists is returned by Create when the key is already taken.
	ErrExists = errors.New("record already exists")
	// ErrUnavailable is returned when the server cannot be reached.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrCacheMiss is returned by ReadCached when nothing is known about the key.
	ErrCacheMiss = errors.New("record not in local cache")
)

// Store is one document collection keyed by normalized identifier.
// Reads return (nil, nil) when the document does not exist.
type Store interface {
	// ReadStrong reads from the authoritative server.
	ReadStrong(ctx context.Context, key string) (*models.Identity, error)
	// ReadCached reads the last-known-good copy kept on this device.
	ReadCached(ctx context.Context, key string) (*models.Identity, error)
	// Create writes a new record and fails with ErrExists if the key is taken.
	Create(ctx context.Context, rec *models.Identity) error
	// ScanAll returns every record in the collection, unordered.
	ScanAll(ctx context.Context) ([]*models.Identity, error)
}
