// Package storage persists uploaded report documents in a flat namespace of
// sanitized names.
package storage

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when no document is stored under the name.
	ErrNotFound = errors.New("document not found")
	// ErrExists is returned when a document already occupies the name.
	ErrExists = errors.New("document already exists")
	// ErrInvalidName is returned for names that are not safe flat keys.
	ErrInvalidName = errors.New("invalid document name")
)

// DocumentStore writes and reads report documents by name.
type DocumentStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// Pinger is implemented by stores that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

const maxNameLength = 255

// ValidateName rejects anything that could escape the flat namespace.
func ValidateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return ErrInvalidName
	}
	if strings.Contains(name, "..") || !validName.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}
