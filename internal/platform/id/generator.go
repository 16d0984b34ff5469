package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates identifiers for new rows and stored objects.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues time-ordered UUIDv7 values so primary keys index well.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return v.String(), nil
}

// Valid reports whether raw parses as a UUID.
func Valid(raw string) bool {
	return uuid.Validate(raw) == nil
}
