package core

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator hands out task identifiers. Every returned ID must be unique
// for the lifetime of the collection.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns an IDGenerator producing random (v4) UUIDs.
func NewUUIDGenerator() IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// SequentialIDGenerator produces "1", "2", ... and is meant for tests and
// deterministic fixtures.
type SequentialIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *SequentialIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return strconv.Itoa(g.next)
}
