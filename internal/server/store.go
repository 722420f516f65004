package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ironsheep/core-column-mcp/internal/column"
)

var errUnknownColumn = errors.New("unknown column id")

// columnStore keeps the columns produced by tool calls so later calls can
// refer to them by id.
type columnStore struct {
	mu      sync.RWMutex
	columns map[string]*column.Column
}

func newColumnStore() *columnStore {
	return &columnStore{columns: make(map[string]*column.Column)}
}

func (s *columnStore) put(c *column.Column) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.columns[id] = c
	s.mu.Unlock()
	return id
}

func (s *columnStore) get(id string) (*column.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.columns[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownColumn, id)
	}
	return c, nil
}

func (s *columnStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.columns[id]
	delete(s.columns, id)
	return ok
}

func (s *columnStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.columns)
}
