package storage

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[string]GenomeRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[string]GenomeRecord)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, record GenomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	record.SchemaVersion = CurrentSchemaVersion
	record.Genome = record.Genome.Clone()
	s.genomes[record.ID] = record
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (GenomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.genomes[id]
	if ok {
		record.Genome = record.Genome.Clone()
	}
	return record, ok, nil
}

func (s *MemoryStore) ListGenomes(_ context.Context) ([]GenomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.genomes))
	out := make([]GenomeRecord, 0, len(ids))
	for _, id := range ids {
		record := s.genomes[id]
		record.Genome = record.Genome.Clone()
		out = append(out, record)
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
