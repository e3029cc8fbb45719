// Package storage persists genomes so populations can be reloaded and rebuilt.
package storage

import (
	"context"

	"github.com/pthm-cable/bodygraph/genome"
)

// GenomeRecord is a stored genome with the identity of the creature it belongs to.
type GenomeRecord struct {
	ID            string        `json:"id"`
	SchemaVersion int           `json:"schema_version"`
	Archetype     string        `json:"archetype,omitempty"`
	Generation    uint32        `json:"generation"`
	Genome        genome.Genome `json:"genome"`
}

// Store defines persistence operations for genome records.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, record GenomeRecord) error
	GetGenome(ctx context.Context, id string) (GenomeRecord, bool, error)
	// ListGenomes returns every record ordered by id.
	ListGenomes(ctx context.Context) ([]GenomeRecord, error)
	Close() error
}
