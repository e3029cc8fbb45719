package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/bodygraph/genome"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// GenomeSnapshot holds every genome of a population at one tick.
type GenomeSnapshot struct {
	Version int             `json:"version"`
	Tick    int32           `json:"tick"`
	Seed    uint64          `json:"seed,omitempty"`
	Genomes []genome.Genome `json:"genomes"`
}

// SaveGenomes writes a snapshot to dir and returns the file path.
func SaveGenomes(snapshot *GenomeSnapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("genomes_%d.json", snapshot.Tick))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadGenomes reads a snapshot from disk.
func LoadGenomes(path string) (*GenomeSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot GenomeSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}
	return &snapshot, nil
}
