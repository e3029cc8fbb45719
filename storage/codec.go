package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CurrentSchemaVersion is the record layout written by this build.
const CurrentSchemaVersion = 1

// ErrVersionMismatch is returned when a stored record has an unknown schema.
var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeRecord serializes r, stamping the current schema version.
func EncodeRecord(r GenomeRecord) ([]byte, error) {
	r.SchemaVersion = CurrentSchemaVersion
	return json.Marshal(r)
}

// DecodeRecord parses a stored record and checks its schema version.
func DecodeRecord(data []byte) (GenomeRecord, error) {
	var r GenomeRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return GenomeRecord{}, err
	}
	if r.SchemaVersion != CurrentSchemaVersion {
		return GenomeRecord{}, fmt.Errorf("%w: schema %d, want %d", ErrVersionMismatch, r.SchemaVersion, CurrentSchemaVersion)
	}
	return r, nil
}
