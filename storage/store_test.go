package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pthm-cable/bodygraph/genome"
)

func sampleRecord(id string) GenomeRecord {
	return GenomeRecord{
		ID:         id,
		Archetype:  "grazer",
		Generation: 2,
		Genome: genome.Genome{
			Genes: []genome.ModuleGene{
				{Type: "core"},
				{Type: "fin", Params: genome.GeneParams{SizeScale: 1.1, Stats: map[string]float64{"mass": 2}}, Parent: &genome.SlotRef{Index: 0, Socket: "lateral_mount_left"}},
			},
			Constraints: genome.GenomeConstraints{MaxMass: 240, NerveCapacity: 36},
		},
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "bodies.db")),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })

			want := sampleRecord("b")
			if err := store.SaveGenome(ctx, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.SaveGenome(ctx, sampleRecord("a")); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, ok, err := store.GetGenome(ctx, "b")
			if err != nil || !ok {
				t.Fatalf("get: ok=%t err=%v", ok, err)
			}
			want.SchemaVersion = CurrentSchemaVersion
			if !reflect.DeepEqual(got, want) {
				t.Errorf("expected %+v, got %+v", want, got)
			}

			if _, ok, err := store.GetGenome(ctx, "missing"); ok || err != nil {
				t.Errorf("expected missing record, got ok=%t err=%v", ok, err)
			}

			list, err := store.ListGenomes(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
				t.Errorf("expected records a, b in order, got %+v", list)
			}
		})
	}
}

func TestStore_Upsert(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })

			r := sampleRecord("x")
			if err := store.SaveGenome(ctx, r); err != nil {
				t.Fatal(err)
			}
			r.Generation = 9
			if err := store.SaveGenome(ctx, r); err != nil {
				t.Fatal(err)
			}
			got, _, _ := store.GetGenome(ctx, "x")
			if got.Generation != 9 {
				t.Errorf("expected generation 9 after upsert, got %d", got.Generation)
			}
			list, _ := store.ListGenomes(ctx)
			if len(list) != 1 {
				t.Errorf("expected 1 record after upsert, got %d", len(list))
			}
		})
	}
}

func TestMemoryStore_CopiesGenome(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Init(ctx)

	r := sampleRecord("x")
	_ = store.SaveGenome(ctx, r)
	r.Genome.Genes[0].Type = "mutated"

	got, _, _ := store.GetGenome(ctx, "x")
	if got.Genome.Genes[0].Type != "core" {
		t.Errorf("stored genome aliased caller slice: %s", got.Genome.Genes[0].Type)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bodies.db")

	first := NewSQLiteStore(path)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := first.SaveGenome(ctx, sampleRecord("persisted")); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := NewSQLiteStore(path)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	loaded, ok, err := second.GetGenome(ctx, "persisted")
	if err != nil || !ok {
		t.Fatalf("expected persisted record, got ok=%t err=%v", ok, err)
	}
	if len(loaded.Genome.Genes) != 2 {
		t.Errorf("expected 2 genes, got %d", len(loaded.Genome.Genes))
	}
}

func TestSQLiteStore_RequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"))
	if err := store.SaveGenome(context.Background(), sampleRecord("x")); err == nil {
		t.Error("expected error before init")
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestDecodeRecord_VersionMismatch(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"id":"x","schema_version":7,"genome":{"genes":null}}`))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"", false},
		{"memory", false},
		{"sqlite", false},
		{"postgres", true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			_, err := NewStore(tt.kind, filepath.Join(t.TempDir(), "s.db"))
			if (err != nil) != tt.wantErr {
				t.Errorf("NewStore(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
		})
	}
}
