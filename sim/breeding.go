package sim

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bodygraph/systems"
)

// breeder holds data for a creature eligible to reproduce.
type breeder struct {
	entity ecs.Entity
	id     uint32
	x, y   float32
	reach  float32 // sensor range; mates must be sensed to be found
}

// pair is two breeders that will produce one child.
type pair struct {
	a, b ecs.Entity
}

// Breed pairs every mature creature off the cooldown with the nearest other
// eligible creature within its sensor range, then spawns one child per pair.
// At most maxBirths children are spawned; maxBirths <= 0 means no limit.
//
// The mate search is uncapped, so crowds larger than systems.MaxQueryResults
// still yield the true nearest partner. When sim.mate_spectrum is set only
// creatures sensing that spectrum breed, and their reach is the range of
// their sensors covering it.
func (w *World) Breed(maxBirths int) ([]ecs.Entity, error) {
	maturity := float32(w.cfg.Sim.MaturityAge)
	spectrum := w.cfg.Sim.MateSpectrum

	var breeders []breeder
	query := w.entityFilter.Query()
	for query.Next() {
		pos, _, _, _, _, sens, org := query.Get()
		if org.Age < maturity || org.ReproCooldown > 0 {
			continue
		}
		reach := sens.Suite.MaxRange
		if spectrum != "" {
			if !sens.Suite.Senses(spectrum) {
				continue
			}
			reach = sens.Suite.RangeFor(spectrum)
		}
		if reach <= 0 {
			continue
		}
		breeders = append(breeders, breeder{
			entity: query.Entity(),
			id:     org.ID,
			x:      pos.X,
			y:      pos.Y,
			reach:  float32(reach),
		})
	}
	slices.SortFunc(breeders, func(a, b breeder) int { return cmp.Compare(a.id, b.id) })

	if w.grid == nil {
		w.grid = systems.NewSpatialGrid(w.bounds, float32(w.cfg.Sim.GridCellSize))
	}
	w.grid.Clear()
	index := make(map[ecs.Entity]int, len(breeders))
	for i, b := range breeders {
		w.grid.Insert(b.entity, b.x, b.y)
		index[b.entity] = i
	}

	bred := make(map[ecs.Entity]bool)
	var pairs []pair
	var scratch []systems.Neighbor
	for i := range breeders {
		if maxBirths > 0 && len(pairs) >= maxBirths {
			break
		}
		a := &breeders[i]
		if bred[a.entity] {
			continue
		}

		scratch = w.grid.QueryRadiusAllInto(scratch[:0], a.x, a.y, a.reach, a.entity, w.posMap)
		best, found := -1, false
		var bestDist float32
		for _, n := range scratch {
			j := index[n.E]
			if bred[n.E] {
				continue
			}
			// Ties go to the lower id so pairing is deterministic.
			if !found || n.DistSq < bestDist || (n.DistSq == bestDist && breeders[j].id < breeders[best].id) {
				best, bestDist, found = j, n.DistSq, true
			}
		}
		if !found {
			continue
		}
		bred[a.entity] = true
		bred[breeders[best].entity] = true
		pairs = append(pairs, pair{a: a.entity, b: breeders[best].entity})
	}

	cooldown := float32(w.cfg.Sim.ReproCooldown)
	children := make([]ecs.Entity, 0, len(pairs))
	for _, p := range pairs {
		child, err := w.Reproduce(p.a, p.b)
		if err != nil {
			return children, fmt.Errorf("breed: %w", err)
		}
		w.orgMap.Get(p.a).ReproCooldown = cooldown
		w.orgMap.Get(p.b).ReproCooldown = cooldown
		children = append(children, child)
	}
	if len(children) > 0 {
		w.logger.Debug("bred", "tick", w.tick, "children", len(children), "eligible", len(breeders))
	}
	return children, nil
}
