package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bodygraph/components"
)

// Neighbor holds a nearby entity and its squared distance from the query origin.
type Neighbor struct {
	E      ecs.Entity
	DistSq float32
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
const MaxQueryResults = 128

// SpatialGrid buckets entities by position for radius queries. The world
// wraps horizontally and is walled vertically, matching MovementSystem.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	width    float32
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a spatial grid covering the given bounds.
func NewSpatialGrid(bounds Bounds, cellSize float32) *SpatialGrid {
	cols := max(1, int(math.Ceil(float64(bounds.Width/cellSize))))
	rows := max(1, int(math.Ceil(float64(bounds.Height/cellSize))))

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    bounds.Width,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float32) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryRadiusInto appends entities within radius of (x, y) to dst, up to
// MaxQueryResults, and returns the extended slice. Which entities survive the
// cap depends on grid order, not distance.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	return g.query(dst, x, y, radius, exclude, posMap, MaxQueryResults)
}

// QueryRadiusAllInto is QueryRadiusInto without the result cap.
func (g *SpatialGrid) QueryRadiusAllInto(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	return g.query(dst, x, y, radius, exclude, posMap, 0)
}

// query collects neighbours within radius; limit <= 0 means no cap.
func (g *SpatialGrid) query(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, posMap *ecs.Map1[components.Position], limit int) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)
	radiusSq := radius * radius

	// Columns wrap; a span covering the whole grid visits each column once.
	firstCol, lastCol := centerCol-cellRadius, centerCol+cellRadius
	if 2*cellRadius+1 >= g.cols {
		firstCol, lastCol = 0, g.cols-1
	}

	for c := firstCol; c <= lastCol; c++ {
		col := (c%g.cols + g.cols) % g.cols
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}
				dx, dy := WrapDelta(x, y, pos.X, pos.Y, g.width)
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DistSq: distSq})
					if limit > 0 && len(dst) >= limit {
						return dst
					}
				}
			}
		}
	}
	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col := min(max(int(x/g.cellSize), 0), g.cols-1)
	row := min(max(int(y/g.cellSize), 0), g.rows-1)
	return row*g.cols + col
}

// WrapDelta returns the shortest delta from (x1, y1) to (x2, y2) in a world
// that wraps horizontally at width.
func WrapDelta(x1, y1, x2, y2, width float32) (dx, dy float32) {
	dx = x2 - x1
	if dx > width/2 {
		dx -= width
	} else if dx < -width/2 {
		dx += width
	}
	return dx, y2 - y1
}
