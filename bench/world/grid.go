package world

// SpatialGrid is a dense uniform grid over a square area for broad-phase
// collision queries. Cells hold indices into a caller-owned body slice and are
// rebuilt every step without reallocating.
type SpatialGrid struct {
	Size     int     // cells per side
	CellSize float64 // world units per cell
	Origin   float64 // world coordinate of the grid's low edge on both axes
	Cells    [][]int32
}

// NewSpatialGrid creates a grid covering [-extent, extent] with the given cell
// size.
func NewSpatialGrid(extent, cellSize float64) *SpatialGrid {
	size := int(2*extent/cellSize) + 1
	return &SpatialGrid{
		Size:     size,
		CellSize: cellSize,
		Origin:   -extent,
		Cells:    make([][]int32, size*size),
	}
}

// Clear empties every cell, keeping capacity.
func (g *SpatialGrid) Clear() {
	for i := range g.Cells {
		g.Cells[i] = g.Cells[i][:0]
	}
}

// CellOf returns the clamped cell coordinates of a world position.
func (g *SpatialGrid) CellOf(x, y float64) (cx, cy int) {
	cx = g.clamp(int((x - g.Origin) / g.CellSize))
	cy = g.clamp(int((y - g.Origin) / g.CellSize))
	return cx, cy
}

// Add inserts body index idx at world position (x, y). Positions outside the
// grid land in the nearest edge cell.
func (g *SpatialGrid) Add(idx int32, x, y float64) {
	cx, cy := g.CellOf(x, y)
	i := cy*g.Size + cx
	g.Cells[i] = append(g.Cells[i], idx)
}

// Neighbors calls fn for every index in the 3x3 block of cells around
// (cx, cy).
func (g *SpatialGrid) Neighbors(cx, cy int, fn func(idx int32)) {
	for y := max(cy-1, 0); y <= min(cy+1, g.Size-1); y++ {
		for x := max(cx-1, 0); x <= min(cx+1, g.Size-1); x++ {
			for _, idx := range g.Cells[y*g.Size+x] {
				fn(idx)
			}
		}
	}
}

func (g *SpatialGrid) clamp(c int) int {
	if c < 0 {
		return 0
	}
	if c >= g.Size {
		return g.Size - 1
	}
	return c
}
