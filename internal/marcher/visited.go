package marcher

import "github.com/MeKo-Tech/tilemarch/internal/mempool"

// VisitedMask records grid corners already walked by a trace during one scan.
// It has the same dimensions as the grid; corners on the far right and bottom
// edge fall outside it and are never reported as visited.
type VisitedMask struct {
	width  int
	height int
	cells  []bool
	marked int
}

// NewVisitedMask returns an all-false mask of the given size. Its storage
// comes from a shared pool; call Release once the mask is no longer used.
func NewVisitedMask(width, height int) *VisitedMask {
	return &VisitedMask{
		width:  width,
		height: height,
		cells:  mempool.GetBool(width * height),
	}
}

// Release returns the mask's storage to the pool. The mask reads as empty
// afterwards.
func (m *VisitedMask) Release() {
	mempool.PutBool(m.cells)
	m.cells = nil
	m.width, m.height, m.marked = 0, 0, 0
}

// IsVisited follows the same bounds policy as Grid.IsColliding.
func (m *VisitedMask) IsVisited(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.cells[y*m.width+x]
}

// Mark flags (x, y) as visited. Out-of-range corners are ignored.
func (m *VisitedMask) Mark(x, y int) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	idx := y*m.width + x
	if !m.cells[idx] {
		m.cells[idx] = true
		m.marked++
	}
}

// Count returns the number of distinct visited corners.
func (m *VisitedMask) Count() int {
	return m.marked
}
