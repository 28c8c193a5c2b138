package wireimg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Image is a square grid of wire costs for one orientation.
//
// Cells are addressed as (x, y): x is the column index swept by the StartX and
// EndX halo passes, y the row index swept by the StartY and EndY passes.
// Storage is x-major, so a column is a contiguous slice.
type Image struct {
	size  int
	cells []float64
}

// NewImage returns a zeroed size×size image.
func NewImage(size int) *Image {
	if size < 0 {
		panic(fmt.Sprintf("wireimg: negative image size %d", size))
	}
	return &Image{size: size, cells: make([]float64, size*size)}
}

// Size returns the side length of the image.
func (m *Image) Size() int { return m.size }

// At returns the cost at (x, y).
func (m *Image) At(x, y int) float64 {
	return m.cells[m.index(x, y)]
}

// Set stores v at (x, y).
func (m *Image) Set(x, y int, v float64) {
	m.cells[m.index(x, y)] = v
}

func (m *Image) index(x, y int) int {
	if x < 0 || x >= m.size || y < 0 || y >= m.size {
		panic(fmt.Sprintf("wireimg: cell (%d, %d) outside %d×%d image", x, y, m.size, m.size))
	}
	return x*m.size + y
}

// fillColumn assigns v to every cell with the given x.
func (m *Image) fillColumn(x int, v float64) {
	col := m.cells[x*m.size : (x+1)*m.size]
	for i := range col {
		col[i] = v
	}
}

// fillRow assigns v to every cell with the given y.
func (m *Image) fillRow(y int, v float64) {
	for i := y; i < len(m.cells); i += m.size {
		m.cells[i] = v
	}
}

// Rows returns a copy of the image as nested slices indexed [x][y].
func (m *Image) Rows() [][]float64 {
	rows := make([][]float64, m.size)
	for x := range rows {
		rows[x] = append([]float64(nil), m.cells[x*m.size:(x+1)*m.size]...)
	}
	return rows
}

// ImageFromRows builds an image from nested slices indexed [x][y].
// The input must be square.
func ImageFromRows(rows [][]float64) (*Image, error) {
	m := NewImage(len(rows))
	for x, row := range rows {
		if len(row) != m.size {
			return nil, fmt.Errorf("row %d has %d cells, want %d", x, len(row), m.size)
		}
		copy(m.cells[x*m.size:], row)
	}
	return m, nil
}

// Equal reports whether m and o have the same size and identical cells.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.size != o.size {
		return false
	}
	for i, v := range m.cells {
		if o.cells[i] != v {
			return false
		}
	}
	return true
}

// Dense returns a copy of the image as a gonum matrix whose row index is x
// and column index is y. It returns nil for an empty image, which gonum
// cannot represent.
func (m *Image) Dense() *mat.Dense {
	if m.size == 0 {
		return nil
	}
	return mat.NewDense(m.size, m.size, append([]float64(nil), m.cells...))
}

// NonFinite returns the first cell holding NaN or ±Inf, scanning x-major.
// A large weight times a halo distance can overflow float64.
func (m *Image) NonFinite() (x, y int, ok bool) {
	for i, v := range m.cells {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i / m.size, i % m.size, true
		}
	}
	return 0, 0, false
}

// Stats summarizes the cost distribution of an image.
type Stats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Sum     float64 `json:"sum"`
	Mean    float64 `json:"mean"`
	NonZero int     `json:"non_zero"`
}

// Stats computes summary statistics. An empty image yields the zero Stats.
func (m *Image) Stats() Stats {
	if len(m.cells) == 0 {
		return Stats{}
	}
	s := Stats{
		Min: floats.Min(m.cells),
		Max: floats.Max(m.cells),
		Sum: floats.Sum(m.cells),
	}
	s.Mean = s.Sum / float64(len(m.cells))
	for _, v := range m.cells {
		if v != 0 {
			s.NonZero++
		}
	}
	return s
}
