package wireimg

import (
	"fmt"
	"slices"
)

// NumOrientations is the number of candidate orientations of a placement
// site: four rotations, each optionally mirrored.
const NumOrientations = 8

// Orientation indexes one of the eight rotation/mirror states, 0..7.
type Orientation int

// Valid reports whether o is one of the eight orientation indices.
func (o Orientation) Valid() bool {
	return o >= 0 && o < NumOrientations
}

// String returns the orientation index as "o<n>".
func (o Orientation) String() string {
	return fmt.Sprintf("o%d", int(o))
}

// Orientations returns the orientation indices in ascending order.
func Orientations() []Orientation {
	out := make([]Orientation, NumOrientations)
	for i := range out {
		out[i] = Orientation(i)
	}
	return out
}

// NetBox is the geometry of one net as seen from one orientation.
//
// StartX/StartY/EndX/EndY are the bounding box edges in grid cells; the box
// covers [StartX, EndX) × [StartY, EndY). BaseOffsetX/BaseOffsetY are added to
// the distance beyond the far edges. Weight scales every cost of the net.
type NetBox struct {
	StartX      int     `json:"start_x" toml:"start_x"`
	StartY      int     `json:"start_y" toml:"start_y"`
	EndX        int     `json:"end_x" toml:"end_x"`
	EndY        int     `json:"end_y" toml:"end_y"`
	BaseOffsetX int     `json:"base_offset_x" toml:"base_offset_x"`
	BaseOffsetY int     `json:"base_offset_y" toml:"base_offset_y"`
	Weight      float64 `json:"weight" toml:"weight"`
}

// Net is a named NetBox.
type Net struct {
	ID  string
	Box NetBox
}

// NetMap maps every orientation to its ordered net list. All eight
// orientations must be present; an orientation with no nets maps to an empty
// (or nil) slice.
type NetMap map[Orientation][]Net

// Clone returns a deep copy of m.
func (m NetMap) Clone() NetMap {
	if m == nil {
		return nil
	}
	out := make(NetMap, len(m))
	for o, nets := range m {
		out[o] = slices.Clone(nets)
	}
	return out
}

// NetCount returns the total number of nets over all orientations.
func (m NetMap) NetCount() int {
	n := 0
	for _, nets := range m {
		n += len(nets)
	}
	return n
}

// Missing returns the orientation indices absent from m, ascending.
func (m NetMap) Missing() []Orientation {
	var missing []Orientation
	for _, o := range Orientations() {
		if _, ok := m[o]; !ok {
			missing = append(missing, o)
		}
	}
	return missing
}

// NewNetMap returns a NetMap with an empty net list for every orientation.
func NewNetMap() NetMap {
	m := make(NetMap, NumOrientations)
	for _, o := range Orientations() {
		m[o] = []Net{}
	}
	return m
}
