package wireimg

import (
	"github.com/matzehuels/orientplace/pkg/errors"
)

// Accumulate computes the wire image of one orientation.
//
// It returns a zeroed grid×grid image with the four halo passes of every net
// applied in slice order. See the package documentation for the passes and
// the overwrite rule. Nets are validated first; the image is only allocated
// once every net is known to fit the grid.
func Accumulate(nets []Net, grid int) (*Image, error) {
	if err := checkGrid(grid); err != nil {
		return nil, err
	}
	if err := validateNets(nets, grid); err != nil {
		return nil, err
	}
	img := NewImage(grid)
	for _, n := range nets {
		overlay(img, n.Box)
	}
	return img, nil
}

// overlay writes the halo passes of one box. The box must already be valid
// for the image size.
func overlay(img *Image, b NetBox) {
	grid := img.size
	for x := 0; x < b.StartX; x++ {
		img.fillColumn(x, float64(b.StartX-x)*b.Weight)
	}
	for y := 0; y < b.StartY; y++ {
		img.fillRow(y, float64(b.StartY-y)*b.Weight)
	}
	for x := b.EndX; x < grid; x++ {
		img.fillColumn(x, float64(x-b.EndX+b.BaseOffsetX)*b.Weight)
	}
	for y := b.EndY; y < grid; y++ {
		img.fillRow(y, float64(y-b.EndY+b.BaseOffsetY)*b.Weight)
	}
}

// validateNets checks every net against the grid and returns the first
// violation found.
func validateNets(nets []Net, grid int) error {
	for _, n := range nets {
		if err := validateNet(n, grid); err != nil {
			return err
		}
	}
	return nil
}

// checkGrid accepts any non-negative side. Size caps belong to callers.
func checkGrid(grid int) error {
	if grid < 0 {
		return errors.New(errors.ErrCodeInvalidGrid, "grid must be non-negative, got %d", grid)
	}
	return nil
}

// validateNet checks the geometry of one net. Ids and weights are not
// inspected: any string names a net and the weight scales the halo as is.
func validateNet(n Net, grid int) error {
	b := n.Box
	edges := []struct {
		name  string
		value int
	}{
		{"start_x", b.StartX},
		{"start_y", b.StartY},
		{"end_x", b.EndX},
		{"end_y", b.EndY},
	}
	for _, e := range edges {
		if e.value < 0 || e.value > grid {
			return errors.New(errors.ErrCodeCoordinateOutOfRange,
				"net %q: %s=%d outside [0, %d]", n.ID, e.name, e.value, grid)
		}
	}
	if b.BaseOffsetX < 0 || b.BaseOffsetY < 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"net %q: negative base offset (%d, %d)", n.ID, b.BaseOffsetX, b.BaseOffsetY)
	}
	return nil
}
