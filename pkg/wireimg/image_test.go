package wireimg

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func TestImageRowsRoundTrip(t *testing.T) {
	rows := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	img, err := ImageFromRows(rows)
	if err != nil {
		t.Fatalf("ImageFromRows: %v", err)
	}
	if img.At(1, 2) != 6 {
		t.Errorf("At(1, 2) = %v, want 6", img.At(1, 2))
	}
	if diff := cmp.Diff(rows, img.Rows()); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}

	// Rows returns a copy.
	out := img.Rows()
	out[0][0] = 100
	if img.At(0, 0) != 1 {
		t.Error("mutating Rows() output changed the image")
	}
}

func TestImageFromRowsRejectsRagged(t *testing.T) {
	if _, err := ImageFromRows([][]float64{{1, 2}, {3}}); err == nil {
		t.Error("expected error for ragged rows")
	}
}

func TestImageFill(t *testing.T) {
	img := NewImage(3)
	img.fillColumn(1, 4)
	img.fillRow(2, 7)

	want := [][]float64{
		{0, 0, 7},
		{4, 4, 7},
		{0, 0, 7},
	}
	if diff := cmp.Diff(want, img.Rows()); diff != "" {
		t.Errorf("fill mismatch (-want +got):\n%s", diff)
	}
}

func TestImageAtPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At outside the image should panic")
		}
	}()
	NewImage(2).At(2, 0)
}

func TestImageEqual(t *testing.T) {
	a := NewImage(2)
	b := NewImage(2)
	if !a.Equal(b) {
		t.Error("zero images should be equal")
	}
	b.Set(1, 1, 0.5)
	if a.Equal(b) {
		t.Error("different cells should not be equal")
	}
	if a.Equal(NewImage(3)) {
		t.Error("different sizes should not be equal")
	}
	var nilImg *Image
	if a.Equal(nilImg) || !nilImg.Equal(nil) {
		t.Error("nil handling wrong")
	}
}

func TestImageDense(t *testing.T) {
	img := NewImage(2)
	img.Set(0, 1, 3)
	img.Set(1, 0, 5)

	d := img.Dense()
	want := mat.NewDense(2, 2, []float64{0, 3, 5, 0})
	if !mat.Equal(d, want) {
		t.Errorf("Dense() = %v, want %v", mat.Formatted(d), mat.Formatted(want))
	}

	d.Set(0, 0, 9)
	if img.At(0, 0) != 0 {
		t.Error("Dense() must not alias image storage")
	}

	if NewImage(0).Dense() != nil {
		t.Error("Dense() of empty image should be nil")
	}
}

func TestImageStats(t *testing.T) {
	img, _ := ImageFromRows([][]float64{
		{0, 2},
		{4, 0},
	})
	got := img.Stats()
	want := Stats{Min: 0, Max: 4, Sum: 6, Mean: 1.5, NonZero: 2}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	if s := NewImage(0).Stats(); s != (Stats{}) {
		t.Errorf("empty Stats() = %+v, want zero", s)
	}
}

func TestImageNonFinite(t *testing.T) {
	img := NewImage(3)
	if _, _, ok := img.NonFinite(); ok {
		t.Fatal("zero image reported non-finite")
	}
	big := math.MaxFloat64
	img.Set(2, 1, big*2)
	img.Set(2, 2, math.NaN())
	x, y, ok := img.NonFinite()
	if !ok || x != 2 || y != 1 {
		t.Errorf("NonFinite() = (%d, %d, %v), want (2, 1, true)", x, y, ok)
	}
	if _, _, ok := NewImage(0).NonFinite(); ok {
		t.Error("empty image reported non-finite")
	}
}
