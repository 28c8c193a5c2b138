package wireimg

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/orientplace/pkg/errors"
)

// Batch holds one image per orientation, indexed by orientation.
type Batch [NumOrientations]*Image

// Grid returns the side length shared by the images, or 0 for an empty batch.
func (b Batch) Grid() int {
	if b[0] == nil {
		return 0
	}
	return b[0].Size()
}

// Equal reports whether every image of b equals the corresponding image of o.
func (b Batch) Equal(o Batch) bool {
	for i := range b {
		if !b[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// OrientationError scopes a failure to one orientation of a batch.
type OrientationError struct {
	Orientation Orientation
	Err         error
}

// Error implements the error interface.
func (e *OrientationError) Error() string {
	return fmt.Sprintf("orientation %d: %v", int(e.Orientation), e.Err)
}

// Unwrap returns the underlying error.
func (e *OrientationError) Unwrap() error { return e.Err }

// FailedOrientations lists the orientations named by OrientationErrors in
// err, in the order they appear.
func FailedOrientations(err error) []Orientation {
	var out []Orientation
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *OrientationError:
			out = append(out, e.Orientation)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(e.Unwrap())
		}
	}
	walk(err)
	return out
}

// accumulateFn is the per-orientation kernel used by both batch drivers.
var accumulateFn = Accumulate

// Compute fills the eight orientation images one after another.
func Compute(nets NetMap, grid int) (Batch, error) {
	if err := Validate(nets, grid); err != nil {
		return Batch{}, err
	}
	var out Batch
	for _, o := range Orientations() {
		img, err := accumulateFn(nets[o], grid)
		if err != nil {
			return Batch{}, &OrientationError{Orientation: o, Err: err}
		}
		out[o] = img
	}
	return out, nil
}

// ComputeParallel fills the eight orientation images with one worker per
// orientation and returns the same Batch as [Compute].
//
// Each worker receives its own copy of the orientation's nets and allocates
// its own image. Once dispatched, workers always run to completion; ctx is
// only consulted before dispatch. A worker that panics is reported as a
// WORKER_FAILURE for its orientation, and all failures are joined into the
// returned error.
func ComputeParallel(ctx context.Context, nets NetMap, grid int) (Batch, error) {
	if err := Validate(nets, grid); err != nil {
		return Batch{}, err
	}
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	var (
		g    errgroup.Group
		out  Batch
		errs [NumOrientations]error
	)
	for _, o := range Orientations() {
		local := slices.Clone(nets[o])
		g.Go(func() error {
			img, err := runWorker(local, grid)
			if err != nil {
				errs[o] = &OrientationError{Orientation: o, Err: err}
				return errs[o]
			}
			out[o] = img
			return nil
		})
	}
	// Wait reports only the first failure; errs keeps all of them.
	_ = g.Wait()

	if err := stderrors.Join(errs[:]...); err != nil {
		return Batch{}, err
	}
	return out, nil
}

// runWorker runs the kernel and converts a panic into a WORKER_FAILURE.
func runWorker(nets []Net, grid int) (img *Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = errors.New(errors.ErrCodeWorkerFailure, "worker panicked: %v", r)
		}
	}()
	return accumulateFn(nets, grid)
}

// Validate checks a NetMap before computation: the grid must be valid, every
// orientation 0..7 present and no other key used, and every net must fit the
// grid. Coordinate problems of all orientations are joined so the caller sees
// each failing orientation at once.
func Validate(nets NetMap, grid int) error {
	if err := checkGrid(grid); err != nil {
		return err
	}
	if missing := nets.Missing(); len(missing) > 0 {
		return errors.New(errors.ErrCodeMissingOrientation,
			"net map lacks orientation(s) %v", orientationInts(missing))
	}
	for o := range nets {
		if !o.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "unknown orientation %d", int(o))
		}
	}

	var errs []error
	for _, o := range Orientations() {
		if err := validateNets(nets[o], grid); err != nil {
			errs = append(errs, &OrientationError{Orientation: o, Err: err})
		}
	}
	return stderrors.Join(errs...)
}

func orientationInts(list []Orientation) []int {
	out := make([]int, len(list))
	for i, o := range list {
		out[i] = int(o)
	}
	return out
}
