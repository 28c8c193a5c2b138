package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/orientplace/pkg/errors"
	"github.com/matzehuels/orientplace/pkg/netio"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// verifyOpts holds the command-line flags for the verify command.
type verifyOpts struct {
	grid    int  // grid size; ignored unless gridSet
	gridSet bool // --grid was given
	rounds  int  // parallel runs compared against one sequential run
}

// verifyCommand creates the verify command, which checks that the parallel
// driver reproduces the sequential batch exactly.
func (c *CLI) verifyCommand() *cobra.Command {
	opts := verifyOpts{rounds: 3}

	cmd := &cobra.Command{
		Use:   "verify <nets.json|nets.toml>",
		Short: "Check that sequential and parallel computation agree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.gridSet = cmd.Flags().Changed("grid")
			return runVerify(cmd.Context(), newPrinter(cmd), args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.grid, "grid", opts.grid, "grid size (default: from the net file)")
	cmd.Flags().IntVar(&opts.rounds, "rounds", opts.rounds, "number of parallel runs to compare")

	return cmd
}

func runVerify(ctx context.Context, out printer, input string, opts verifyOpts) error {
	logger := loggerFromContext(ctx)

	nf, err := netio.ReadNetMapFile(input)
	if err != nil {
		return err
	}
	grid, err := resolveGrid(opts.grid, opts.gridSet, nf.Grid)
	if err != nil {
		return err
	}
	if opts.rounds < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--rounds must be at least 1")
	}

	prog := newProgress(logger)
	want, err := wireimg.Compute(nf.Nets, grid)
	if err != nil {
		return err
	}

	for round := 1; round <= opts.rounds; round++ {
		got, err := wireimg.ComputeParallel(ctx, nf.Nets, grid)
		if err != nil {
			return err
		}
		if diff := diffBatches(want, got); len(diff) > 0 {
			out.failure("Round %d of %d differs", round, opts.rounds)
			out.orientations("Mismatched orientations", diff)
			return errors.New(errors.ErrCodeInternal, "parallel batch differs from sequential batch in orientations %v", diff)
		}
		logger.Debugf("Round %d matches", round)
	}
	prog.done(fmt.Sprintf("Verified %d parallel runs", opts.rounds))

	out.success("Sequential and parallel batches match over %d runs", opts.rounds)
	out.batchStats(grid, nf.Nets.NetCount(), true, false)
	return nil
}

// diffBatches returns the orientations whose images differ.
func diffBatches(a, b wireimg.Batch) []int {
	var diff []int
	for o := range a {
		if !imagesEqual(a[o], b[o]) {
			diff = append(diff, o)
		}
	}
	return diff
}

// imagesEqual compares two images cell by cell as matrices. Empty images
// have no matrix form and compare by size.
func imagesEqual(a, b *wireimg.Image) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Size() != b.Size() {
		return false
	}
	if a.Size() == 0 {
		return true
	}
	return mat.Equal(a.Dense(), b.Dense())
}
