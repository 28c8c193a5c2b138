package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orientplace/pkg/netio"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// summaryCommand creates the summary command, which prints per-orientation
// statistics of a computed batch.
func (c *CLI) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <images.json>",
		Short: "Print per-orientation statistics of a computed batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := netio.ReadBatchFile(args[0])
			if err != nil {
				return err
			}
			out := newPrinter(cmd)
			out.println(StyleTitle.Render(fmt.Sprintf("Batch %d×%d", b.Grid(), b.Grid())))
			out.println(summaryTable(b))
			return nil
		},
	}
}

// summaryTable renders the statistics of every orientation as a table. The
// orientation with the lowest total cost is highlighted.
func summaryTable(b wireimg.Batch) string {
	best := cheapestOrientation(b)
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(b))
	for o, img := range b {
		st := img.Stats()
		rows = append(rows, []string{
			wireimg.Orientation(o).String(),
			formatCost(st.Min),
			formatCost(st.Max),
			formatCost(st.Mean),
			formatCost(st.Sum),
			strconv.Itoa(st.NonZero),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Orientation", "Min", "Max", "Mean", "Sum", "Non-zero").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == best {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}

// cheapestOrientation returns the orientation with the smallest summed cost.
// Ties go to the lower index.
func cheapestOrientation(b wireimg.Batch) int {
	best := 0
	for o := 1; o < len(b); o++ {
		if b[o].Stats().Sum < b[best].Stats().Sum {
			best = o
		}
	}
	return best
}

func formatCost(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
