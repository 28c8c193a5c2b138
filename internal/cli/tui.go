package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orientplace/pkg/netio"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// shades maps normalized cost to glyphs, lowest first.
var shades = []rune(" ·░▒▓█")

// maxViewCells caps the drawn image width; larger grids are downsampled.
const maxViewCells = 64

var (
	viewTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	viewCellStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// BatchViewModel - Interactive orientation browser
// =============================================================================

// BatchViewModel is the bubbletea model for browsing the eight images of a
// batch one orientation at a time.
type BatchViewModel struct {
	Batch   wireimg.Batch
	Current wireimg.Orientation
	Width   int
}

// NewBatchViewModel creates a viewer starting at orientation 0.
func NewBatchViewModel(b wireimg.Batch) BatchViewModel {
	return BatchViewModel{Batch: b, Width: maxViewCells}
}

func (m BatchViewModel) Init() tea.Cmd {
	return nil
}

func (m BatchViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.Current = (m.Current + wireimg.NumOrientations - 1) % wireimg.NumOrientations
		case "right", "l", "tab":
			m.Current = (m.Current + 1) % wireimg.NumOrientations
		case "0", "1", "2", "3", "4", "5", "6", "7":
			m.Current = wireimg.Orientation(msg.String()[0] - '0')
		}
	case tea.WindowSizeMsg:
		m.Width = min(maxViewCells, msg.Width-2)
		if m.Width < 8 {
			m.Width = 8
		}
	}
	return m, nil
}

func (m BatchViewModel) View() string {
	var b strings.Builder

	img := m.Batch[m.Current]
	st := img.Stats()

	b.WriteString(viewTitleStyle.Render(fmt.Sprintf("Orientation %d of %d", int(m.Current), wireimg.NumOrientations)))
	b.WriteString("\n")
	b.WriteString(viewDimStyle.Render("←/→ switch  0-7 jump  q quit"))
	b.WriteString("\n\n")
	b.WriteString(viewCellStyle.Render(shadeImage(img, m.Width)))
	b.WriteString("\n")
	b.WriteString(viewDimStyle.Render(fmt.Sprintf("grid %d  min %s  max %s  mean %s  non-zero %d",
		img.Size(), formatCost(st.Min), formatCost(st.Max), formatCost(st.Mean), st.NonZero)))

	return b.String()
}

// shadeImage draws img as text, one glyph per cell with row y = 0 at the
// bottom. Grids wider than width are sampled down to width cells.
func shadeImage(img *wireimg.Image, width int) string {
	n := img.Size()
	if n == 0 {
		return viewDimStyle.Render("(empty image)")
	}
	cells := min(n, width)
	st := img.Stats()
	span := st.Max - st.Min

	var b strings.Builder
	for row := cells - 1; row >= 0; row-- {
		y := row * n / cells
		for col := 0; col < cells; col++ {
			x := col * n / cells
			level := 0
			if span > 0 {
				frac := (img.At(x, y) - st.Min) / span
				level = int(math.Round(frac * float64(len(shades)-1)))
			}
			b.WriteRune(shades[level])
		}
		if row > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <images.json>",
		Short: "Browse a computed batch in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := netio.ReadBatchFile(args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewBatchViewModel(b), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
