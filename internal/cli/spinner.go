package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orientplace/pkg/wireimg"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner redraws one status line with the elapsed time until it is stopped
// or its parent context ends.
type spinner struct {
	w       io.Writer
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	start   time.Time

	mu    sync.Mutex
	width int // printable width of the last frame
}

// computeMessage is the status line shown while a batch computes.
func computeMessage(grid int, parallel bool) string {
	mode := "sequential"
	if parallel {
		mode = "parallel"
	}
	return fmt.Sprintf("Computing %d orientations on a %d×%d grid (%s)",
		wireimg.NumOrientations, grid, grid, mode)
}

// startSpinner starts animating message on w.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		message: message,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		start:   time.Now(),
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	elapsed := time.Since(s.start).Truncate(100 * time.Millisecond)
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(fmt.Sprintf("%s %s", s.message, elapsed))

	s.mu.Lock()
	defer s.mu.Unlock()
	// Pad over a longer previous frame.
	pad := s.width - lipgloss.Width(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad))
	s.width = lipgloss.Width(line)
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// Stop ends the animation, clears the line and returns the time since start.
// It may be called more than once.
func (s *spinner) Stop() time.Duration {
	s.cancel()
	<-s.stopped
	return time.Since(s.start)
}

// Cancelled reports whether the parent context, not Stop, ended the spinner.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
