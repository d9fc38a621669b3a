package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// LineSink prints one line per progress event. It is used when stderr is not
// a terminal, where a spinner would only produce control characters.
type LineSink struct {
	out       io.Writer
	lastStage usecase.ExecutionStage
	startTime time.Time
}

// NewLineSink creates a new line-based progress sink
func NewLineSink(out io.Writer) *LineSink {
	return &LineSink{out: out, startTime: time.Now()}
}

// OnProgress prints the event message, prefixed by its stage on stage changes
func (s *LineSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Stage == usecase.StageCompleted {
		fmt.Fprintf(s.out, "done in %s\n", time.Since(s.startTime).Round(time.Millisecond))
		return
	}
	if event.Message == "" {
		return
	}
	if event.Stage != s.lastStage {
		s.lastStage = event.Stage
		fmt.Fprintf(s.out, "[%s] %s\n", event.Stage, event.Message)
		return
	}
	fmt.Fprintf(s.out, "  %s\n", event.Message)
}

// Info prints an info message
func (s *LineSink) Info(message string) {
	fmt.Fprintln(s.out, message)
}

// Error prints an error message
func (s *LineSink) Error(message string) {
	color.New(color.FgRed).Fprintln(s.out, message)
}

// Ensure LineSink implements ProgressSink
var _ usecase.ProgressSink = (*LineSink)(nil)
