package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SpinnerProgressReporter implements progress reporting with a spinner
type SpinnerProgressReporter struct {
	out            io.Writer
	spinner        *spinner.Spinner
	stages         []stageInfo
	currentStage   usecase.ExecutionStage
	stageStartTime time.Time
}

type stageInfo struct {
	Stage     usecase.ExecutionStage
	StartTime time.Time
	EndTime   time.Time
	Status    string
	Message   string
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter
// writing to out, which should be stderr so stdout stays machine readable
func NewSpinnerProgressReporter(out io.Writer) *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false
	_ = s.Color("cyan", "bold")

	return &SpinnerProgressReporter{
		out:     out,
		spinner: s,
	}
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Stage != r.currentStage {
		r.enterStage(event.Stage)
	}
	if len(r.stages) > 0 {
		r.stages[len(r.stages)-1].Message = event.Message
	}

	if event.Stage == usecase.StageCompleted {
		r.spinner.Stop()
		return
	}

	r.spinner.Suffix = " " + r.display()
	if event.Spinner {
		if !r.spinner.Active() {
			r.spinner.Start()
		}
	} else if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.pause(func() {
		color.New(color.FgCyan).Fprintln(r.out, message)
	})
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.pause(func() {
		color.New(color.FgRed).Fprintln(r.out, message)
	})
}

// pause stops the spinner while fn writes, so lines don't interleave
func (r *SpinnerProgressReporter) pause(fn func()) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	fn()
	if wasActive {
		r.spinner.Start()
	}
}

func (r *SpinnerProgressReporter) enterStage(stage usecase.ExecutionStage) {
	if len(r.stages) > 0 {
		idx := len(r.stages) - 1
		r.stages[idx].EndTime = time.Now()
		r.stages[idx].Status = "completed"
	}

	r.currentStage = stage
	r.stageStartTime = time.Now()
	r.stages = append(r.stages, stageInfo{
		Stage:     stage,
		StartTime: r.stageStartTime,
		Status:    "running",
	})
}

// display renders finished stages with their durations followed by the
// running stage and its message
func (r *SpinnerProgressReporter) display() string {
	title := cases.Title(language.English)
	parts := make([]string, 0, len(r.stages))

	for _, stage := range r.stages {
		var icon string
		var stageColor *color.Color
		switch stage.Status {
		case "completed":
			icon = "✓"
			stageColor = color.New(color.FgGreen)
		case "running":
			icon = "●"
			stageColor = color.New(color.FgYellow)
		default:
			icon = "○"
			stageColor = color.New(color.FgWhite)
		}

		name := title.String(strings.ToLower(string(stage.Stage)))
		var duration string
		if !stage.EndTime.IsZero() {
			duration = fmt.Sprintf(" (%s)", stage.EndTime.Sub(stage.StartTime).Round(time.Millisecond))
		} else if stage.Message != "" {
			duration = ": " + stage.Message
		}
		parts = append(parts, fmt.Sprintf("%s %s%s", icon, stageColor.Sprint(name), duration))
	}

	return strings.Join(parts, " → ")
}

// Ensure SpinnerProgressReporter implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
