package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

func TestLineSink(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()
	var out bytes.Buffer
	sink := NewLineSink(&out)

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageResolving, Message: "Resolving DynamicNFTMarketplace"})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageDeploying, Message: "Submitting transaction", Spinner: true})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageDeploying, Message: "tx 0xabc"})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageConfirming})
	sink.Info("note")
	sink.Error("boom")
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageCompleted})

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	assert.Len(t, lines, 6)
	assert.Equal(t, "[Resolving] Resolving DynamicNFTMarketplace", string(lines[0]))
	assert.Equal(t, "[Deploying] Submitting transaction", string(lines[1]))
	assert.Equal(t, "  tx 0xabc", string(lines[2]))
	assert.Equal(t, "note", string(lines[3]))
	assert.Equal(t, "boom", string(lines[4]))
	assert.Contains(t, string(lines[5]), "done in")
}

func TestSpinnerProgressReporter(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()
	var out bytes.Buffer
	reporter := NewSpinnerProgressReporter(&out)

	reporter.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageResolving, Message: "looking up", Spinner: true})
	reporter.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageDeploying, Message: "waiting for receipt", Spinner: true})

	display := reporter.display()
	assert.Contains(t, display, "✓ Resolving (")
	assert.Contains(t, display, "● Deploying: waiting for receipt")

	reporter.Info("info line")
	reporter.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageCompleted})
	assert.False(t, reporter.spinner.Active())
	assert.Contains(t, out.String(), "info line")
}
