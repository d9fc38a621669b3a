package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

// OutputFormat selects how a single deployment is printed
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output value
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// DeploymentRenderer renders detailed information about a single deployment
type DeploymentRenderer struct {
	out    io.Writer
	format OutputFormat
}

// NewDeploymentRenderer creates a new deployment renderer
func NewDeploymentRenderer(out io.Writer, format OutputFormat) *DeploymentRenderer {
	return &DeploymentRenderer{
		out:    out,
		format: format,
	}
}

// Render renders detailed deployment information
func (r *DeploymentRenderer) Render(deployment *models.Deployment) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(r.out, deployment)
	case FormatYAML:
		return writeYAML(r.out, deployment)
	}

	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Deployment: %s\n", deployment.ID)
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	fmt.Fprintln(r.out, "\nBasic Information:")
	fmt.Fprintf(r.out, "  Contract: %s\n", color.New(color.FgYellow).Sprint(deployment.ContractName))
	fmt.Fprintf(r.out, "  Address: %s\n", deployment.Address)
	fmt.Fprintf(r.out, "  Namespace: %s\n", deployment.Namespace)
	if deployment.NetworkName != "" {
		fmt.Fprintf(r.out, "  Network: %s (%d)\n", deployment.NetworkName, deployment.ChainID)
	} else {
		fmt.Fprintf(r.out, "  Network: %d\n", deployment.ChainID)
	}
	if deployment.Label != "" {
		fmt.Fprintf(r.out, "  Label: %s\n", color.New(color.FgMagenta).Sprint(deployment.Label))
	}

	fmt.Fprintln(r.out, "\nTransaction:")
	fmt.Fprintf(r.out, "  Hash: %s\n", deployment.TxHash)
	fmt.Fprintf(r.out, "  Deployer: %s\n", deployment.Deployer)
	fmt.Fprintf(r.out, "  Block: %d\n", deployment.BlockNumber)
	fmt.Fprintf(r.out, "  Gas Used: %d\n", deployment.GasUsed)
	if deployment.ConstructorArgs != "" {
		fmt.Fprintf(r.out, "  Constructor Args: %s\n", deployment.ConstructorArgs)
		if len(deployment.ConstructorArgsRaw) > 0 {
			fmt.Fprintf(r.out, "  Raw Args: %s\n", strings.Join(deployment.ConstructorArgsRaw, " "))
		}
	}

	fmt.Fprintln(r.out, "\nArtifact:")
	fmt.Fprintf(r.out, "  Path: %s\n", deployment.Artifact.Path)
	fmt.Fprintf(r.out, "  Format: %s\n", deployment.Artifact.Format)
	if deployment.Artifact.CompilerVersion != "" {
		fmt.Fprintf(r.out, "  Compiler: %s\n", deployment.Artifact.CompilerVersion)
	}
	fmt.Fprintf(r.out, "  Bytecode Hash: %s\n", deployment.Artifact.BytecodeHash)

	r.renderVerification(deployment.Verification)

	if len(deployment.Tags) > 0 {
		fmt.Fprintf(r.out, "\nTags: %s\n", tagsStyle.Sprint(strings.Join(deployment.Tags, ", ")))
	}

	fmt.Fprintf(r.out, "\nCreated: %s\n", deployment.CreatedAt.Format("2006-01-02 15:04:05"))
	if !deployment.UpdatedAt.Equal(deployment.CreatedAt) {
		fmt.Fprintf(r.out, "Updated: %s\n", deployment.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (r *DeploymentRenderer) renderVerification(v models.VerificationInfo) {
	fmt.Fprintln(r.out, "\nVerification:")
	fmt.Fprintf(r.out, "  Status: %s\n", colorStatus(v.Status))
	if v.EtherscanURL != "" {
		fmt.Fprintf(r.out, "  Explorer: %s\n", v.EtherscanURL)
	}
	if v.Reason != "" {
		fmt.Fprintf(r.out, "  Reason: %s\n", v.Reason)
	}

	names := lo.Keys(v.Verifiers)
	sort.Strings(names)
	for _, name := range names {
		status := v.Verifiers[name]
		line := fmt.Sprintf("  %s: %s", name, status.Status)
		if status.Reason != "" {
			line += fmt.Sprintf(" (%s)", status.Reason)
		}
		fmt.Fprintln(r.out, line)
	}
}

func colorStatus(status models.VerificationStatus) string {
	switch status {
	case models.VerificationStatusVerified:
		return verifiedStyle.Sprint(status)
	case models.VerificationStatusFailed:
		return notVerifiedStyle.Sprint(status)
	case models.VerificationStatusPartial:
		return pendingStyle.Sprint(status)
	default:
		return string(status)
	}
}
