package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out    io.Writer
	errOut io.Writer
	json   bool
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out, errOut io.Writer, json bool) *VerifyRenderer {
	return &VerifyRenderer{
		out:    out,
		errOut: errOut,
		json:   json,
	}
}

// Render renders the result of verifying a deployment
func (r *VerifyRenderer) Render(result *usecase.VerifyResult) error {
	if result.Warning != "" {
		fmt.Fprintln(r.errOut, FormatWarning(result.Warning))
	}
	if r.json {
		return writeJSON(r.out, result.Deployment)
	}

	deployment := result.Deployment
	if result.Skipped {
		color.New(color.FgYellow).Fprintf(r.out, "Contract %s is already verified. Use --force to re-verify.\n", deployment.GetShortID())
		return nil
	}

	switch deployment.Verification.Status {
	case models.VerificationStatusVerified:
		color.New(color.FgGreen).Fprintln(r.out, "✓ Verification completed successfully!")
	case models.VerificationStatusPartial:
		color.New(color.FgYellow).Fprintln(r.out, "⚠ Verification partially completed")
	default:
		color.New(color.FgRed).Fprintln(r.out, "✗ Verification failed")
	}

	r.showVerificationStatus(deployment)
	return nil
}

// showVerificationStatus displays the per-verifier details
func (r *VerifyRenderer) showVerificationStatus(deployment *models.Deployment) {
	if len(deployment.Verification.Verifiers) == 0 {
		return
	}

	title := cases.Title(language.English)
	verifiers := lo.Keys(deployment.Verification.Verifiers)
	sort.Strings(verifiers)

	fmt.Fprintln(r.out, "\nVerification Status:")
	for _, verifier := range verifiers {
		status := deployment.Verification.Verifiers[verifier]
		switch status.Status {
		case "verified":
			color.New(color.FgGreen).Fprintf(r.out, "  %s: ✓ Verified", title.String(verifier))
			if status.URL != "" {
				fmt.Fprintf(r.out, " - %s", status.URL)
			}
			fmt.Fprintln(r.out)
		case "failed":
			color.New(color.FgRed).Fprintf(r.out, "  %s: ✗ Failed", title.String(verifier))
			if status.Reason != "" {
				fmt.Fprintf(r.out, " - %s", status.Reason)
			}
			fmt.Fprintln(r.out)
		case "pending":
			color.New(color.FgYellow).Fprintf(r.out, "  %s: ⏳ Pending\n", title.String(verifier))
		}
	}
}
