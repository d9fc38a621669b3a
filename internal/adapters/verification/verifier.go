package verification

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

const (
	VerifierEtherscan = "etherscan"
	VerifierSourcify  = "sourcify"
	VerifierHardhat   = "hardhat"

	statusVerified = "verified"
	statusFailed   = "failed"
)

// CommandRunner runs an external command in dir and returns combined output
type CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Verifier publishes contract source through the toolchain that built it:
// forge verify-contract for Foundry artifacts, hardhat verify for Hardhat ones
type Verifier struct {
	projectRoot string
	run         CommandRunner
	explorer    usecase.VerificationStatusChecker
	log         *slog.Logger
}

// NewVerifier creates a new verifier
func NewVerifier(cfg *config.RuntimeConfig, explorer usecase.VerificationStatusChecker, log *slog.Logger) *Verifier {
	return NewVerifierWithRunner(cfg, explorer, log, ExecRunner)
}

// NewVerifierWithRunner creates a verifier with a custom command runner
func NewVerifierWithRunner(cfg *config.RuntimeConfig, explorer usecase.VerificationStatusChecker, log *slog.Logger, run CommandRunner) *Verifier {
	return &Verifier{
		projectRoot: cfg.ProjectRoot,
		run:         run,
		explorer:    explorer,
		log:         log,
	}
}

// Verify performs contract verification and records per-verifier results on
// the deployment. It fails only when no verifier succeeded.
func (v *Verifier) Verify(ctx context.Context, deployment *models.Deployment, network *config.Network) error {
	if network.IsLocal() {
		return fmt.Errorf("%w: %s is a local network", domain.ErrVerificationFailed, network.Name)
	}

	if deployment.Verification.Verifiers == nil {
		deployment.Verification.Verifiers = make(map[string]models.VerifierStatus)
	}

	var result *multierror.Error
	record := func(verifier, url string, err error) {
		if err != nil {
			deployment.Verification.Verifiers[verifier] = models.VerifierStatus{Status: statusFailed, Reason: err.Error()}
			result = multierror.Append(result, fmt.Errorf("%s: %w", verifier, err))
			return
		}
		deployment.Verification.Verifiers[verifier] = models.VerifierStatus{Status: statusVerified, URL: url}
	}

	explorerURL := buildExplorerURL(network, deployment.Address)

	if v.alreadyVerified(ctx, network, deployment.Address) {
		v.log.Info("contract source already published", "address", deployment.Address)
		if deployment.Artifact.Format == models.ArtifactFormatHardhat {
			record(VerifierHardhat, explorerURL, nil)
		} else {
			record(VerifierEtherscan, explorerURL, nil)
		}
		updateOverallStatus(deployment)
		return nil
	}

	switch deployment.Artifact.Format {
	case models.ArtifactFormatHardhat:
		record(VerifierHardhat, explorerURL, v.verifyWithHardhat(ctx, deployment, network))
	default:
		var etherscanErr error
		if network.ExplorerAPIKey == "" {
			etherscanErr = fmt.Errorf("no explorer API key (set ETHERSCAN_API_KEY or [etherscan.%s] in foundry.toml)", network.Name)
		} else {
			etherscanErr = v.executeVerify(ctx, "forge", BuildEtherscanVerifyArgs(deployment, network))
		}
		record(VerifierEtherscan, explorerURL, etherscanErr)
		record(VerifierSourcify, buildSourcifyURL(network, deployment.Address),
			v.executeVerify(ctx, "forge", BuildSourcifyVerifyArgs(deployment, network)))
	}

	updateOverallStatus(deployment)

	if deployment.Verification.Status == models.VerificationStatusFailed {
		return fmt.Errorf("%w: %v", domain.ErrVerificationFailed, result.ErrorOrNil())
	}
	if err := result.ErrorOrNil(); err != nil {
		v.log.Warn("some verifiers failed", "error", err)
	}
	return nil
}

func (v *Verifier) alreadyVerified(ctx context.Context, network *config.Network, address string) bool {
	if v.explorer == nil || network.ExplorerAPIURL == "" {
		return false
	}
	verified, err := v.explorer.IsVerified(ctx, network, address)
	if err != nil {
		v.log.Debug("explorer status check failed", "error", err)
		return false
	}
	return verified
}

// BuildEtherscanVerifyArgs builds the forge verify-contract args for Etherscan
func BuildEtherscanVerifyArgs(deployment *models.Deployment, network *config.Network) []string {
	args := []string{
		"verify-contract",
		deployment.Address,
		deployment.Artifact.Path,
		"--chain-id", fmt.Sprintf("%d", network.ChainID),
		"--watch",
	}

	if network.ExplorerAPIURL != "" && network.ExplorerAPIURL != config.EtherscanV2APIURL {
		args = append(args, "--verifier-url", network.ExplorerAPIURL)
	}
	if network.ExplorerAPIKey != "" {
		args = append(args, "--etherscan-api-key", network.ExplorerAPIKey)
	}
	return appendCompilerArgs(args, deployment)
}

// BuildSourcifyVerifyArgs builds the forge verify-contract args for Sourcify
func BuildSourcifyVerifyArgs(deployment *models.Deployment, network *config.Network) []string {
	args := []string{
		"verify-contract",
		deployment.Address,
		deployment.Artifact.Path,
		"--chain-id", fmt.Sprintf("%d", network.ChainID),
		"--verifier", "sourcify",
		"--watch",
	}
	return appendCompilerArgs(args, deployment)
}

func appendCompilerArgs(args []string, deployment *models.Deployment) []string {
	if deployment.Artifact.CompilerVersion != "" {
		args = append(args, "--compiler-version", deployment.Artifact.CompilerVersion)
	}
	if constructorArgs := strings.TrimPrefix(deployment.ConstructorArgs, "0x"); constructorArgs != "" {
		args = append(args, "--constructor-args", constructorArgs)
	}
	return args
}

// BuildHardhatVerifyArgs builds the npx hardhat verify args. Hardhat takes the
// constructor arguments as the raw values typed on the command line.
func BuildHardhatVerifyArgs(deployment *models.Deployment, network *config.Network) []string {
	args := []string{"hardhat", "verify", "--network", network.Name, deployment.Address}
	return append(args, deployment.ConstructorArgsRaw...)
}

func (v *Verifier) verifyWithHardhat(ctx context.Context, deployment *models.Deployment, network *config.Network) error {
	return v.executeVerify(ctx, "npx", BuildHardhatVerifyArgs(deployment, network))
}

// executeVerify runs a verify command and interprets its output
func (v *Verifier) executeVerify(ctx context.Context, name string, args []string) error {
	v.log.Debug("running verifier", "cmd", name+" "+strings.Join(redactArgs(args), " "))

	output, err := v.run(ctx, v.projectRoot, name, args...)
	outputStr := strings.TrimSpace(string(output))
	if isAlreadyVerified(outputStr) {
		return nil
	}
	if err != nil {
		if outputStr == "" {
			return err
		}
		return fmt.Errorf("%s", lastLines(outputStr, 5))
	}

	if strings.Contains(outputStr, "Contract successfully verified") ||
		strings.Contains(outputStr, "Successfully verified") {
		return nil
	}
	return fmt.Errorf("verification status unclear: %s", lastLines(outputStr, 5))
}

func redactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--etherscan-api-key" {
			out[i+1] = "***"
		}
	}
	return out
}

func isAlreadyVerified(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "already verified")
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func buildExplorerURL(network *config.Network, address string) string {
	if network.ExplorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s#code", network.ExplorerURL, address)
}

func buildSourcifyURL(network *config.Network, address string) string {
	return fmt.Sprintf("https://repo.sourcify.dev/contracts/full_match/%d/%s/", network.ChainID, address)
}

// updateOverallStatus updates the overall verification status based on individual verifiers
func updateOverallStatus(deployment *models.Deployment) {
	verifiers := deployment.Verification.Verifiers
	if len(verifiers) == 0 {
		deployment.Verification.Status = models.VerificationStatusUnverified
		return
	}

	verifiedCount := 0
	var reasons []string
	for name, status := range verifiers {
		switch status.Status {
		case statusVerified:
			verifiedCount++
		case statusFailed:
			reasons = append(reasons, fmt.Sprintf("%s: %s", name, status.Reason))
		}
	}

	switch {
	case verifiedCount == len(verifiers):
		now := time.Now()
		deployment.Verification.Status = models.VerificationStatusVerified
		deployment.Verification.VerifiedAt = &now
		deployment.Verification.Reason = ""
		for _, name := range []string{VerifierEtherscan, VerifierHardhat, VerifierSourcify} {
			if s, ok := verifiers[name]; ok && s.URL != "" {
				deployment.Verification.EtherscanURL = s.URL
				break
			}
		}
	case verifiedCount > 0:
		deployment.Verification.Status = models.VerificationStatusPartial
	default:
		sort.Strings(reasons)
		deployment.Verification.Status = models.VerificationStatusFailed
		deployment.Verification.Reason = strings.Join(reasons, "; ")
	}
}

// Ensure it implements the interface
var _ usecase.ContractVerifier = (*Verifier)(nil)
