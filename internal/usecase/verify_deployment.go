package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

// VerifyOptions contains options for verification
type VerifyOptions struct {
	Force bool // Re-verify even if already verified
}

// VerifyResult contains the result of verification
type VerifyResult struct {
	Deployment *models.Deployment
	Skipped    bool   // already verified and not forced
	Warning    string // registry update failed after verification
}

// VerifyDeployment handles contract verification on block explorers
type VerifyDeployment struct {
	config   *config.RuntimeConfig
	resolver DeploymentResolver
	repo     DeploymentRepository
	verifier ContractVerifier
	networks NetworkResolver
	sink     ProgressSink
}

// NewVerifyDeployment creates a new verify deployment use case
func NewVerifyDeployment(
	cfg *config.RuntimeConfig,
	resolver DeploymentResolver,
	repo DeploymentRepository,
	verifier ContractVerifier,
	networks NetworkResolver,
	sink ProgressSink,
) *VerifyDeployment {
	return &VerifyDeployment{
		config:   cfg,
		resolver: resolver,
		repo:     repo,
		verifier: verifier,
		networks: networks,
		sink:     sink,
	}
}

// Run verifies the deployment identified by ref
func (uc *VerifyDeployment) Run(ctx context.Context, ref string, options VerifyOptions) (*VerifyResult, error) {
	query, err := buildDeploymentQuery(ctx, uc.config, uc.networks, ref)
	if err != nil {
		return nil, err
	}
	deployment, err := uc.resolver.ResolveDeployment(ctx, query)
	if err != nil {
		return nil, err
	}

	if deployment.Verification.Status == models.VerificationStatusVerified && !options.Force {
		return &VerifyResult{Deployment: deployment, Skipped: true}, nil
	}

	// The record's network name may have been an ad-hoc RPC URL, so an explicit
	// --network wins over it
	networkName := deployment.NetworkName
	if uc.config.NetworkName != "" {
		networkName = uc.config.NetworkName
	}
	network, err := uc.networks.ResolveNetwork(ctx, networkName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network: %w", err)
	}
	if network.ChainID != deployment.ChainID {
		return nil, fmt.Errorf("network %s has chain ID %d but %s was deployed on chain %d",
			network.Name, network.ChainID, deployment.ID, deployment.ChainID)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageVerifying,
		Message: fmt.Sprintf("Verifying %s on %s", deployment.GetShortID(), network.Name),
		Spinner: true,
	})
	verifyErr := uc.verifier.Verify(ctx, deployment, network)
	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageCompleted})

	result := &VerifyResult{Deployment: deployment}

	// Per-verifier results are persisted even when verification failed
	if err := uc.repo.SaveDeployment(ctx, deployment); err != nil {
		result.Warning = fmt.Sprintf("failed to update registry: %v", err)
	}

	if verifyErr != nil {
		return result, verifyErr
	}
	return result, nil
}
