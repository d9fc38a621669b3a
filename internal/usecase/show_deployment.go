package usecase

import (
	"context"

	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

// ShowDeploymentParams contains parameters for showing a deployment
type ShowDeploymentParams struct {
	// Reference is a deployment ID, an address or Contract[:label]
	Reference string
}

// ShowDeployment is the use case for showing deployment details
type ShowDeployment struct {
	config   *config.RuntimeConfig
	resolver DeploymentResolver
	networks NetworkResolver
}

// NewShowDeployment creates a new ShowDeployment use case
func NewShowDeployment(cfg *config.RuntimeConfig, resolver DeploymentResolver, networks NetworkResolver) *ShowDeployment {
	return &ShowDeployment{
		config:   cfg,
		resolver: resolver,
		networks: networks,
	}
}

// Run executes the show deployment use case
func (uc *ShowDeployment) Run(ctx context.Context, params ShowDeploymentParams) (*models.Deployment, error) {
	query, err := buildDeploymentQuery(ctx, uc.config, uc.networks, params.Reference)
	if err != nil {
		return nil, err
	}
	return uc.resolver.ResolveDeployment(ctx, query)
}

// buildDeploymentQuery scopes a reference to the configured namespace and,
// when --network is given, to that network's chain
func buildDeploymentQuery(ctx context.Context, cfg *config.RuntimeConfig, networks NetworkResolver, ref string) (domain.DeploymentQuery, error) {
	query := domain.DeploymentQuery{
		Reference: ref,
		Namespace: cfg.Namespace,
	}
	if cfg.NetworkName != "" {
		network, err := networks.ResolveNetwork(ctx, cfg.NetworkName)
		if err != nil {
			return query, err
		}
		query.ChainID = network.ChainID
	}
	return query, nil
}
