package usecase

import (
	"context"
	"sort"

	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

// ListDeploymentsParams contains parameters for listing deployments
type ListDeploymentsParams struct {
	ContractName  string
	Label         string
	ChainID       uint64 // 0 means the --network chain, or every chain when no network is set
	AllNamespaces bool
}

// DeploymentListResult contains the listed deployments and a summary
type DeploymentListResult struct {
	Deployments []*models.Deployment
	Summary     DeploymentSummary
}

// DeploymentSummary counts deployments per namespace and chain
type DeploymentSummary struct {
	Total       int
	ByNamespace map[string]int
	ByChain     map[uint64]int
}

// ListDeployments is the use case for listing deployments
type ListDeployments struct {
	config   *config.RuntimeConfig
	repo     DeploymentRepository
	networks NetworkResolver
	sink     ProgressSink
}

// NewListDeployments creates a new ListDeployments use case
func NewListDeployments(cfg *config.RuntimeConfig, repo DeploymentRepository, networks NetworkResolver, sink ProgressSink) *ListDeployments {
	return &ListDeployments{
		config:   cfg,
		repo:     repo,
		networks: networks,
		sink:     sink,
	}
}

// Run executes the list deployments use case
func (uc *ListDeployments) Run(ctx context.Context, params ListDeploymentsParams) (*DeploymentListResult, error) {
	filter := domain.DeploymentFilter{
		ContractName: params.ContractName,
		Label:        params.Label,
		ChainID:      params.ChainID,
	}
	if !params.AllNamespaces {
		filter.Namespace = uc.config.Namespace
	}

	if filter.ChainID == 0 && uc.config.NetworkName != "" {
		network, err := uc.networks.ResolveNetwork(ctx, uc.config.NetworkName)
		if err != nil {
			return nil, err
		}
		filter.ChainID = network.ChainID
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageResolving,
		Message: "Loading deployments from registry",
	})

	deployments, err := uc.repo.ListDeployments(ctx, filter)
	if err != nil {
		return nil, err
	}

	sortDeployments(deployments)

	return &DeploymentListResult{
		Deployments: deployments,
		Summary:     calculateSummary(deployments),
	}, nil
}

// sortDeployments sorts deployments by namespace, chain, contract name, and label
func sortDeployments(deployments []*models.Deployment) {
	sort.SliceStable(deployments, func(i, j int) bool {
		if deployments[i].Namespace != deployments[j].Namespace {
			return deployments[i].Namespace < deployments[j].Namespace
		}
		if deployments[i].ChainID != deployments[j].ChainID {
			return deployments[i].ChainID < deployments[j].ChainID
		}
		if deployments[i].ContractName != deployments[j].ContractName {
			return deployments[i].ContractName < deployments[j].ContractName
		}
		return deployments[i].Label < deployments[j].Label
	})
}

// calculateSummary calculates summary statistics for deployments
func calculateSummary(deployments []*models.Deployment) DeploymentSummary {
	summary := DeploymentSummary{
		Total:       len(deployments),
		ByNamespace: make(map[string]int),
		ByChain:     make(map[uint64]int),
	}

	for _, dep := range deployments {
		summary.ByNamespace[dep.Namespace]++
		summary.ByChain[dep.ChainID]++
	}

	return summary
}
