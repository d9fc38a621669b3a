package resolvers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// DeploymentResolver handles deployment resolution and selection
type DeploymentResolver struct {
	config   *config.RuntimeConfig
	repo     usecase.DeploymentRepository
	selector usecase.DeploymentSelector
}

// NewDeploymentResolver creates a new deployment resolver
func NewDeploymentResolver(
	cfg *config.RuntimeConfig,
	repo usecase.DeploymentRepository,
	selector usecase.DeploymentSelector,
) *DeploymentResolver {
	return &DeploymentResolver{
		config:   cfg,
		repo:     repo,
		selector: selector,
	}
}

// ResolveDeployment resolves a deployment reference with filtering
func (r *DeploymentResolver) ResolveDeployment(ctx context.Context, query domain.DeploymentQuery) (*models.Deployment, error) {
	deployments, err := r.findDeployments(ctx, query)
	if err != nil {
		return nil, err
	}

	switch len(deployments) {
	case 0:
		return nil, fmt.Errorf("%w: no deployment matches %q", domain.ErrNotFound, query.Reference)
	case 1:
		return deployments[0], nil
	}

	if r.selector != nil && !r.config.NonInteractive {
		selected, err := r.selector.SelectDeployment(ctx, deployments, fmt.Sprintf("Multiple deployments found for '%s'. Select one:", query.Reference))
		if err != nil {
			return nil, fmt.Errorf("deployment selection failed: %w", err)
		}
		return selected, nil
	}

	var suggestions []string
	for _, dep := range deployments {
		suggestions = append(suggestions, fmt.Sprintf("  - %s (%s at %s)", dep.ID, dep.NetworkName, dep.Address))
	}
	sort.Strings(suggestions)
	return nil, fmt.Errorf("multiple deployments found matching '%s', please be more specific:\n%s",
		query.Reference, strings.Join(suggestions, "\n"))
}

// findDeployments finds deployments matching the query
func (r *DeploymentResolver) findDeployments(ctx context.Context, query domain.DeploymentQuery) ([]*models.Deployment, error) {
	ref := strings.TrimSpace(query.Reference)
	if ref == "" {
		return nil, fmt.Errorf("empty deployment reference")
	}

	namespace := query.Namespace
	if namespace == "" {
		namespace = r.config.Namespace
	}
	chainID := query.ChainID

	// 1. Try as deployment ID
	if deployment, err := r.repo.GetDeployment(ctx, ref); err == nil {
		return []*models.Deployment{deployment}, nil
	}

	// 2. Try as address
	if common.IsHexAddress(ref) {
		if chainID != 0 {
			deployment, err := r.repo.GetDeploymentByAddress(ctx, chainID, ref)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, fmt.Errorf("failed to look up address %s: %w", ref, err)
			}
			return []*models.Deployment{deployment}, nil
		}

		deployments, err := r.repo.ListDeployments(ctx, domain.DeploymentFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to list deployments: %w", err)
		}
		var matches []*models.Deployment
		for _, dep := range deployments {
			if strings.EqualFold(dep.Address, ref) {
				matches = append(matches, dep)
			}
		}
		return matches, nil
	}

	// 3. Parse the reference to extract components
	contractName, label, extractedNamespace, extractedChainID := parseReference(ref)
	if extractedNamespace != "" {
		namespace = extractedNamespace
	}
	if extractedChainID != 0 {
		chainID = extractedChainID
	}

	deployments, err := r.repo.ListDeployments(ctx, domain.DeploymentFilter{
		ContractName: contractName,
		Label:        label,
		ChainID:      chainID,
		Namespace:    namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}

	return deployments, nil
}

// parseReference parses a deployment reference and extracts components
// Supports formats:
// - Contract name: "DynamicNFTMarketplace"
// - Contract with label: "DynamicNFTMarketplace:v2"
// - Namespace/contract: "staging/DynamicNFTMarketplace"
// - Chain/contract: "11155111/DynamicNFTMarketplace"
// - Namespace/chain/contract:label: "staging/11155111/DynamicNFTMarketplace:v2"
func parseReference(ref string) (contractName, label, namespace string, chainID uint64) {
	base, label, _ := strings.Cut(ref, ":")

	segments := strings.Split(base, "/")
	switch len(segments) {
	case 1:
		contractName = segments[0]
	case 2:
		if cid := parseChainID(segments[0]); cid != 0 {
			chainID = cid
		} else {
			namespace = segments[0]
		}
		contractName = segments[1]
	case 3:
		namespace = segments[0]
		chainID = parseChainID(segments[1])
		contractName = segments[2]
	}

	return contractName, label, namespace, chainID
}

// parseChainID tries to parse a string as a chain ID
func parseChainID(s string) uint64 {
	chainID, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return chainID
}

// Ensure the resolver implements the interface
var _ usecase.DeploymentResolver = (*DeploymentResolver)(nil)
