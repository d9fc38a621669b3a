package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

// TagOperation selects what TagDeployment does with the tag
type TagOperation string

const (
	TagOperationShow   TagOperation = "show"
	TagOperationAdd    TagOperation = "add"
	TagOperationRemove TagOperation = "remove"
)

// TagDeploymentParams contains parameters for tagging deployments
type TagDeploymentParams struct {
	// Reference is a deployment ID, an address or Contract[:label]
	Reference string
	Operation TagOperation
	Tag       string
}

// TagDeploymentResult contains the result of a tag operation
type TagDeploymentResult struct {
	Deployment *models.Deployment
	Operation  TagOperation
	Tag        string
}

// TagDeployment adds, removes or shows tags on a recorded deployment
type TagDeployment struct {
	config   *config.RuntimeConfig
	resolver DeploymentResolver
	repo     DeploymentRepository
	networks NetworkResolver
	progress ProgressSink
}

// NewTagDeployment creates a new tag deployment use case
func NewTagDeployment(
	cfg *config.RuntimeConfig,
	resolver DeploymentResolver,
	repo DeploymentRepository,
	networks NetworkResolver,
	progress ProgressSink,
) *TagDeployment {
	return &TagDeployment{
		config:   cfg,
		resolver: resolver,
		repo:     repo,
		networks: networks,
		progress: progress,
	}
}

// Run executes the tag operation
func (uc *TagDeployment) Run(ctx context.Context, params TagDeploymentParams) (*TagDeploymentResult, error) {
	tag := strings.TrimSpace(params.Tag)
	if params.Operation != TagOperationShow && tag == "" {
		return nil, fmt.Errorf("tag must not be empty")
	}

	query, err := buildDeploymentQuery(ctx, uc.config, uc.networks, params.Reference)
	if err != nil {
		return nil, err
	}
	deployment, err := uc.resolver.ResolveDeployment(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &TagDeploymentResult{Deployment: deployment, Operation: params.Operation, Tag: tag}

	switch params.Operation {
	case TagOperationShow:
		return result, nil
	case TagOperationAdd:
		if lo.Contains(deployment.Tags, tag) {
			return nil, fmt.Errorf("deployment %s already has tag '%s'", deployment.ID, tag)
		}
		deployment.Tags = append(deployment.Tags, tag)
	case TagOperationRemove:
		if !lo.Contains(deployment.Tags, tag) {
			return nil, fmt.Errorf("deployment %s does not have tag '%s'", deployment.ID, tag)
		}
		deployment.Tags = lo.Without(deployment.Tags, tag)
	default:
		return nil, fmt.Errorf("invalid operation: %s", params.Operation)
	}

	if err := uc.repo.SaveDeployment(ctx, deployment); err != nil {
		return nil, fmt.Errorf("failed to save deployment: %w", err)
	}
	uc.progress.Info(fmt.Sprintf("Updated tags on %s", deployment.ID))

	return result, nil
}
