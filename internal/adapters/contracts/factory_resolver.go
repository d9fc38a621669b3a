package contracts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// FactoryResolver resolves contract references to deployable factories
type FactoryResolver struct {
	indexer  *Indexer
	selector usecase.ContractSelector
	config   *config.RuntimeConfig
	log      *slog.Logger
}

// NewFactoryResolver creates a new contract factory resolver
func NewFactoryResolver(
	indexer *Indexer,
	selector usecase.ContractSelector,
	cfg *config.RuntimeConfig,
	log *slog.Logger,
) *FactoryResolver {
	return &FactoryResolver{
		indexer:  indexer,
		selector: selector,
		config:   cfg,
		log:      log,
	}
}

// GetContractFactory resolves "Name" or "path:Name" to exactly one factory
func (r *FactoryResolver) GetContractFactory(ctx context.Context, ref string) (*models.ContractFactory, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty contract reference", domain.ErrContractNotFound)
	}

	if err := r.indexer.EnsureIndexed(); err != nil {
		return nil, err
	}

	matches := r.indexer.Find(ref)

	var factory *models.ContractFactory
	switch len(matches) {
	case 0:
		name := ref
		if idx := strings.LastIndex(ref, ":"); idx >= 0 {
			name = ref[idx+1:]
		}
		if r.indexer.IsAbstract(name) {
			return nil, fmt.Errorf("%w: %s is abstract or an interface", domain.ErrNoBytecode, name)
		}
		return nil, domain.NoContractsMatchErr{
			Query:       ref,
			Suggestions: r.indexer.Suggest(ref, 3),
		}
	case 1:
		factory = matches[0]
	default:
		if r.config.NonInteractive || r.selector == nil {
			return nil, domain.AmbiguousContractErr{Query: ref, Matches: matches}
		}
		selected, err := r.selector.SelectContract(ctx, matches, fmt.Sprintf("Multiple contracts named %s, select one:", ref))
		if err != nil {
			return nil, err
		}
		factory = selected
	}

	if len(factory.UnlinkedLibraries) > 0 {
		return nil, fmt.Errorf("%w: %s requires %s", domain.ErrUnlinkedLibraries,
			factory.FullyQualifiedName(), strings.Join(factory.UnlinkedLibraries, ", "))
	}

	if factory.Format == models.ArtifactFormatHardhat && factory.CompilerVersion == "" {
		factory.CompilerVersion = r.indexer.CompilerVersion(factory)
	}

	r.log.Debug("resolved contract factory",
		"contract", factory.FullyQualifiedName(),
		"format", factory.Format,
		"artifact", factory.ArtifactPath,
		"bytecodeSize", len(factory.Bytecode))

	return factory, nil
}

// Ensure the resolver implements the interface
var _ usecase.ContractFactoryResolver = (*FactoryResolver)(nil)
