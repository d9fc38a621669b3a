package resolvers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/repository/deployments"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

type stubSelector struct {
	offered []*models.Deployment
}

func (s *stubSelector) SelectDeployment(_ context.Context, deployments []*models.Deployment, _ string) (*models.Deployment, error) {
	s.offered = deployments
	return deployments[len(deployments)-1], nil
}

func seedRegistry(t *testing.T, cfg *config.RuntimeConfig) *deployments.FileRepository {
	t.Helper()
	repo, err := deployments.NewFileRepository(cfg)
	require.NoError(t, err)

	records := []*models.Deployment{
		{Namespace: "default", ChainID: 31337, ContractName: "DynamicNFTMarketplace", Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3", NetworkName: "localhost"},
		{Namespace: "default", ChainID: 31337, ContractName: "DynamicNFTMarketplace", Label: "2", Address: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512", NetworkName: "localhost"},
		{Namespace: "default", ChainID: 11155111, ContractName: "DynamicNFTMarketplace", Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3", NetworkName: "sepolia"},
		{Namespace: "staging", ChainID: 11155111, ContractName: "RoyaltyRegistry", Address: "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0", NetworkName: "sepolia"},
	}
	for _, d := range records {
		d.ID = models.BuildDeploymentID(d.Namespace, d.ChainID, d.ContractName, d.Label)
		require.NoError(t, repo.SaveDeployment(context.Background(), d))
	}
	return repo
}

func TestResolveDeployment(t *testing.T) {
	ctx := context.Background()
	cfg := &config.RuntimeConfig{
		DataDir:        filepath.Join(t.TempDir(), ".nftdeploy"),
		Namespace:      "default",
		NonInteractive: true,
	}
	repo := seedRegistry(t, cfg)
	resolver := NewDeploymentResolver(cfg, repo, nil)

	tests := []struct {
		name    string
		query   domain.DeploymentQuery
		wantID  string
		wantErr string
	}{
		{name: "by id", query: domain.DeploymentQuery{Reference: "staging/11155111/RoyaltyRegistry"}, wantID: "staging/11155111/RoyaltyRegistry"},
		{name: "by label", query: domain.DeploymentQuery{Reference: "DynamicNFTMarketplace:2"}, wantID: "default/31337/DynamicNFTMarketplace:2"},
		{name: "by chain and name", query: domain.DeploymentQuery{Reference: "11155111/DynamicNFTMarketplace"}, wantID: "default/11155111/DynamicNFTMarketplace"},
		{name: "by namespace and name", query: domain.DeploymentQuery{Reference: "staging/RoyaltyRegistry"}, wantID: "staging/11155111/RoyaltyRegistry"},
		{name: "address on chain", query: domain.DeploymentQuery{Reference: "0x5fbdb2315678afecb367f032d93f642f64180aa3", ChainID: 11155111}, wantID: "default/11155111/DynamicNFTMarketplace"},
		{name: "unique address", query: domain.DeploymentQuery{Reference: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"}, wantID: "default/31337/DynamicNFTMarketplace:2"},
		{name: "address on several chains", query: domain.DeploymentQuery{Reference: "0x5FbDB2315678afecb367f032d93F642f64180aa3"}, wantErr: "multiple deployments found"},
		{name: "name across labels", query: domain.DeploymentQuery{Reference: "DynamicNFTMarketplace", ChainID: 31337}, wantErr: "default/31337/DynamicNFTMarketplace:2"},
		{name: "outside namespace", query: domain.DeploymentQuery{Reference: "RoyaltyRegistry"}, wantErr: "not found"},
		{name: "empty", query: domain.DeploymentQuery{Reference: " "}, wantErr: "empty deployment reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deployment, err := resolver.ResolveDeployment(ctx, tt.query)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, deployment.ID)
		})
	}
}

// failingAddressRepo fails address lookups with a non not-found error
type failingAddressRepo struct {
	*deployments.FileRepository
	err error
}

func (r *failingAddressRepo) GetDeploymentByAddress(context.Context, uint64, string) (*models.Deployment, error) {
	return nil, r.err
}

func TestResolveDeployment_AddressLookupErrors(t *testing.T) {
	ctx := context.Background()
	cfg := &config.RuntimeConfig{
		DataDir:        filepath.Join(t.TempDir(), ".nftdeploy"),
		Namespace:      "default",
		NonInteractive: true,
	}
	seeded := seedRegistry(t, cfg)
	query := domain.DeploymentQuery{Reference: "0x00000000000000000000000000000000000000a1", ChainID: 31337}

	t.Run("not found", func(t *testing.T) {
		repo := &failingAddressRepo{FileRepository: seeded, err: fmt.Errorf("%w: no deployments on chain 31337", domain.ErrNotFound)}
		_, err := NewDeploymentResolver(cfg, repo, nil).ResolveDeployment(ctx, query)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		repo := &failingAddressRepo{FileRepository: seeded, err: errors.New("registry locked")}
		_, err := NewDeploymentResolver(cfg, repo, nil).ResolveDeployment(ctx, query)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "registry locked")
	})
}

func TestResolveDeployment_Interactive(t *testing.T) {
	cfg := &config.RuntimeConfig{
		DataDir:   filepath.Join(t.TempDir(), ".nftdeploy"),
		Namespace: "default",
	}
	selector := &stubSelector{}
	resolver := NewDeploymentResolver(cfg, seedRegistry(t, cfg), selector)

	deployment, err := resolver.ResolveDeployment(context.Background(), domain.DeploymentQuery{Reference: "DynamicNFTMarketplace"})
	require.NoError(t, err)
	assert.Len(t, selector.offered, 3)
	assert.Equal(t, selector.offered[2].ID, deployment.ID)
}

func TestParseReference(t *testing.T) {
	name, label, ns, chainID := parseReference("staging/11155111/DynamicNFTMarketplace:v2")
	assert.Equal(t, "DynamicNFTMarketplace", name)
	assert.Equal(t, "v2", label)
	assert.Equal(t, "staging", ns)
	assert.Equal(t, uint64(11155111), chainID)
}
