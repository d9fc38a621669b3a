package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

func TestListDeployments(t *testing.T) {
	ctx := context.Background()
	records := []*models.Deployment{
		{ID: "default/31337/RoyaltyRegistry", Namespace: "default", ChainID: 31337, ContractName: "RoyaltyRegistry"},
		{ID: "default/31337/DynamicNFTMarketplace:2", Namespace: "default", ChainID: 31337, ContractName: "DynamicNFTMarketplace", Label: "2"},
		{ID: "default/1/DynamicNFTMarketplace", Namespace: "default", ChainID: 1, ContractName: "DynamicNFTMarketplace"},
		{ID: "default/31337/DynamicNFTMarketplace", Namespace: "default", ChainID: 31337, ContractName: "DynamicNFTMarketplace"},
	}

	t.Run("namespace from config, every chain", func(t *testing.T) {
		repo := &MockDeploymentRepository{}
		networks := &fakeNetworks{log: &callLog{}}
		repo.On("ListDeployments", ctx, domain.DeploymentFilter{Namespace: "default"}).Return(records, nil)

		uc := usecase.NewListDeployments(&config.RuntimeConfig{Namespace: "default"}, repo, networks, usecase.NopProgress{})
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})
		require.NoError(t, err)

		ids := make([]string, len(result.Deployments))
		for i, d := range result.Deployments {
			ids[i] = d.ID
		}
		assert.Equal(t, []string{
			"default/1/DynamicNFTMarketplace",
			"default/31337/DynamicNFTMarketplace",
			"default/31337/DynamicNFTMarketplace:2",
			"default/31337/RoyaltyRegistry",
		}, ids)
		assert.Equal(t, 4, result.Summary.Total)
		assert.Equal(t, 3, result.Summary.ByChain[31337])
		assert.Equal(t, 4, result.Summary.ByNamespace["default"])
		assert.Empty(t, networks.names)
		repo.AssertExpectations(t)
	})

	t.Run("network narrows to its chain", func(t *testing.T) {
		repo := &MockDeploymentRepository{}
		networks := &fakeNetworks{log: &callLog{}, network: sepolia()}
		filter := domain.DeploymentFilter{ChainID: 11155111, ContractName: "DynamicNFTMarketplace"}
		repo.On("ListDeployments", ctx, filter).Return([]*models.Deployment{}, nil)

		cfg := &config.RuntimeConfig{Namespace: "default", NetworkName: "sepolia"}
		uc := usecase.NewListDeployments(cfg, repo, networks, usecase.NopProgress{})
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{ContractName: "DynamicNFTMarketplace", AllNamespaces: true})
		require.NoError(t, err)
		assert.Empty(t, result.Deployments)
		assert.Equal(t, []string{"sepolia"}, networks.names)
		repo.AssertExpectations(t)
	})

	t.Run("registry error", func(t *testing.T) {
		repo := &MockDeploymentRepository{}
		repo.On("ListDeployments", ctx, mock.Anything).Return(nil, errors.New("corrupt registry"))

		uc := usecase.NewListDeployments(&config.RuntimeConfig{}, repo, &fakeNetworks{log: &callLog{}}, usecase.NopProgress{})
		_, err := uc.Run(ctx, usecase.ListDeploymentsParams{})
		assert.ErrorContains(t, err, "corrupt registry")
	})
}

func TestShowDeployment(t *testing.T) {
	ctx := context.Background()
	record := &models.Deployment{ID: "default/11155111/DynamicNFTMarketplace", ChainID: 11155111}

	t.Run("scoped to network chain", func(t *testing.T) {
		resolver := &fakeResolver{deployment: record}
		cfg := &config.RuntimeConfig{Namespace: "staging", NetworkName: "sepolia"}
		uc := usecase.NewShowDeployment(cfg, resolver, &fakeNetworks{log: &callLog{}, network: sepolia()})

		got, err := uc.Run(ctx, usecase.ShowDeploymentParams{Reference: "DynamicNFTMarketplace"})
		require.NoError(t, err)
		assert.Same(t, record, got)
		assert.Equal(t, []domain.DeploymentQuery{{Reference: "DynamicNFTMarketplace", Namespace: "staging", ChainID: 11155111}}, resolver.queries)
	})

	t.Run("no network means every chain", func(t *testing.T) {
		resolver := &fakeResolver{err: domain.ErrNotFound}
		networks := &fakeNetworks{log: &callLog{}}
		uc := usecase.NewShowDeployment(&config.RuntimeConfig{Namespace: "default"}, resolver, networks)

		_, err := uc.Run(ctx, usecase.ShowDeploymentParams{Reference: "0x5FbDB2315678afecb367f032d93F642f64180aa3"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Zero(t, resolver.queries[0].ChainID)
		assert.Empty(t, networks.names)
	})
}

func TestVerifyDeployment(t *testing.T) {
	ctx := context.Background()

	newRecord := func() *models.Deployment {
		return &models.Deployment{
			ID:           "default/11155111/DynamicNFTMarketplace",
			ChainID:      11155111,
			NetworkName:  "sepolia",
			ContractName: "DynamicNFTMarketplace",
			Verification: models.VerificationInfo{Status: models.VerificationStatusUnverified},
		}
	}

	t.Run("verifies and persists", func(t *testing.T) {
		record := newRecord()
		log := &callLog{}
		repo := &MockDeploymentRepository{}
		repo.On("SaveDeployment", ctx, record).Return(nil)
		networks := &fakeNetworks{log: log, network: sepolia()}
		sink := &recordingSink{}

		uc := usecase.NewVerifyDeployment(&config.RuntimeConfig{}, &fakeResolver{deployment: record}, repo, &fakeVerifier{log: log}, networks, sink)
		result, err := uc.Run(ctx, "DynamicNFTMarketplace", usecase.VerifyOptions{})
		require.NoError(t, err)
		assert.False(t, result.Skipped)
		assert.Equal(t, models.VerificationStatusVerified, result.Deployment.Verification.Status)
		assert.Equal(t, []string{"sepolia"}, networks.names)
		assert.Equal(t, []usecase.ExecutionStage{usecase.StageVerifying, usecase.StageCompleted}, sink.stages())
		repo.AssertExpectations(t)
	})

	t.Run("already verified", func(t *testing.T) {
		record := newRecord()
		record.Verification.Status = models.VerificationStatusVerified
		log := &callLog{}
		repo := &MockDeploymentRepository{}

		uc := usecase.NewVerifyDeployment(&config.RuntimeConfig{}, &fakeResolver{deployment: record}, repo, &fakeVerifier{log: log}, &fakeNetworks{log: log}, usecase.NopProgress{})
		result, err := uc.Run(ctx, "DynamicNFTMarketplace", usecase.VerifyOptions{})
		require.NoError(t, err)
		assert.True(t, result.Skipped)
		assert.Empty(t, log.calls)
		repo.AssertNotCalled(t, "SaveDeployment", mock.Anything, mock.Anything)
	})

	t.Run("failure is persisted and returned", func(t *testing.T) {
		record := newRecord()
		log := &callLog{}
		repo := &MockDeploymentRepository{}
		repo.On("SaveDeployment", ctx, record).Return(errors.New("read-only file system"))
		verifier := &fakeVerifier{log: log, err: domain.ErrVerificationFailed}

		uc := usecase.NewVerifyDeployment(&config.RuntimeConfig{}, &fakeResolver{deployment: record}, repo, verifier, &fakeNetworks{log: log, network: sepolia()}, usecase.NopProgress{})
		result, err := uc.Run(ctx, "DynamicNFTMarketplace", usecase.VerifyOptions{Force: true})
		require.ErrorIs(t, err, domain.ErrVerificationFailed)
		assert.Equal(t, models.VerificationStatusFailed, result.Deployment.Verification.Status)
		assert.Contains(t, result.Warning, "read-only file system")
	})

	t.Run("network on another chain", func(t *testing.T) {
		record := newRecord()
		log := &callLog{}
		cfg := &config.RuntimeConfig{NetworkName: "localhost"}

		uc := usecase.NewVerifyDeployment(cfg, &fakeResolver{deployment: record}, &MockDeploymentRepository{}, &fakeVerifier{log: log}, &fakeNetworks{log: log, network: localhost()}, usecase.NopProgress{})
		_, err := uc.Run(ctx, "DynamicNFTMarketplace", usecase.VerifyOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deployed on chain 11155111")
		assert.NotContains(t, log.calls, "verify")
	})
}

func TestListNetworks(t *testing.T) {
	networks := &fakeNetworks{log: &callLog{}, network: sepolia()}
	result, err := usecase.NewListNetworks(networks).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Networks, 2)
	assert.Equal(t, "localhost", result.Networks[0].Name)
	assert.Empty(t, result.Networks[0].EnvVar)
	assert.Equal(t, "SEPOLIA_RPC_URL", result.Networks[1].EnvVar)
	assert.Equal(t, uint64(11155111), result.Networks[1].ChainID)

	networks.err = errors.New("connection refused")
	result, err = usecase.NewListNetworks(networks).Run(context.Background())
	require.NoError(t, err)
	assert.ErrorContains(t, result.Networks[0].Error, "connection refused")
}
