package app

import (
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	DeployContract   *usecase.DeployContract
	ListDeployments  *usecase.ListDeployments
	ShowDeployment   *usecase.ShowDeployment
	VerifyDeployment *usecase.VerifyDeployment
	TagDeployment    *usecase.TagDeployment
	ListNetworks     *usecase.ListNetworks
	ShowConfig       *usecase.ShowConfig
	SetConfig        *usecase.SetConfig
	RemoveConfig     *usecase.RemoveConfig
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	deployContract *usecase.DeployContract,
	listDeployments *usecase.ListDeployments,
	showDeployment *usecase.ShowDeployment,
	verifyDeployment *usecase.VerifyDeployment,
	tagDeployment *usecase.TagDeployment,
	listNetworks *usecase.ListNetworks,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
) (*App, error) {
	return &App{
		Config:           cfg,
		DeployContract:   deployContract,
		ListDeployments:  listDeployments,
		ShowDeployment:   showDeployment,
		VerifyDeployment: verifyDeployment,
		TagDeployment:    tagDeployment,
		ListNetworks:     listNetworks,
		ShowConfig:       showConfig,
		SetConfig:        setConfig,
		RemoveConfig:     removeConfig,
	}, nil
}
