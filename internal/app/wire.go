//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/nft-deployer/internal/adapters"
	"github.com/trebuchet-org/nft-deployer/internal/config"
	"github.com/trebuchet-org/nft-deployer/internal/logging"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// UseCaseSet provides every use case exposed on App
var UseCaseSet = wire.NewSet(
	usecase.NewDeployContract,
	usecase.NewListDeployments,
	usecase.NewShowDeployment,
	usecase.NewVerifyDeployment,
	usecase.NewTagDeployment,
	usecase.NewListNetworks,
	usecase.NewShowConfig,
	usecase.NewSetConfig,
	usecase.NewRemoveConfig,
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		config.Provider,
		logging.LoggingSet,
		adapters.AllAdapters,
		UseCaseSet,
		NewApp,
	)
	return nil, nil
}

// InitAppWithDeployer wires an App around an existing deployer, such as one
// bound to an in-process chain
func InitAppWithDeployer(v *viper.Viper, sink usecase.ProgressSink, deployer usecase.ContractDeployer) (*App, error) {
	wire.Build(
		config.Provider,
		logging.LoggingSet,
		adapters.ArtifactSet,
		adapters.InteractiveSet,
		adapters.ConfigSet,
		adapters.RepositorySet,
		adapters.LocalConfigSet,
		adapters.VerificationSet,
		UseCaseSet,
		NewApp,
	)
	return nil, nil
}
