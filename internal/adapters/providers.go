package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/abi"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/blockchain"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/contracts"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/fs"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/interactive"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/network"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/repository/deployments"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/resolvers"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/senders"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/verification"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// ArtifactSet provides compilation artifact lookup
var ArtifactSet = wire.NewSet(
	contracts.NewIndexer,
	contracts.NewFactoryResolver,
	wire.Bind(new(usecase.ContractFactoryResolver), new(*contracts.FactoryResolver)),

	abi.NewArgsParser,
	wire.Bind(new(usecase.ConstructorArgsParser), new(*abi.ArgsParser)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ContractSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.DeploymentSelector), new(*interactive.SelectorAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	network.NewResolver,
	wire.Bind(new(usecase.NetworkResolver), new(*network.Resolver)),

	senders.NewManager,
	wire.Bind(new(usecase.SenderProvider), new(*senders.Manager)),
)

// BlockchainSet provides RPC-backed implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewDeployer,
	wire.Bind(new(usecase.ContractDeployer), new(*blockchain.Deployer)),
)

// RepositorySet provides the deployment registry
var RepositorySet = wire.NewSet(
	deployments.NewFileRepository,
	wire.Bind(new(usecase.DeploymentRepository), new(*deployments.FileRepository)),

	resolvers.NewDeploymentResolver,
	wire.Bind(new(usecase.DeploymentResolver), new(*resolvers.DeploymentResolver)),
)

// LocalConfigSet provides the per-checkout config file
var LocalConfigSet = wire.NewSet(
	fs.NewLocalConfigStore,
	wire.Bind(new(usecase.LocalConfigRepository), new(*fs.LocalConfigStore)),
)

// VerificationSet provides explorer verification
var VerificationSet = wire.NewSet(
	verification.NewExplorerClient,
	wire.Bind(new(usecase.VerificationStatusChecker), new(*verification.ExplorerClient)),

	verification.NewVerifier,
	wire.Bind(new(usecase.ContractVerifier), new(*verification.Verifier)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ArtifactSet,
	InteractiveSet,
	ConfigSet,
	BlockchainSet,
	RepositorySet,
	LocalConfigSet,
	VerificationSet,
)
