package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

// ContractFactoryResolver is the contract-factory lookup service keyed by name
type ContractFactoryResolver interface {
	GetContractFactory(ctx context.Context, ref string) (*models.ContractFactory, error)
}

// ConstructorArgsParser turns command-line values into constructor arguments
type ConstructorArgsParser interface {
	ParseConstructorArgs(factory *models.ContractFactory, raw []string) ([]any, []byte, error)
}

// ContractSelector handles interactive selection of contracts
type ContractSelector interface {
	SelectContract(ctx context.Context, contracts []*models.ContractFactory, prompt string) (*models.ContractFactory, error)
}

// DeploymentSelector handles interactive selection of deployments
type DeploymentSelector interface {
	SelectDeployment(ctx context.Context, deployments []*models.Deployment, prompt string) (*models.Deployment, error)
}

// NetworkResolver handles network configuration resolution
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error)
	EndpointEnvVar(networkName string) string
}

// SenderProvider builds signing options for a configured sender
type SenderProvider interface {
	TransactOpts(ctx context.Context, senderName string, chainID uint64) (*bind.TransactOpts, error)
}

// ContractDeployer submits contract creations and waits for them. One deployer
// serves one network connection.
type ContractDeployer interface {
	Connect(ctx context.Context, network *config.Network) error
	Estimate(ctx context.Context, factory *models.ContractFactory, opts *bind.TransactOpts, args []any) (*models.DeploymentEstimate, error)
	Deploy(ctx context.Context, factory *models.ContractFactory, opts *bind.TransactOpts, args []any) (*models.PendingDeployment, error)
	WaitForDeployment(ctx context.Context, pending *models.PendingDeployment) (*models.DeploymentReceipt, error)
	WaitForConfirmations(ctx context.Context, receipt *models.DeploymentReceipt, confirmations uint64) error
	Close()
}

// DeploymentRepository handles persistence of deployments
type DeploymentRepository interface {
	GetDeployment(ctx context.Context, id string) (*models.Deployment, error)
	GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error)
	ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error)
	SaveDeployment(ctx context.Context, deployment *models.Deployment) error
	NextLabel(ctx context.Context, namespace string, chainID uint64, contractName, label string) string
}

// DeploymentResolver resolves a user reference to one registry record
type DeploymentResolver interface {
	ResolveDeployment(ctx context.Context, query domain.DeploymentQuery) (*models.Deployment, error)
}

// ContractVerifier handles contract verification
type ContractVerifier interface {
	Verify(ctx context.Context, deployment *models.Deployment, network *config.Network) error
}

// VerificationStatusChecker asks a block explorer whether source is published
type VerificationStatusChecker interface {
	IsVerified(ctx context.Context, network *config.Network, address string) (bool, error)
}

// LocalConfigRepository persists per-checkout defaults
type LocalConfigRepository interface {
	Exists() bool
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, local *config.LocalConfig) error
	GetPath() string
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   ExecutionStage
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// ExecutionStage represents a stage in the deploy pipeline
type ExecutionStage string

const (
	StageResolving  ExecutionStage = "Resolving"
	StageConnecting ExecutionStage = "Connecting"
	StageDeploying  ExecutionStage = "Deploying"
	StageConfirming ExecutionStage = "Confirming"
	StageRecording  ExecutionStage = "Recording"
	StageVerifying  ExecutionStage = "Verifying"
	StageCompleted  ExecutionStage = "Completed"
)
