package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

var (
	deployerAddr = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// callLog records the order in which pipeline collaborators are used
type callLog struct {
	calls []string
}

func (l *callLog) add(call string) { l.calls = append(l.calls, call) }

type fakeFactories struct {
	log     *callLog
	factory *models.ContractFactory
	err     error
	refs    []string
}

func (f *fakeFactories) GetContractFactory(_ context.Context, ref string) (*models.ContractFactory, error) {
	f.log.add("resolve")
	f.refs = append(f.refs, ref)
	return f.factory, f.err
}

type fakeArgs struct {
	log *callLog
	err error
}

func (f *fakeArgs) ParseConstructorArgs(_ *models.ContractFactory, raw []string) ([]any, []byte, error) {
	f.log.add("args")
	if f.err != nil {
		return nil, nil, f.err
	}
	if len(raw) == 0 {
		return nil, nil, nil
	}
	values := make([]any, len(raw))
	for i, r := range raw {
		values[i] = r
	}
	return values, []byte{0x00, 0xfa}, nil
}

type fakeNetworks struct {
	log     *callLog
	network *config.Network
	err     error
	names   []string
}

func (f *fakeNetworks) GetNetworks(context.Context) []string { return []string{"localhost", "sepolia"} }

func (f *fakeNetworks) ResolveNetwork(_ context.Context, name string) (*config.Network, error) {
	f.log.add("network")
	f.names = append(f.names, name)
	if f.err != nil {
		return nil, f.err
	}
	n := *f.network
	return &n, nil
}

func (f *fakeNetworks) EndpointEnvVar(name string) string {
	if name == "sepolia" {
		return "SEPOLIA_RPC_URL"
	}
	return ""
}

type fakeSenders struct {
	log *callLog
	err error
}

func (f *fakeSenders) TransactOpts(_ context.Context, _ string, _ uint64) (*bind.TransactOpts, error) {
	f.log.add("sender")
	if f.err != nil {
		return nil, f.err
	}
	return &bind.TransactOpts{From: deployerAddr}, nil
}

type fakeDeployer struct {
	log        *callLog
	connectErr error
	deployErr  error
	waitErr    error
	confirmErr error

	deploys       int
	confirmations uint64
	closed        bool
}

func (f *fakeDeployer) Connect(context.Context, *config.Network) error {
	f.log.add("connect")
	return f.connectErr
}

func (f *fakeDeployer) Estimate(context.Context, *models.ContractFactory, *bind.TransactOpts, []any) (*models.DeploymentEstimate, error) {
	f.log.add("estimate")
	return &models.DeploymentEstimate{From: deployerAddr, PredictedAddress: contractAddr, Gas: 1_200_000, GasPrice: big.NewInt(1)}, nil
}

func (f *fakeDeployer) Deploy(_ context.Context, factory *models.ContractFactory, opts *bind.TransactOpts, _ []any) (*models.PendingDeployment, error) {
	f.log.add("deploy")
	f.deploys++
	if f.deployErr != nil {
		return nil, f.deployErr
	}
	tx := types.NewContractCreation(0, big.NewInt(0), 1_200_000, big.NewInt(1), factory.Bytecode)
	return &models.PendingDeployment{Factory: factory, Transaction: tx, From: opts.From, PredictedAddress: contractAddr}, nil
}

func (f *fakeDeployer) WaitForDeployment(_ context.Context, pending *models.PendingDeployment) (*models.DeploymentReceipt, error) {
	f.log.add("wait")
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &models.DeploymentReceipt{
		Address:         contractAddr,
		TransactionHash: pending.TxHash(),
		BlockNumber:     1,
		GasUsed:         1_100_000,
		Confirmations:   1,
	}, nil
}

func (f *fakeDeployer) WaitForConfirmations(_ context.Context, receipt *models.DeploymentReceipt, n uint64) error {
	f.log.add("confirm")
	f.confirmations = n
	if f.confirmErr != nil {
		return f.confirmErr
	}
	receipt.Confirmations = n
	return nil
}

func (f *fakeDeployer) Close() { f.closed = true }

type fakeVerifier struct {
	log *callLog
	err error
}

func (f *fakeVerifier) Verify(_ context.Context, deployment *models.Deployment, _ *config.Network) error {
	f.log.add("verify")
	if f.err != nil {
		deployment.Verification.Status = models.VerificationStatusFailed
		return f.err
	}
	deployment.Verification.Status = models.VerificationStatusVerified
	return nil
}

type fakeResolver struct {
	deployment *models.Deployment
	err        error
	queries    []domain.DeploymentQuery
}

func (f *fakeResolver) ResolveDeployment(_ context.Context, query domain.DeploymentQuery) (*models.Deployment, error) {
	f.queries = append(f.queries, query)
	return f.deployment, f.err
}

// MockDeploymentRepository is a mock implementation of DeploymentRepository
type MockDeploymentRepository struct {
	mock.Mock
	log *callLog
}

func (m *MockDeploymentRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error) {
	args := m.Called(ctx, chainID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	if m.log != nil {
		m.log.add("save")
	}
	args := m.Called(ctx, deployment)
	return args.Error(0)
}

func (m *MockDeploymentRepository) NextLabel(ctx context.Context, namespace string, chainID uint64, contractName, label string) string {
	args := m.Called(ctx, namespace, chainID, contractName, label)
	return args.String(0)
}

// recordingSink captures progress events
type recordingSink struct {
	events []usecase.ProgressEvent
	errors []string
}

func (s *recordingSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	s.events = append(s.events, event)
}
func (s *recordingSink) Info(string)          {}
func (s *recordingSink) Error(message string) { s.errors = append(s.errors, message) }

func (s *recordingSink) stages() []usecase.ExecutionStage {
	var stages []usecase.ExecutionStage
	for _, e := range s.events {
		if len(stages) == 0 || stages[len(stages)-1] != e.Stage {
			stages = append(stages, e.Stage)
		}
	}
	return stages
}
