package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/nft-deployer/internal/domain"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// Backend is the part of an RPC client the deployer needs
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ethereum.ChainIDReader
	ethereum.BlockNumberReader
}

// Dialer opens a Backend for an RPC URL
type Dialer func(ctx context.Context, rpcURL string) (Backend, error)

// DialEthClient dials with ethclient
func DialEthClient(ctx context.Context, rpcURL string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// DefaultPollInterval is how often the chain head is polled for confirmations
const DefaultPollInterval = 2 * time.Second

// Deployer submits contract creations through a single RPC connection
type Deployer struct {
	dial         Dialer
	log          *slog.Logger
	pollInterval time.Duration

	backend Backend
	network *config.Network
}

// NewDeployer creates a deployer backed by ethclient
func NewDeployer(log *slog.Logger) *Deployer {
	return NewDeployerWithDialer(log, DialEthClient, DefaultPollInterval)
}

// NewDeployerWithDialer creates a deployer with a custom backend dialer
func NewDeployerWithDialer(log *slog.Logger, dial Dialer, pollInterval time.Duration) *Deployer {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Deployer{
		dial:         dial,
		log:          log,
		pollInterval: pollInterval,
	}
}

// Connect establishes connection to the blockchain and checks the chain ID
func (d *Deployer) Connect(ctx context.Context, network *config.Network) error {
	d.Close()

	backend, err := d.dial(ctx, network.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		closeBackend(backend)
		return fmt.Errorf("failed to get chain ID: %w", err)
	}
	if network.ChainID != 0 && chainID.Uint64() != network.ChainID {
		closeBackend(backend)
		return fmt.Errorf("%w: %s expects chain ID %d, RPC reports %d",
			domain.ErrNetworkMismatch, network.Name, network.ChainID, chainID.Uint64())
	}
	network.ChainID = chainID.Uint64()

	d.backend = backend
	d.network = network
	d.log.Debug("connected", "network", network.Name, "chainId", network.ChainID)
	return nil
}

// Estimate predicts gas and the CREATE address without submitting anything
func (d *Deployer) Estimate(ctx context.Context, factory *models.ContractFactory, opts *bind.TransactOpts, args []any) (*models.DeploymentEstimate, error) {
	if d.backend == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}

	data, err := creationData(factory, args)
	if err != nil {
		return nil, err
	}

	nonce, err := d.backend.PendingNonceAt(ctx, opts.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	gas, err := d.backend.EstimateGas(ctx, ethereum.CallMsg{From: opts.From, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gasPrice, err := d.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	return &models.DeploymentEstimate{
		From:             opts.From,
		Nonce:            nonce,
		PredictedAddress: crypto.CreateAddress(opts.From, nonce),
		Gas:              gas,
		GasPrice:         gasPrice,
	}, nil
}

// Deploy submits exactly one contract-creation transaction
func (d *Deployer) Deploy(ctx context.Context, factory *models.ContractFactory, opts *bind.TransactOpts, args []any) (*models.PendingDeployment, error) {
	if d.backend == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}
	if len(factory.Bytecode) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoBytecode, factory.Name)
	}

	packed, err := factory.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConstructorArgs, err)
	}

	txOpts := *opts
	txOpts.Context = ctx

	address, tx, _, err := bind.DeployContract(&txOpts, factory.ABI, factory.Bytecode, d.backend, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to send deployment transaction: %w", err)
	}

	d.log.Debug("deployment submitted", "tx", tx.Hash().Hex(), "nonce", tx.Nonce(), "predicted", address.Hex())
	return &models.PendingDeployment{
		Factory:          factory,
		Transaction:      tx,
		From:             opts.From,
		Nonce:            tx.Nonce(),
		PredictedAddress: address,
		ConstructorArgs:  packed,
	}, nil
}

// WaitForDeployment blocks until the creation transaction is mined
func (d *Deployer) WaitForDeployment(ctx context.Context, pending *models.PendingDeployment) (*models.DeploymentReceipt, error) {
	if d.backend == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}

	receipt, err := bind.WaitMined(ctx, d.backend, pending.Transaction)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", pending.TxHash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s in block %s", domain.ErrDeploymentReverted, pending.TxHash().Hex(), receipt.BlockNumber)
	}

	code, err := d.backend.CodeAt(ctx, receipt.ContractAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check code: %w", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoCode, receipt.ContractAddress.Hex())
	}

	result := &models.DeploymentReceipt{
		Address:           receipt.ContractAddress,
		TransactionHash:   receipt.TxHash,
		GasUsed:           receipt.GasUsed,
		EffectiveGasPrice: receipt.EffectiveGasPrice,
		Confirmations:     1,
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return result, nil
}

// WaitForConfirmations polls the chain head until the receipt's block has the
// requested depth. The inclusion block counts as the first confirmation.
func (d *Deployer) WaitForConfirmations(ctx context.Context, receipt *models.DeploymentReceipt, confirmations uint64) error {
	if confirmations <= 1 {
		return nil
	}
	if d.backend == nil {
		return fmt.Errorf("not connected to blockchain")
	}

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		head, err := d.backend.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to get block number: %w", err)
		}
		if head >= receipt.BlockNumber {
			receipt.Confirmations = head - receipt.BlockNumber + 1
		}
		if receipt.Confirmations >= confirmations {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d confirmations (have %d): %w", confirmations, receipt.Confirmations, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close releases the RPC connection
func (d *Deployer) Close() {
	if d.backend != nil {
		closeBackend(d.backend)
		d.backend = nil
	}
}

func creationData(factory *models.ContractFactory, args []any) ([]byte, error) {
	packed, err := factory.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConstructorArgs, err)
	}
	data := make([]byte, 0, len(factory.Bytecode)+len(packed))
	data = append(data, factory.Bytecode...)
	return append(data, packed...), nil
}

func closeBackend(b Backend) {
	if c, ok := b.(interface{ Close() }); ok {
		c.Close()
	}
}

// GasCost returns gasUsed * effectiveGasPrice in wei
func GasCost(receipt *models.DeploymentReceipt) *big.Int {
	if receipt.EffectiveGasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), receipt.EffectiveGasPrice)
}

// Ensure the deployer implements the interface
var _ usecase.ContractDeployer = (*Deployer)(nil)
