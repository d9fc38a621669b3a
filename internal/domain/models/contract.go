package models

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ArtifactFormat identifies the toolchain that produced a compilation artifact
type ArtifactFormat string

const (
	ArtifactFormatFoundry ArtifactFormat = "foundry"
	ArtifactFormatHardhat ArtifactFormat = "hardhat"
)

// ContractFactory is a deployable contract resolved from a compilation artifact.
// It carries everything needed to build a contract-creation transaction.
type ContractFactory struct {
	Name            string         `json:"name"`
	SourcePath      string         `json:"sourcePath"`   // e.g. "src/DynamicNFTMarketplace.sol"
	ArtifactPath    string         `json:"artifactPath"` // absolute path to the artifact json
	Format          ArtifactFormat `json:"format"`
	CompilerVersion string         `json:"compilerVersion,omitempty"`

	ABI      abi.ABI `json:"-"`
	Bytecode []byte  `json:"-"`

	// Library placeholders still present in the creation bytecode
	UnlinkedLibraries []string `json:"unlinkedLibraries,omitempty"`
}

// FullyQualifiedName returns "path:Name", the form accepted by forge and hardhat
func (f *ContractFactory) FullyQualifiedName() string {
	if f.SourcePath == "" {
		return f.Name
	}
	return fmt.Sprintf("%s:%s", f.SourcePath, f.Name)
}

// HasConstructorInputs reports whether the constructor takes arguments
func (f *ContractFactory) HasConstructorInputs() bool {
	return len(f.ABI.Constructor.Inputs) > 0
}

// BytecodeHash returns the keccak256 of the creation bytecode
func (f *ContractFactory) BytecodeHash() common.Hash {
	return crypto.Keccak256Hash(f.Bytecode)
}

// PendingDeployment is a submitted but not yet confirmed contract creation
type PendingDeployment struct {
	Factory          *ContractFactory
	Transaction      *types.Transaction
	From             common.Address
	Nonce            uint64
	PredictedAddress common.Address
	ConstructorArgs  []byte
}

// TxHash returns the hash of the creation transaction
func (p *PendingDeployment) TxHash() common.Hash {
	return p.Transaction.Hash()
}

// DeploymentReceipt is the confirmed result of a contract creation
type DeploymentReceipt struct {
	Address           common.Address
	TransactionHash   common.Hash
	BlockNumber       uint64
	GasUsed           uint64
	EffectiveGasPrice *big.Int
	Confirmations     uint64
}

// DeploymentEstimate is the outcome of a dry run
type DeploymentEstimate struct {
	From             common.Address
	Nonce            uint64
	PredictedAddress common.Address
	Gas              uint64
	GasPrice         *big.Int
}

// MaxCost returns gas * gasPrice
func (e *DeploymentEstimate) MaxCost() *big.Int {
	if e.GasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(e.Gas), e.GasPrice)
}
