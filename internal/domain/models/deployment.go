package models

import (
	"fmt"
	"time"
)

// VerificationStatus represents the verification status
type VerificationStatus string

const (
	VerificationStatusUnverified VerificationStatus = "UNVERIFIED"
	VerificationStatusVerified   VerificationStatus = "VERIFIED"
	VerificationStatusFailed     VerificationStatus = "FAILED"
	VerificationStatusPartial    VerificationStatus = "PARTIAL"
)

// Deployment represents a contract deployment record
type Deployment struct {
	// Core identification
	ID           string `json:"id" yaml:"id"`               // e.g., "default/11155111/DynamicNFTMarketplace"
	Namespace    string `json:"namespace" yaml:"namespace"` // e.g., "default", "staging"
	ChainID      uint64 `json:"chainId" yaml:"chainId"`
	NetworkName  string `json:"network" yaml:"network"`
	ContractName string `json:"contractName" yaml:"contractName"`
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
	Address      string `json:"address" yaml:"address"`

	// Creation transaction
	Deployer    string `json:"deployer" yaml:"deployer"`
	TxHash      string `json:"transactionHash" yaml:"transactionHash"`
	BlockNumber uint64 `json:"blockNumber" yaml:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed" yaml:"gasUsed"`

	// Encoded constructor arguments (hex) and the raw values they came from
	ConstructorArgs    string   `json:"constructorArgs,omitempty" yaml:"constructorArgs,omitempty"`
	ConstructorArgsRaw []string `json:"constructorArgsRaw,omitempty" yaml:"constructorArgsRaw,omitempty"`

	Artifact     ArtifactInfo     `json:"artifact" yaml:"artifact"`
	Verification VerificationInfo `json:"verification" yaml:"verification"`

	Tags      []string  `json:"tags" yaml:"tags"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// ArtifactInfo contains contract artifact information
type ArtifactInfo struct {
	Path            string         `json:"path" yaml:"path"` // e.g., "src/Counter.sol:Counter"
	Format          ArtifactFormat `json:"format" yaml:"format"`
	CompilerVersion string         `json:"compilerVersion,omitempty" yaml:"compilerVersion,omitempty"`
	BytecodeHash    string         `json:"bytecodeHash" yaml:"bytecodeHash"`
}

// VerifierStatus represents the status of a single verifier
type VerifierStatus struct {
	Status string `json:"status" yaml:"status"` // verified/failed
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// VerificationInfo contains verification details
type VerificationInfo struct {
	Status       VerificationStatus        `json:"status" yaml:"status"`
	EtherscanURL string                    `json:"etherscanUrl,omitempty" yaml:"etherscanUrl,omitempty"`
	VerifiedAt   *time.Time                `json:"verifiedAt,omitempty" yaml:"verifiedAt,omitempty"`
	Reason       string                    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Verifiers    map[string]VerifierStatus `json:"verifiers,omitempty" yaml:"verifiers,omitempty"` // etherscan, sourcify, hardhat
}

// GetShortID returns contractName:label or just contractName
func (d *Deployment) GetShortID() string {
	if d.Label != "" {
		return fmt.Sprintf("%s:%s", d.ContractName, d.Label)
	}
	return d.ContractName
}

// BuildDeploymentID builds the registry key for a deployment
func BuildDeploymentID(namespace string, chainID uint64, contractName, label string) string {
	short := contractName
	if label != "" {
		short = fmt.Sprintf("%s:%s", contractName, label)
	}
	return fmt.Sprintf("%s/%d/%s", namespace, chainID, short)
}
