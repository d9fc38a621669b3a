package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrContractNotFound is returned when a contract can't be found
	ErrContractNotFound = errors.New("contract not found")

	// ErrAmbiguousContract is returned when a contract name matches several artifacts
	ErrAmbiguousContract = errors.New("ambiguous contract reference")

	// ErrNoBytecode is returned for abstract contracts and interfaces
	ErrNoBytecode = errors.New("artifact has no creation bytecode")

	// ErrUnlinkedLibraries is returned when bytecode still has library placeholders
	ErrUnlinkedLibraries = errors.New("bytecode has unlinked libraries")

	// ErrNetworkMismatch is returned when the RPC reports a different chain ID
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrNetworkNotConfigured is returned for unknown network names
	ErrNetworkNotConfigured = errors.New("network not configured")

	// ErrDeploymentReverted is returned when the creation transaction failed on chain
	ErrDeploymentReverted = errors.New("deployment transaction reverted")

	// ErrNoCode is returned when no code exists at the created address
	ErrNoCode = errors.New("no code at deployed address")

	// ErrSenderNotConfigured is returned when no signing key is available
	ErrSenderNotConfigured = errors.New("sender not configured")

	// ErrInvalidConstructorArgs is returned when --arg values don't match the ABI
	ErrInvalidConstructorArgs = errors.New("invalid constructor arguments")

	// ErrVerificationFailed is returned when contract verification fails
	ErrVerificationFailed = errors.New("verification failed")
)

// NoContractsMatchErr is returned when no artifact matches a contract reference
type NoContractsMatchErr struct {
	Query       string
	Suggestions []string
}

func (e NoContractsMatchErr) Error() string {
	msg := fmt.Sprintf("no contracts match %q", e.Query)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e NoContractsMatchErr) Unwrap() error { return ErrContractNotFound }

// AmbiguousContractErr is returned when a reference matches several artifacts
type AmbiguousContractErr struct {
	Query   string
	Matches []*models.ContractFactory
}

func (e AmbiguousContractErr) Error() string {
	sorted := make([]*models.ContractFactory, len(e.Matches))
	copy(sorted, e.Matches)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FullyQualifiedName() < sorted[j].FullyQualifiedName()
	})

	var suggestions []string
	for _, contract := range sorted {
		suggestions = append(suggestions, fmt.Sprintf("  - %s (%s)", contract.FullyQualifiedName(), contract.Format))
	}

	return fmt.Sprintf("multiple contracts found matching %q - use full path:contract format to disambiguate:\n%s",
		e.Query, strings.Join(suggestions, "\n"))
}

func (e AmbiguousContractErr) Unwrap() error { return ErrAmbiguousContract }
