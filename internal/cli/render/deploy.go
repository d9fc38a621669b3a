package render

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// DeployRenderer prints deploy results. Only the result lines go to out;
// warnings go to errOut so scripted callers can parse stdout.
type DeployRenderer struct {
	out    io.Writer
	errOut io.Writer
	json   bool
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out, errOut io.Writer, json bool) *DeployRenderer {
	return &DeployRenderer{
		out:    out,
		errOut: errOut,
		json:   json,
	}
}

// RenderStart announces the deployment before any work begins
func (r *DeployRenderer) RenderStart(contractName string) {
	if r.json {
		return
	}
	fmt.Fprintf(r.out, "Deploying %s contract...\n", contractName)
}

// Render prints the outcome of a deployment or dry run
func (r *DeployRenderer) Render(result *usecase.DeployContractResult) error {
	for _, warning := range result.Warnings {
		fmt.Fprintln(r.errOut, FormatWarning(warning))
	}

	if r.json {
		return writeJSON(r.out, newDeployOutput(result))
	}

	if result.Estimate != nil {
		est := result.Estimate
		fmt.Fprintf(r.out, "%s would deploy to: %s\n", result.Factory.Name, est.PredictedAddress.Hex())
		fmt.Fprintf(r.out, "Estimated gas: %d (max cost %s ETH)\n", est.Gas, formatEther(est.MaxCost()))
		fmt.Fprintln(r.out, "Dry run completed, no transaction sent.")
		return nil
	}

	fmt.Fprintf(r.out, "%s deployed to: %s\n", result.Factory.Name, result.Address())
	fmt.Fprintln(r.out, "Deployment completed successfully!")
	return nil
}

type deployOutput struct {
	Contract        string   `json:"contract"`
	Address         string   `json:"address"`
	Network         string   `json:"network"`
	ChainID         uint64   `json:"chainId"`
	DryRun          bool     `json:"dryRun,omitempty"`
	DeploymentID    string   `json:"deploymentId,omitempty"`
	TransactionHash string   `json:"transactionHash,omitempty"`
	BlockNumber     uint64   `json:"blockNumber,omitempty"`
	GasUsed         uint64   `json:"gasUsed,omitempty"`
	EstimatedGas    uint64   `json:"estimatedGas,omitempty"`
	Verification    string   `json:"verification,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

func newDeployOutput(result *usecase.DeployContractResult) deployOutput {
	out := deployOutput{
		Contract: result.Factory.Name,
		Address:  result.Address(),
		Network:  result.Network.Name,
		ChainID:  result.Network.ChainID,
		Warnings: result.Warnings,
	}
	if result.Estimate != nil {
		out.DryRun = true
		out.EstimatedGas = result.Estimate.Gas
	}
	if result.Receipt != nil {
		out.TransactionHash = result.Receipt.TransactionHash.Hex()
		out.BlockNumber = result.Receipt.BlockNumber
		out.GasUsed = result.Receipt.GasUsed
	}
	if result.Deployment != nil {
		out.DeploymentID = result.Deployment.ID
		out.Verification = string(result.Deployment.Verification.Status)
	}
	return out
}

// formatEther renders a wei amount in ether with up to 6 decimals
func formatEther(wei *big.Int) string {
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether))
	return f.Text('f', 6)
}
