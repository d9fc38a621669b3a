package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/nft-deployer/internal/cli/render"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

type deployOptions struct {
	label         string
	args          []string
	confirmations uint64
	verify        bool
	dryRun        bool
	sender        string
	tags          []string
}

func (o *deployOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.label, "label", "", "Registry label for this deployment")
	cmd.Flags().StringArrayVar(&o.args, "arg", nil, "Constructor argument in ABI order (repeatable)")
	cmd.Flags().Uint64Var(&o.confirmations, "confirmations", 0, "Blocks to wait for after inclusion (defaults to 1, or 6 with --verify)")
	cmd.Flags().BoolVar(&o.verify, "verify", false, "Verify the contract on block explorers after deploying")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Estimate gas and predict the address without sending")
	cmd.Flags().StringVar(&o.sender, "sender", "", "Sender from nftdeploy.toml (defaults to PRIVATE_KEY)")
	cmd.Flags().StringSliceVar(&o.tags, "tag", nil, "Tag to record with the deployment (repeatable)")
}

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var opts deployOptions

	cmd := &cobra.Command{
		Use:   "deploy [contract]",
		Short: "Deploy a contract and wait for it to be mined",
		Long: `Deploy a compiled contract with a single creation transaction.

The contract is looked up by name ("DynamicNFTMarketplace") or fully qualified
name ("src/DynamicNFTMarketplace.sol:DynamicNFTMarketplace") in the project's
Foundry or Hardhat artifacts. Without an argument the project default is used.`,
		Example: `  # Deploy the default contract to a local node
  nftdeploy deploy

  # Deploy to sepolia with constructor arguments and verify
  nftdeploy deploy DynamicNFTMarketplace --network sepolia --arg 250 --arg 0xf39F...2266 --verify

  # Predict the address without sending anything
  nftdeploy deploy --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) > 0 {
				ref = args[0]
			}
			return runDeploy(cmd, ref, opts)
		},
	}
	opts.addFlags(cmd)

	return cmd
}

func runDeploy(cmd *cobra.Command, ref string, opts deployOptions) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}

	name := ref
	if name == "" {
		name = app.Config.DefaultContract
	}

	renderer := render.NewDeployRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), app.Config.JSON)
	renderer.RenderStart(contractName(name))

	result, err := app.DeployContract.Run(cmd.Context(), usecase.DeployContractParams{
		ContractRef:   ref,
		Label:         opts.label,
		Args:          opts.args,
		Sender:        opts.sender,
		Confirmations: opts.confirmations,
		Verify:        opts.verify,
		DryRun:        opts.dryRun,
		Tags:          opts.tags,
	})
	if err != nil {
		return err
	}

	return renderer.Render(result)
}

// contractName strips the source path from "path/File.sol:Name"
func contractName(ref string) string {
	if _, name, ok := strings.Cut(ref, ":"); ok {
		return name
	}
	return strings.TrimSuffix(filepath.Base(ref), ".sol")
}
