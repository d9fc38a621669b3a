package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/nft-deployer/internal/cli/render"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		contractName  string
		label         string
		chainID       uint64
		allNamespaces bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List deployments from registry",
		Long: `List deployments recorded in .nftdeploy/deployments.json.

By default only the current namespace is shown, across every chain unless
--network or --chain-id narrows it down.`,
		Example: `  # List all deployments in the current namespace
  nftdeploy list

  # List marketplace deployments on sepolia
  nftdeploy list --contract DynamicNFTMarketplace --network sepolia

  # List everything, in every namespace, as JSON
  nftdeploy list --all-namespaces --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListDeployments.Run(cmd.Context(), usecase.ListDeploymentsParams{
				ContractName:  contractName,
				Label:         label,
				ChainID:       chainID,
				AllNamespaces: allNamespaces,
			})
			if err != nil {
				return err
			}

			return render.NewDeploymentsRenderer(cmd.OutOrStdout(), app.Config.JSON).Render(result)
		},
	}

	cmd.Flags().StringVar(&contractName, "contract", "", "Filter by contract name")
	cmd.Flags().StringVar(&label, "label", "", "Filter by label")
	cmd.Flags().Uint64Var(&chainID, "chain-id", 0, "Filter by chain ID")
	cmd.Flags().BoolVar(&allNamespaces, "all-namespaces", false, "Show deployments from every namespace")

	return cmd
}
