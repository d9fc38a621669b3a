package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/nft-deployer/internal/cli/render"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <deployment>",
		Short: "Show detailed deployment information from registry",
		Long: `Show detailed information about a specific deployment.

You can specify deployments using:
- Contract name: "DynamicNFTMarketplace"
- Contract with label: "DynamicNFTMarketplace:v2"
- Namespace/contract: "staging/DynamicNFTMarketplace"
- Chain/contract: "11155111/DynamicNFTMarketplace"
- Full deployment ID: "production/1/DynamicNFTMarketplace:v1"
- Contract address: "0x1234..."`,
		Example: `  nftdeploy show DynamicNFTMarketplace
  nftdeploy show DynamicNFTMarketplace:2 --network sepolia
  nftdeploy show 0x5FbDB2315678afecb367f032d93F642f64180aa3 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			format, err := render.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				format = render.FormatJSON
			}

			deployment, err := app.ShowDeployment.Run(cmd.Context(), usecase.ShowDeploymentParams{Reference: args[0]})
			if err != nil {
				return err
			}

			return render.NewDeploymentRenderer(cmd.OutOrStdout(), format).Render(deployment)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}
