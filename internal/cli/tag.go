package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/nft-deployer/internal/cli/render"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// NewTagCmd creates the tag command
func NewTagCmd() *cobra.Command {
	var addTag, removeTag string

	cmd := &cobra.Command{
		Use:   "tag <deployment>",
		Short: "Manage deployment tags",
		Long: `Show, add or remove tags on a recorded deployment.

Without flags the current tags are shown. Deployments are referenced the
same way as in "show".`,
		Example: `  nftdeploy tag DynamicNFTMarketplace
  nftdeploy tag DynamicNFTMarketplace --add stable
  nftdeploy tag default/11155111/DynamicNFTMarketplace:2 --remove v1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addTag != "" && removeTag != "" {
				return fmt.Errorf("cannot use --add and --remove together")
			}

			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.TagDeploymentParams{Reference: args[0], Operation: usecase.TagOperationShow}
			switch {
			case addTag != "":
				params.Operation, params.Tag = usecase.TagOperationAdd, addTag
			case removeTag != "":
				params.Operation, params.Tag = usecase.TagOperationRemove, removeTag
			}

			result, err := app.TagDeployment.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewTagRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().StringVar(&addTag, "add", "", "Add a tag to the deployment")
	cmd.Flags().StringVar(&removeTag, "remove", "", "Remove a tag from the deployment")

	return cmd
}
