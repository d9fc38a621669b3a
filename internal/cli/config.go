package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/nft-deployer/internal/cli/render"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nftdeploy local config",
		Long: `Manage local defaults stored in .nftdeploy/config.local.json

The config holds defaults for namespace, network, contract and sender that
are used when the matching flags are not given. Environment variables
(NFTDEPLOY_NETWORK, ...) and flags still take precedence.

When run without subcommands, displays the current config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowConfig.Run(cmd.Context())
			if err != nil {
				return err
			}
			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderConfig(result)
		},
	}

	cmd.AddCommand(NewConfigSetCmd())
	cmd.AddCommand(NewConfigRemoveCmd())

	return cmd
}

// NewConfigSetCmd creates the config set subcommand
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: `Set a config value.
Available keys: namespace (ns), network, contract, sender`,
		Example: `  nftdeploy config set network sepolia
  nftdeploy config set ns staging`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.SetConfig.Run(cmd.Context(), usecase.SetConfigParams{Key: args[0], Value: args[1]})
			if err != nil {
				return err
			}
			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderSet(result)
		},
	}
}

// NewConfigRemoveCmd creates the config remove subcommand
func NewConfigRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a config value",
		Example: `  nftdeploy config remove network`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.RemoveConfig.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderRemove(result)
		},
	}
}
