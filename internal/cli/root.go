package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/nft-deployer/internal/adapters/progress"
	"github.com/trebuchet-org/nft-deployer/internal/app"
	"github.com/trebuchet-org/nft-deployer/internal/config"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"

	// cancelKey holds the CancelFunc of the --timeout context
	cancelKey contextKey = "cancel"
)

// appFactory builds the App once flags and config are known
type appFactory func(v *viper.Viper, sink usecase.ProgressSink) (*app.App, error)

// NewRootCmd creates the root command. Run without a subcommand it deploys
// the project's default contract.
func NewRootCmd() *cobra.Command {
	return newRootCmd(app.InitApp)
}

func newRootCmd(factory appFactory) *cobra.Command {
	var deployOpts deployOptions

	rootCmd := &cobra.Command{
		Use:   "nftdeploy",
		Short: "Deploy the DynamicNFTMarketplace contract",
		Long: `nftdeploy resolves a compiled contract from Foundry or Hardhat artifacts,
sends a single creation transaction and waits for it to be mined.

Run without a subcommand it deploys the project's default contract
(DynamicNFTMarketplace unless nftdeploy.toml says otherwise).`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, _ := cmd.Flags().GetString("project-root")
			if projectRoot == "" {
				var err error
				projectRoot, err = config.FindProjectRoot()
				if err != nil {
					return err
				}
			}

			// Flags the user set win over env and config file
			v := config.SetupViper(projectRoot, cmd.Flags())

			sink := newProgressSink(cmd.ErrOrStderr(), v.GetBool("non_interactive"))

			appInstance, err := factory(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// Add timeout if configured; execute calls cancel once the
			// command returns, whether RunE failed or not
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				ctx = context.WithValue(ctx, cancelKey, cancel)
			}

			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, "", deployOpts)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Print machine readable JSON on stdout")
	rootCmd.PersistentFlags().StringP("namespace", "s", "", "Deployment namespace (defaults to 'default')")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network name from foundry.toml or an RPC URL (defaults to localhost)")
	rootCmd.PersistentFlags().String("project-root", "", "Project directory (defaults to the nearest directory with foundry.toml or hardhat.config)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Abort after this long (defaults to 10m)")

	// The bare command accepts the deploy flags too
	deployOpts.addFlags(rootCmd)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	verifyCmd := NewVerifyCmd()
	verifyCmd.GroupID = "main"
	rootCmd.AddCommand(verifyCmd)

	listCmd := NewListCmd()
	listCmd.GroupID = "management"
	rootCmd.AddCommand(listCmd)

	showCmd := NewShowCmd()
	showCmd.GroupID = "management"
	rootCmd.AddCommand(showCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	tagCmd := NewTagCmd()
	tagCmd.GroupID = "management"
	rootCmd.AddCommand(tagCmd)

	configCmd := NewConfigCmd()
	configCmd.GroupID = "management"
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the CLI and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, NewRootCmd(), args, stdout, stderr)
}

func execute(ctx context.Context, rootCmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if cmd != nil && cmd.Context() != nil {
		if cancel, ok := cmd.Context().Value(cancelKey).(context.CancelFunc); ok {
			cancel()
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newProgressSink picks a spinner for terminals and plain lines otherwise
func newProgressSink(out io.Writer, nonInteractive bool) usecase.ProgressSink {
	if f, ok := out.(*os.File); ok && !nonInteractive && isatty.IsTerminal(f.Fd()) {
		return progress.NewSpinnerProgressReporter(out)
	}
	return progress.NewLineSink(out)
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
