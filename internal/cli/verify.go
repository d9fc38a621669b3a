package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/nft-deployer/internal/cli/render"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "verify <deployment>",
		Short: "Verify a deployed contract on block explorers",
		Long: `Verify a recorded deployment on Etherscan and Sourcify and update its
registry status. Foundry artifacts are verified with "forge verify-contract",
Hardhat artifacts with "npx hardhat verify".`,
		Example: `  nftdeploy verify DynamicNFTMarketplace --network sepolia
  nftdeploy verify DynamicNFTMarketplace:2 --force
  nftdeploy verify 0x5FbDB2315678afecb367f032d93F642f64180aa3 --network sepolia`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, verifyErr := app.VerifyDeployment.Run(cmd.Context(), args[0], usecase.VerifyOptions{Force: force})
			if result == nil {
				return verifyErr
			}

			// Per-verifier status is useful even when verification failed
			if err := render.NewVerifyRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), app.Config.JSON).Render(result); err != nil {
				return err
			}
			return verifyErr
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-verify even if already verified")

	return cmd
}
