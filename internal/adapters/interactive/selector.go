package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectContract selects a contract from a list
func (s *SelectorAdapter) SelectContract(ctx context.Context, contracts []*models.ContractFactory, prompt string) (*models.ContractFactory, error) {
	if len(contracts) == 0 {
		return nil, fmt.Errorf("no contracts provided for selection")
	}
	if len(contracts) == 1 {
		return contracts[0], nil
	}
	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	index, err := s.run(prompt, FormatContractOptions(contracts))
	if err != nil {
		return nil, err
	}
	return contracts[index], nil
}

// SelectDeployment selects a deployment from a list
func (s *SelectorAdapter) SelectDeployment(ctx context.Context, deployments []*models.Deployment, prompt string) (*models.Deployment, error) {
	if len(deployments) == 0 {
		return nil, fmt.Errorf("no deployments provided for selection")
	}
	if len(deployments) == 1 {
		return deployments[0], nil
	}
	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	index, err := s.run(prompt, FormatDeploymentOptions(deployments))
	if err != nil {
		return nil, err
	}
	return deployments[index], nil
}

func (s *SelectorAdapter) run(prompt string, options []string) (int, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}
	return index, nil
}

// FormatContractOptions creates display strings for contract selection
func FormatContractOptions(contracts []*models.ContractFactory) []string {
	options := make([]string, len(contracts))
	for i, contract := range contracts {
		name := color.New(color.FgWhite, color.Bold).Sprint(contract.Name)
		path := color.New(color.FgBlue).Sprint(strings.TrimPrefix(contract.SourcePath, "src/"))
		format := color.New(color.FgYellow).Sprintf("[%s]", contract.Format)
		options[i] = fmt.Sprintf("%s %s (%s)", name, format, path)
	}
	return options
}

// FormatDeploymentOptions creates display strings for deployment selection
func FormatDeploymentOptions(deployments []*models.Deployment) []string {
	options := make([]string, len(deployments))
	for i, d := range deployments {
		options[i] = fmt.Sprintf("%s %s (%s)",
			color.New(color.FgWhite, color.Bold).Sprint(d.ID),
			color.New(color.FgGreen).Sprint(d.Address),
			color.New(color.FgBlue).Sprint(d.NetworkName))
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Ensure the adapter implements the interfaces
var (
	_ usecase.ContractSelector   = (*SelectorAdapter)(nil)
	_ usecase.DeploymentSelector = (*SelectorAdapter)(nil)
)
