package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/nft-deployer/internal/domain/models"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// Color styles for table format
var (
	nsBg             = color.BgYellow
	chainBg          = color.BgCyan
	nsHeader         = color.New(nsBg, color.FgBlack)
	nsHeaderBold     = color.New(nsBg, color.FgBlack, color.Bold)
	chainHeader      = color.New(chainBg, color.FgBlack)
	chainHeaderBold  = color.New(chainBg, color.FgBlack, color.Bold)
	contractStyle    = color.New(color.FgGreen, color.Bold)
	addressStyle     = color.New(color.FgWhite)
	timestampStyle   = color.New(color.Faint)
	pendingStyle     = color.New(color.FgYellow)
	tagsStyle        = color.New(color.FgCyan)
	verifiedStyle    = color.New(color.FgGreen)
	notVerifiedStyle = color.New(color.FgRed)
)

type TableData [][]string

// DeploymentsRenderer renders deployment lists as a namespace/chain tree of tables
type DeploymentsRenderer struct {
	out  io.Writer
	json bool
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer, json bool) *DeploymentsRenderer {
	return &DeploymentsRenderer{
		out:  out,
		json: json,
	}
}

// Render renders the deployment list
func (r *DeploymentsRenderer) Render(result *usecase.DeploymentListResult) error {
	if r.json {
		return writeJSON(r.out, result.Deployments)
	}

	if len(result.Deployments) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	r.displayTableFormat(result.Deployments)
	return nil
}

func (r *DeploymentsRenderer) displayTableFormat(deployments []*models.Deployment) {
	// Group by namespace and chain
	groups := lo.GroupBy(deployments, func(d *models.Deployment) string { return d.Namespace })
	namespaces := lo.Keys(groups)
	sort.Strings(namespaces)

	// Build all tables first so columns line up across chains
	chainGroups := make(map[string]map[uint64][]*models.Deployment, len(groups))
	var allTables []TableData
	for _, ns := range namespaces {
		chainGroups[ns] = lo.GroupBy(groups[ns], func(d *models.Deployment) uint64 { return d.ChainID })
		for _, chainID := range sortedChainIDs(chainGroups[ns]) {
			allTables = append(allTables, buildDeploymentTable(chainGroups[ns][chainID]))
		}
	}
	widths := calculateTableColumnWidths(allTables)

	tableIdx := 0
	for _, ns := range namespaces {
		nsLabel := fmt.Sprintf("%-12s", "namespace:")
		nsValue := fmt.Sprintf("%-30s", strings.ToUpper(ns))
		fmt.Fprintln(r.out, nsHeader.Sprintf("   ◎ %s %s", nsLabel, nsHeaderBold.Sprint(nsValue)))

		chainIDs := sortedChainIDs(chainGroups[ns])
		for netIdx, chainID := range chainIDs {
			isLastNetwork := netIdx == len(chainIDs)-1
			treePrefix := "├─"
			continuationPrefix := "│ "
			if isLastNetwork {
				treePrefix = "└─"
				continuationPrefix = "  "
			}

			chainLabel := fmt.Sprintf("%-12s", "chain:")
			chainValue := fmt.Sprintf("%-30s", chainTitle(chainID, chainGroups[ns][chainID]))
			fmt.Fprintf(r.out, "%s%s%s\n", treePrefix, chainHeader.Sprintf(" ⛓ %s ", chainLabel), chainHeaderBold.Sprint(chainValue))
			fmt.Fprintln(r.out, continuationPrefix)

			fmt.Fprint(r.out, renderTableWithWidths(allTables[tableIdx], widths, continuationPrefix))
			fmt.Fprintln(r.out)
			tableIdx++

			if !isLastNetwork {
				fmt.Fprintln(r.out, continuationPrefix)
			} else {
				fmt.Fprintln(r.out)
			}
		}
	}

	fmt.Fprintf(r.out, "Total deployments: %d\n", len(deployments))
}

func sortedChainIDs(chains map[uint64][]*models.Deployment) []uint64 {
	ids := lo.Keys(chains)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// chainTitle shows the chain ID with the network name recorded at deploy time
func chainTitle(chainID uint64, deployments []*models.Deployment) string {
	for _, d := range deployments {
		if d.NetworkName != "" {
			return fmt.Sprintf("%d (%s)", chainID, d.NetworkName)
		}
	}
	return fmt.Sprintf("%d", chainID)
}

// buildDeploymentTable creates a TableData for a list of deployments
func buildDeploymentTable(deployments []*models.Deployment) TableData {
	sorted := make([]*models.Deployment, len(deployments))
	copy(sorted, deployments)
	sort.SliceStable(sorted, func(i, j int) bool {
		nameI, nameJ := sorted[i].GetShortID(), sorted[j].GetShortID()
		// Same name sorts newest first
		if nameI == nameJ {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return nameI < nameJ
	})

	tableData := make(TableData, 0, len(sorted))
	for _, deployment := range sorted {
		contractCell := contractStyle.Sprint(deployment.GetShortID())
		if len(deployment.Tags) > 0 {
			contractCell += " " + tagsStyle.Sprintf("(%s)", strings.Join(deployment.Tags, ", "))
		}

		tableData = append(tableData, []string{
			contractCell,
			addressStyle.Sprint(deployment.Address),
			getVerifierStatuses(deployment),
			timestampStyle.Sprint(deployment.CreatedAt.Format("2006-01-02 15:04:05")),
		})
	}
	return tableData
}

// getVerifierStatuses returns the etherscan and sourcify status marks
func getVerifierStatuses(deployment *models.Deployment) string {
	mark := func(verifier string) string {
		status, ok := deployment.Verification.Verifiers[verifier]
		if !ok {
			return "?"
		}
		switch status.Status {
		case "verified":
			return verifiedStyle.Sprint("✓")
		case "failed":
			return notVerifiedStyle.Sprint("✗")
		case "pending":
			return pendingStyle.Sprint("⏳")
		default:
			return "?"
		}
	}
	return fmt.Sprintf("🅔 %s 🅢 %s", mark("etherscan"), mark("sourcify"))
}

func renderTableWithWidths(tableData TableData, columnWidths []int, continuationPrefix string) string {
	if len(tableData) == 0 {
		return ""
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight: "   ",
	}

	colConfigs := make([]table.ColumnConfig, len(columnWidths))
	for i, width := range columnWidths {
		if i == 0 {
			width += len([]rune(continuationPrefix))
		}
		colConfigs[i] = table.ColumnConfig{
			Number:   i + 1,
			Align:    text.AlignLeft,
			WidthMin: width,
			WidthMax: width,
		}
	}
	t.SetColumnConfigs(colConfigs)

	for _, row := range tableData {
		tableRow := make(table.Row, len(row))
		for i, cell := range row {
			if i == 0 {
				tableRow[i] = continuationPrefix + cell
			} else {
				tableRow[i] = cell
			}
		}
		t.AppendRow(tableRow)
	}

	return t.Render()
}

// calculateTableColumnWidths calculates column widths across multiple tables
func calculateTableColumnWidths(tables []TableData) []int {
	var widths []int
	for _, tbl := range tables {
		for _, row := range tbl {
			for colIdx, cell := range row {
				if colIdx >= len(widths) {
					widths = append(widths, 0)
				}
				widths[colIdx] = max(widths[colIdx], text.RuneWidthWithoutEscSequences(cell))
			}
		}
	}
	return widths
}
