package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/nft-deployer/internal/usecase"
)

// TagRenderer renders tag operation results
type TagRenderer struct {
	out io.Writer
}

// NewTagRenderer creates a new tag renderer
func NewTagRenderer(out io.Writer) *TagRenderer {
	return &TagRenderer{out: out}
}

// Render renders the result of a tag operation
func (r *TagRenderer) Render(result *usecase.TagDeploymentResult) error {
	id := color.New(color.FgCyan).Sprint(result.Deployment.ID)

	switch result.Operation {
	case usecase.TagOperationAdd:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Added tag '%s' to %s", result.Tag, id)))
	case usecase.TagOperationRemove:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed tag '%s' from %s", result.Tag, id)))
	default:
		fmt.Fprintf(r.out, "Deployment: %s\n", id)
	}

	if len(result.Deployment.Tags) == 0 {
		fmt.Fprintln(r.out, "No tags")
		return nil
	}
	fmt.Fprintf(r.out, "Tags: %s\n", strings.Join(result.Deployment.Tags, ", "))
	return nil
}
