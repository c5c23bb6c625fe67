// output.go renders the bootstrap summary written to stdout.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shinji-kodama/venv-bootstrap/internal/model"
)

// printResult writes the summary in JSON or styled text.
func printResult(w io.Writer, jsonOutput bool, res *model.BootstrapResult) error {
	if jsonOutput {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to encode result", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := io.WriteString(w, renderResultText(lipgloss.NewRenderer(w), res))
	return err
}

// renderResultText builds the human-readable summary. The renderer
// detects the color profile of the destination, so output redirected to a
// file or pipe carries no escape sequences.
func renderResultText(r *lipgloss.Renderer, res *model.BootstrapResult) string {
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	label := r.NewStyle().Faint(true)
	command := r.NewStyle().Bold(true)

	readme := "existing"
	if res.ReadmeCreated {
		readme = "created"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title.Render("Virtual environment ready"))
	fmt.Fprintf(&b, "  %s %s\n", label.Render("Project:"), res.ProjectDir)
	fmt.Fprintf(&b, "  %s %s\n", label.Render("Path:   "), res.VenvPath)
	fmt.Fprintf(&b, "  %s %s\n", label.Render("Deps:   "), res.DepsGroup)
	fmt.Fprintf(&b, "  %s %s\n", label.Render("README: "), readme)
	b.WriteString("\n")
	fmt.Fprintf(&b, "To activate the virtual environment, run:\n  %s\n", command.Render(res.ActivateCommand))
	return b.String()
}
