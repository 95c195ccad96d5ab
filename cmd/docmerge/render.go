package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-docmerge/pkg/docmerge"
	"github.com/spf13/cobra"
)

var (
	renderOutput      string
	renderPlan        string
	renderEscape      bool
	renderValues      []string
	renderHTML        []string
	renderMarkdown    []string
	renderImages      []string
	renderCloneRows   []string
	renderCloneBlocks []string
	renderDeleteBlock []string
)

var renderCmd = &cobra.Command{
	Use:   "render [template]",
	Short: "Merge values into a template and write the result",
	Long: `Render opens a template, applies a YAML plan and the merge flags, and
writes the result to --output. Flags override entries of the plan.

Structural flags run first: --clone-block, --clone-row and --delete-block.
Placeholders in copy i of a cloned row or block are renamed name#i.`,
	Example: `  docmerge render invoice.docx -o out.docx --set customer=ACME --clone-row item=3 \
      --set item#1=Widget --image logo=logo.png --plan invoice.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := buildPlan()
		if err != nil {
			return err
		}

		var opts []docmerge.Option
		if cmd.Flags().Changed("escape") {
			opts = append(opts, docmerge.WithEscaping(renderEscape))
		}
		tmpl, err := docmerge.Open(args[0], opts...)
		if err != nil {
			return err
		}
		defer tmpl.Close()

		if err := applyStructure(tmpl); err != nil {
			return err
		}
		if err := plan.Apply(tmpl); err != nil {
			return err
		}
		for _, issue := range tmpl.Skipped() {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", issue)
		}
		if err := tmpl.SaveAs(renderOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", renderOutput)
		return nil
	},
}

// buildPlan loads --plan and overlays the value flags.
func buildPlan() (*docmerge.Plan, error) {
	plan := &docmerge.Plan{}
	if renderPlan != "" {
		loaded, err := docmerge.LoadPlan(renderPlan)
		if err != nil {
			return nil, err
		}
		plan = loaded
	}

	flags := &docmerge.Plan{DeleteBlocks: renderDeleteBlock}
	var err error
	if flags.Values, err = parseAssignments("set", renderValues); err != nil {
		return nil, err
	}
	if flags.HTML, err = parseAssignments("html", renderHTML); err != nil {
		return nil, err
	}
	if flags.Markdown, err = parseAssignments("markdown", renderMarkdown); err != nil {
		return nil, err
	}
	images, err := parseAssignments("image", renderImages)
	if err != nil {
		return nil, err
	}
	for search, path := range images {
		if flags.Images == nil {
			flags.Images = make(map[string]docmerge.PlanImage)
		}
		// flag paths are relative to the working directory, not the plan
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("--image %s: %w", search, err)
		}
		flags.Images[search] = docmerge.PlanImage{Path: abs}
	}

	plan.Merge(flags)
	return plan, plan.Validate()
}

// applyStructure runs the clone count flags, blocks before rows.
func applyStructure(tmpl *docmerge.Template) error {
	blocks, err := parseCounts("clone-block", renderCloneBlocks)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		_, ok, err := tmpl.CloneBlock(b.name, b.count, true)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("block %q not found", b.name)
		}
	}

	rows, err := parseCounts("clone-row", renderCloneRows)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tmpl.CloneRow(r.name, r.count); err != nil {
			return err
		}
	}
	return nil
}

// parseAssignments splits name=value flag values.
func parseAssignments(flag string, values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("--%s %q: expected name=value", flag, v)
		}
		out[name] = value
	}
	return out, nil
}

type countFlag struct {
	name  string
	count int
}

func parseCounts(flag string, values []string) ([]countFlag, error) {
	var out []countFlag
	for _, v := range values {
		name, raw, ok := strings.Cut(v, "=")
		n, err := strconv.Atoi(raw)
		if !ok || name == "" || err != nil || n < 0 {
			return nil, fmt.Errorf("--%s %q: expected name=count", flag, v)
		}
		out = append(out, countFlag{name: name, count: n})
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	f := renderCmd.Flags()
	f.StringVarP(&renderOutput, "output", "o", "", "Output DOCX path (required)")
	f.StringVar(&renderPlan, "plan", "", "YAML merge plan")
	f.BoolVar(&renderEscape, "escape", false, "XML-escape --set values")
	f.StringArrayVar(&renderValues, "set", nil, "Set a placeholder: name=value (repeatable)")
	f.StringArrayVar(&renderHTML, "html", nil, "Replace a placeholder paragraph with HTML: name=<html>")
	f.StringArrayVar(&renderMarkdown, "markdown", nil, "Replace a placeholder paragraph with markdown: name=text")
	f.StringArrayVar(&renderImages, "image", nil, "Replace a placeholder paragraph with an image: name=path")
	f.StringArrayVar(&renderCloneRows, "clone-row", nil, "Clone the table row holding a placeholder: name=count")
	f.StringArrayVar(&renderCloneBlocks, "clone-block", nil, "Clone a ${name}...${/name} block: name=count")
	f.StringArrayVar(&renderDeleteBlock, "delete-block", nil, "Delete a ${name}...${/name} block")
	_ = renderCmd.MarkFlagRequired("output")
}
