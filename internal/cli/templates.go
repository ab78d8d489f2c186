package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mymoto/themekit/internal/export"
)

var (
	templateForce    bool
	templateLocation string
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage export templates",
		Long: `Manage the templates used by brand export.

Templates can be customised by dumping them to the template directory
(export.template_dir, default ~/.config/themekit/templates) and editing them.
Custom templates are used instead of the embedded ones.`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List export templates",
		Args:  cobra.NoArgs,
		RunE:  runTemplatesList,
	}

	dump := &cobra.Command{
		Use:   "dump",
		Short: "Write the embedded templates to the template directory",
		Example: `  themekit templates dump
  themekit templates dump --force
  themekit templates dump -l ./templates`,
		Args: cobra.NoArgs,
		RunE: runTemplatesDump,
	}
	dump.Flags().BoolVarP(&templateForce, "force", "f", false, "overwrite existing custom templates")
	dump.Flags().StringVarP(&templateLocation, "location", "l", "", "directory to dump templates into (default: export.template_dir)")

	cmd.AddCommand(list, dump)
	return cmd
}

func newGenerator() *export.Generator {
	return export.NewGenerator(appFs, appConfig.Export.TemplateDir, appLogger.Named("export"))
}

func runTemplatesList(cmd *cobra.Command, _ []string) error {
	names, err := export.TemplateNames()
	if err != nil {
		return err
	}
	gen := newGenerator()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Template directory: %s\n\n", appConfig.Export.TemplateDir)
	table := NewTable("TEMPLATE", "SOURCE")
	for _, name := range names {
		source := "embedded"
		if gen.HasCustomTemplate(name) {
			source = "custom"
		}
		table.AddRow(name, source)
	}
	fmt.Fprint(out, table.Render())
	return nil
}

func runTemplatesDump(cmd *cobra.Command, _ []string) error {
	dir := appConfig.Export.TemplateDir
	if templateLocation != "" {
		dir = templateLocation
	}

	dumped, err := export.NewGenerator(appFs, dir, appLogger.Named("export")).DumpTemplates(templateForce)
	out := cmd.OutOrStdout()
	for _, path := range dumped {
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	if errors.Is(err, export.ErrTemplateExists) {
		fmt.Fprintln(out, "existing templates were kept, use --force to overwrite")
	}
	return err
}
