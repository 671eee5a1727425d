package docs

import (
	"github.com/CompassSecurity/stringer/pkg/docs"
	"github.com/spf13/cobra"
)

// NewDocsCmd creates the hidden docs generation command.
func NewDocsCmd(rootCmd *cobra.Command) *cobra.Command {
	var outputDir string

	docsCmd := &cobra.Command{
		Use:    "docs",
		Short:  "Generate the markdown CLI reference",
		Hidden: true,
		Run: func(cmd *cobra.Command, args []string) {
			docs.Generate(docs.GenerateOptions{
				RootCmd:   rootCmd,
				OutputDir: outputDir,
			})
		},
	}

	docsCmd.Flags().StringVarP(&outputDir, "out", "o", "./cli-docs", "Output directory for the generated markdown")

	return docsCmd
}
