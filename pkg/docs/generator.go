// Package docs generates the markdown CLI reference from the cobra
// command tree.
package docs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/CompassSecurity/stringer/pkg/format"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// GenerateOptions contains options for documentation generation
type GenerateOptions struct {
	RootCmd   *cobra.Command
	OutputDir string
}

func generateDocs(cmd *cobra.Command, dir string) error {
	filename := filepath.Join(dir, cmd.Name()+".md")

	// #nosec G304 - Creating docs markdown file at controlled internal path during docs generation
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	linkHandler := func(s string) string {
		s = strings.TrimSuffix(s, ".md")
		return "./" + s
	}

	if err := doc.GenMarkdownCustom(cmd, f, linkHandler); err != nil {
		return err
	}

	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
			continue
		}
		if err := generateDocs(c, dir); err != nil {
			return err
		}
	}

	return nil
}

// Generate generates the CLI documentation.
func Generate(opts GenerateOptions) {
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "./cli-docs"
	}

	if err := os.MkdirAll(outputDir, format.DirUserGroupRead); err != nil {
		log.Fatal().Err(err).Msg("Failed to create docs output directory")
	}

	opts.RootCmd.DisableAutoGenTag = true
	if err := generateDocs(opts.RootCmd, outputDir); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate CLI docs")
	}

	log.Info().Str("folder", outputDir).Msg("Markdown successfully generated")
}
