package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fcoo/permalink/internal/config"
	"github.com/fcoo/permalink/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration",
		Long: `Write permalink.yaml (or permalink.json with --format json) holding
every setting at its default value.

Examples:
  permalink init
  permalink init deploy --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			name := config.YAMLFileName
			switch format {
			case "yaml":
			case "json":
				name = config.JSONFileName
			default:
				return errors.New("E170").WithDetail("--format must be yaml or json")
			}

			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.CategoryCLI, "%s already exists", path).
					WithSuggestion("Pass --force to overwrite it")
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd, "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "File format: yaml or json")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}
