package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctrld/internal/config"
	"github.com/fyrsmithlabs/ctrld/internal/store"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects from the local manifest",
	Long: `Read the manifest file directly and print every project. Useful for
inspecting the registry without going through Slack.

Examples:
  # List projects from the default manifest
  ctrld projects

  # List projects from a specific manifest
  MANIFEST_PATH=/var/lib/ctrld/manifest.toml ctrld projects`,
	RunE: runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.New(cfg.Manifest.Path, zap.NewNop())
	if err != nil {
		return fmt.Errorf("failed to open manifest store: %w", err)
	}

	m, err := st.Load()
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "manifest: %s\n", st.Path())
	if len(m.Managers) > 0 {
		fmt.Fprintf(out, "managers: %v\n", m.Managers)
	}

	for _, name := range m.ProjectNames() {
		p := m.Projects[name]
		fmt.Fprintf(out, "%s\tchannel=%s", name, p.Channel)
		if p.Repository != "" {
			fmt.Fprintf(out, "\trepo=%s", p.Repository)
		}
		if p.Tracker != "" {
			fmt.Fprintf(out, "\tjira=%s", p.Tracker)
		}
		if len(p.Owners) > 0 {
			fmt.Fprintf(out, "\towners=%v", p.Owners)
		}
		fmt.Fprintln(out)
	}

	return nil
}
