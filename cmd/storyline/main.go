// Command storyline is a terminal client for the Story API. Run without
// arguments it opens the interactive shell; the subcommands cover the same
// operations for scripts.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"storyline/cmd/storyline/pages"
	"storyline/cmd/storyline/shell"
	"storyline/cmd/storyline/ui"
	"storyline/internal/config"
	"storyline/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	apiURL     string

	// Shell flags
	startPath string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "storyline",
		Short: "Share stories with photos and locations from the terminal",
		Long: `storyline is a client for the Story API.

Run without arguments to open the interactive shell. Locations follow the
web client's routes, for example:

  storyline --start '#/stories/story-123'
  storyline --start '#/add-story'

The session (token, user id and name) is kept in .storyline/session.db
inside the workspace and shared between the shell and the subcommands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		RunE: runShell,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.storyline/config.yaml)")
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "Story API base URL (or set STORYLINE_API_URL)")
	root.Flags().StringVar(&startPath, "start", "", "Initial location, e.g. '#/about'")

	root.AddCommand(newRegisterCmd())
	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newWhoamiCmd())
	root.AddCommand(newStoriesCmd())
	root.AddCommand(newNotifyCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runShell opens the interactive shell and reloads its config on change.
func runShell(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	deps := &pages.Deps{
		API:      a.client,
		Session:  a.sessions,
		Styles:   shell.StylesFromConfig(a.cfg),
		Settings: shell.SettingsFromConfig(a.cfg, a.workspace),
		Layout:   ui.NewLayoutConfig(ui.MinimumTerminalWidth, ui.MinimumTerminalHeight),
	}
	start := startPath
	if start == "" {
		start = a.cfg.UI.StartPath
	}
	model := shell.New(ctx, shell.Options{
		Deps:      deps,
		Logout:    a.client,
		StartPath: start,
		Workspace: a.workspace,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if err := os.MkdirAll(filepath.Dir(a.configPath), 0755); err != nil {
		logging.BootWarn("config directory unavailable, hot reload disabled: %v", err)
	} else if w, err := config.NewWatcher(a.configPath, func(c *config.Config) {
		a.applyOverrides(c)
		if err := logging.Initialize(c.Logging.Options(a.workspace, false)); err != nil {
			logging.ConfigWarn("logging reload failed: %v", err)
		}
		p.Send(shell.ConfigReloadedMsg{Config: c})
	}); err != nil {
		logging.BootWarn("config watcher unavailable: %v", err)
	} else if err := w.Start(ctx); err != nil {
		logging.BootWarn("config watcher failed to start: %v", err)
		w.Stop()
	} else {
		defer w.Stop()
	}

	timer := logging.StartTimer(logging.CategoryShell, "interactive shell")
	_, err = p.Run()
	timer.Stop()
	if err != nil {
		return fmt.Errorf("shell exited: %w", err)
	}
	return nil
}
