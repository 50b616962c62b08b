package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/tui"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "A single-screen to-do list for the terminal",
	Long: `todo keeps a single list of tasks. Run it without arguments to open the
interactive list: type a task and press enter to add it, tab into the list,
space to complete, e for options (edit), d to delete.

The subcommands work on the same list without opening the interface.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}
		defer Store.Flush()

		m := tui.New(Store, tui.Options{
			AnimationDuration: AnimationDuration,
			FPS:               AnimationFPS,
		})
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(commandContext(cmd)))
		_, err := p.Run()
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "todo %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadStore hydrates the store for a one-shot command. Callers flush it
// before returning.
func loadStore(cmd *cobra.Command) (core.TaskStore, error) {
	if Store == nil {
		return nil, fmt.Errorf("task store not initialized")
	}
	Store.Hydrate(commandContext(cmd))
	return Store, nil
}
