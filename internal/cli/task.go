package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/storage"
	"github.com/valter-silva-au/todo/pkg/models"
)

var listJSON bool

var addCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Add a task",
	Long: `Add a new, incomplete task. All arguments are joined with spaces and
surrounding whitespace is trimmed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd)
		if err != nil {
			return err
		}
		defer store.Flush()

		task, ok := store.Create(strings.Join(args, " "))
		if !ok {
			return fmt.Errorf("task text must not be empty")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added task %s: %s\n", shortID(task.ID), task.Text)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks in display order",
	Long: `List every task in the order the interactive view shows it. The
position printed first can be used as a reference in toggle, rm and edit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd)
		if err != nil {
			return err
		}

		tasks := store.Tasks()
		out := cmd.OutOrStdout()
		if listJSON {
			return storage.ExportTasks(out, tasks, storage.FormatJSON)
		}
		printTasks(out, tasks)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <ref>",
	Short: "Mark a task done, or not done again",
	Long: `Flip the completed flag of a task. <ref> is the task's position in
"todo list", its ID, or a unique ID prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd)
		if err != nil {
			return err
		}
		defer store.Flush()

		task, err := store.Resolve(args[0])
		if err != nil {
			return err
		}
		store.Toggle(task.ID)

		state := "Completed"
		if task.Completed {
			state = "Reopened"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s task %s: %s\n", state, shortID(task.ID), task.Text)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <ref>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd)
		if err != nil {
			return err
		}
		defer store.Flush()

		task, err := store.Resolve(args[0])
		if err != nil {
			return err
		}
		store.Delete(task.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s: %s\n", shortID(task.ID), task.Text)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <ref> <text...>",
	Short: "Replace the text of a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(cmd)
		if err != nil {
			return err
		}
		defer store.Flush()

		text := strings.TrimSpace(strings.Join(args[1:], " "))
		if text == "" {
			return fmt.Errorf("task text must not be empty")
		}

		task, err := store.Resolve(args[0])
		if err != nil {
			return err
		}
		if !store.Edit(task.ID, text) {
			return fmt.Errorf("task %s no longer exists", task.ID)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s\n", shortID(task.ID), text)
		return nil
	},
}

func printTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for i, t := range tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		fmt.Fprintf(w, "%3d. %s %-40s %s\n", i+1, check, t.Text, shortID(t.ID))
	}
}

// shortID abbreviates UUIDs for display; any unique prefix resolves.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output tasks as JSON")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(editCmd)
}
