package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print the shell completion script for todo",
	Long: `Print a tab-completion script for todo commands, flags and task
references.

Supported shells: bash, zsh, fish, powershell

  eval "$(todo completion bash)"
  todo completion zsh > "${fpath[1]}/_todo"
  todo completion fish > ~/.config/fish/completions/todo.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:      runCompletion,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)

	toggleCmd.ValidArgsFunction = completeTaskRefs
	rmCmd.ValidArgsFunction = completeTaskRefs
	editCmd.ValidArgsFunction = completeTaskRefs
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(out, true)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	}
	return fmt.Errorf("unsupported shell %q", args[0])
}

// completeTaskRefs offers the positions of the listed tasks, described by
// their text, for the first argument of commands that take a <ref>.
func completeTaskRefs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || Store == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	Store.Hydrate(commandContext(cmd))

	var refs []string
	for i, t := range Store.Tasks() {
		pos := strconv.Itoa(i + 1)
		if toComplete != "" && !strings.HasPrefix(pos, toComplete) {
			continue
		}
		refs = append(refs, pos+"\t"+t.Text)
	}
	return refs, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveKeepOrder
}
