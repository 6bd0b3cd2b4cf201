package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/springlayout/pkg/model"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for springlayout.

To load completions:

Bash:
  $ source <(springlayout completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ springlayout completion bash > /etc/bash_completion.d/springlayout
  # macOS:
  $ springlayout completion bash > $(brew --prefix)/etc/bash_completion.d/springlayout

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ springlayout completion zsh > "${fpath[1]}/_springlayout"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ springlayout completion fish | source

  # To load completions for each session, execute once:
  $ springlayout completion fish > ~/.config/fish/completions/springlayout.fish

PowerShell:
  PS> springlayout completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> springlayout completion powershell > springlayout.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// strategyFlags maps the configuration flags that name a strategy to its
// kind.
var strategyFlags = map[string]string{
	"graph":    model.KindGraph,
	"embedder": model.KindEmbedder,
	"rigid":    model.KindRigid,
	"manager":  model.KindPathManager,
}

// registerStrategyCompletions completes strategy flags with the names the
// catalog knows.
func registerStrategyCompletions(cmd *cobra.Command) {
	catalog := model.New(model.Options{Logger: quietLogger()}).Catalog()
	for flag, kind := range strategyFlags {
		options := catalog.Names(kind)
		_ = cmd.RegisterFlagCompletionFunc(flag, func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return options, cobra.ShellCompDirectiveNoFileComp
		})
	}
	_ = cmd.RegisterFlagCompletionFunc("placement", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(model.PlacementUniform), string(model.PlacementSimplex)}, cobra.ShellCompDirectiveNoFileComp
	})
}
