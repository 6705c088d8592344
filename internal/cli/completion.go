package cli

import (
	"github.com/spf13/cobra"
)

func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tapestry.

To load completions:

Bash:
  $ source <(tapestry completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tapestry completion bash > /etc/bash_completion.d/tapestry
  # macOS:
  $ tapestry completion bash > $(brew --prefix)/etc/bash_completion.d/tapestry

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ tapestry completion zsh > "${fpath[1]}/_tapestry"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ tapestry completion fish | source

  # To load completions for each session, execute once:
  $ tapestry completion fish > ~/.config/fish/completions/tapestry.fish

PowerShell:
  PS> tapestry completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> tapestry completion powershell > tapestry.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(c.out)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.out)
			case "fish":
				return cmd.Root().GenFishCompletion(c.out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.out)
			}
			return nil
		},
	}

	return cmd
}
