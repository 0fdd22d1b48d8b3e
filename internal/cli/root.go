package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/imgajeed76/pgrid/internal/ui/styles"
	"github.com/imgajeed76/pgrid/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// logger is configured by the root command before any subcommand runs.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "pgrid",
	Short: "Browse tables with sorting, selection and pagination",
	Long: `pgrid shows tabular data from CSV files and PostgreSQL tables as a
sortable, selectable, paginated grid.

On a terminal it opens an interactive viewer. Piped output is a plain
table, JSON or tab-separated values. 'pgrid serve' shows the same grid
in a browser.

For more information, see: https://github.com/imgajeed76/pgrid`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
}

func Execute() error {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		// Check if it's a structured GridError
		var gridErr *util.GridError
		if errors.As(err, &gridErr) {
			fmt.Fprintln(os.Stderr, gridErr.Format())
		} else {
			// Simple error - still format nicely
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("log-file", "stderr", "Where to write logs")

	// Version flag template to show more info
	rootCmd.SetVersionTemplate(fmt.Sprintf("pgrid version %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate))

	// Set up pre-run to handle global flags
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		noColor, _ := cmd.Flags().GetBool("no-color")
		if noColor {
			styles.SetNoColor(true)
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		logFile, _ := cmd.Flags().GetString("log-file")
		l, err := newLogger(verbose, logFile)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	}

	// Add all subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newViewCmd(),
		newServeCmd(),
		newExportCmd(),
		newConfigCmd(),
		newCompletionCmd(),
	)
}

// newLogger builds the process logger. Without --verbose only warnings and
// errors are logged, so one-shot commands keep stderr quiet.
func newLogger(verbose bool, logFile string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		config.OutputPaths = []string{logFile}
	}
	return config.Build()
}

// logsToTerminal reports whether logs would be drawn over the interactive viewer.
func logsToTerminal(cmd *cobra.Command) bool {
	logFile, _ := cmd.Flags().GetString("log-file")
	return logFile == "" || logFile == "stderr" || logFile == "stdout"
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for pgrid.

To load completions:

Bash:
  $ source <(pgrid completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ pgrid completion bash > /etc/bash_completion.d/pgrid
  # macOS:
  $ pgrid completion bash > $(brew --prefix)/etc/bash_completion.d/pgrid

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ pgrid completion zsh > "${fpath[1]}/_pgrid"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ pgrid completion fish | source

  # To load completions for each session, execute once:
  $ pgrid completion fish > ~/.config/fish/completions/pgrid.fish

PowerShell:
  PS> pgrid completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> pgrid completion powershell > pgrid.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pgrid version %s\n", Version)
			fmt.Printf("  commit: %s\n", CommitSHA)
			fmt.Printf("  built:  %s\n", BuildDate)
		},
	}
}
