package cli

import (
	"io"
	"os"

	"github.com/RevCBH/hodor/internal/claude"
	"github.com/RevCBH/hodor/internal/config"
	"github.com/RevCBH/hodor/internal/git"
	"github.com/RevCBH/hodor/internal/hosting"
	"github.com/RevCBH/hodor/internal/platform"
	"github.com/RevCBH/hodor/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// App represents the CLI application with all wired dependencies
type App struct {
	// Root command
	rootCmd *cobra.Command
	opts    ReviewOptions

	// Version information
	versionInfo VersionInfo

	// Process boundaries, replaced in tests
	env           config.Env
	stdout        io.Writer
	stderr        io.Writer
	git           git.Runner
	newRuntime    func(binary string, stderr io.Writer) session.Runtime
	newHosting    func(req platform.Request) (hosting.Client, error)
	isTerminal    func() bool
	notifySignals bool
}

// New creates a new CLI application
func New() *App {
	app := &App{
		env:    config.OSEnv{},
		stdout: os.Stdout,
		stderr: os.Stderr,
		git:    git.DefaultRunner(),
		newRuntime: func(binary string, stderr io.Writer) session.Runtime {
			rt := claude.NewRuntime(binary)
			rt.Stderr = stderr
			return rt
		},
		newHosting: func(req platform.Request) (hosting.Client, error) {
			return hosting.New(req)
		},
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stderr.Fd()))
		},
		notifySignals: true,
	}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// setupRootCmd configures the root Cobra command. The root command is
// the review itself; version is its only subcommand.
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "hodor <pr-url>",
		Short: "AI code review for GitHub pull requests and GitLab merge requests",
		Long: `Hodor checks out a pull/merge request, runs a read-only review agent
against it and prints the findings. With --post the review is published
back to the PR/MR.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.opts.URL = args[0]
			a.opts.changed = cmd.Flags().Changed
			return a.runReview(cmd.Context(), a.opts)
		},
	}

	a.rootCmd.PersistentFlags().BoolVarP(&a.opts.Verbose, "verbose", "v", false,
		"Print every agent command and diagnostic logs")

	flags := a.rootCmd.Flags()
	flags.StringVar(&a.opts.Model, "model", config.DefaultModel,
		"LLM model id, optionally prefixed with anthropic/")
	flags.StringVar(&a.opts.Workspace, "workspace", "",
		"Directory to check the change out into (kept after the run)")
	flags.BoolVar(&a.opts.Post, "post", false,
		"Post the review as a comment on the PR/MR")
	flags.BoolVar(&a.opts.JSON, "json", false,
		"Print the result as JSON")
	flags.StringVar(&a.opts.Prompt, "prompt", "",
		"Custom review instruction (overrides --prompt-file)")
	flags.StringVar(&a.opts.PromptFile, "prompt-file", "",
		"File holding a custom review instruction")
	flags.IntVar(&a.opts.MaxTurns, "max-turns", config.DefaultMaxTurns,
		"Maximum agent turns, -1 for unlimited")
	flags.StringVar(&a.opts.ReasoningEffort, "reasoning-effort", "",
		"Extended thinking budget: low, medium or high")
	flags.BoolVar(&a.opts.Ultrathink, "ultrathink", false,
		"Use the maximum thinking budget (same as --reasoning-effort high)")
	flags.StringVar(&a.opts.TargetBranch, "target-branch", "",
		"Branch the change merges into (detected when omitted)")
	flags.StringVar(&a.opts.ConfigFile, "config", "",
		"Config file (default .hodor.yaml when present)")
	flags.StringVar(&a.opts.EnvFile, "env-file", "",
		"Load environment variables from this file (default .env when present)")
	flags.StringVar(&a.opts.ClaudeCmd, "claude-cmd", config.DefaultClaudeCommand,
		"Path to the claude CLI")

	a.rootCmd.AddCommand(NewVersionCmd(a))
}
