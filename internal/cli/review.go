package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/RevCBH/hodor/internal/cli/tui"
	"github.com/RevCBH/hodor/internal/config"
	"github.com/RevCBH/hodor/internal/diffcmd"
	"github.com/RevCBH/hodor/internal/git"
	"github.com/RevCBH/hodor/internal/hosting"
	"github.com/RevCBH/hodor/internal/platform"
	"github.com/RevCBH/hodor/internal/prompt"
	"github.com/RevCBH/hodor/internal/review"
	"github.com/RevCBH/hodor/internal/session"
	"github.com/RevCBH/hodor/internal/skills"
	"github.com/RevCBH/hodor/internal/workspace"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

// defaultEnvFile is loaded when present and --env-file is not given.
const defaultEnvFile = ".env"

// ReviewOptions holds the flags for a review run
type ReviewOptions struct {
	URL             string
	Model           string
	Workspace       string
	Verbose         bool
	Post            bool
	JSON            bool
	Prompt          string
	PromptFile      string
	MaxTurns        int
	ReasoningEffort string
	Ultrathink      bool
	TargetBranch    string
	ConfigFile      string
	EnvFile         string
	ClaudeCmd       string

	// changed reports whether a flag was given on the command line; only
	// those flags override the config file and environment.
	changed func(name string) bool
}

// Validate checks the flag values before any work is done
func (o ReviewOptions) Validate() error {
	if strings.TrimSpace(o.URL) == "" {
		return errors.New("a pull request or merge request URL is required")
	}
	if o.isSet("max-turns") && (o.MaxTurns == 0 || o.MaxTurns < -1) {
		return fmt.Errorf("--max-turns must be positive or -1 for unlimited, got %d", o.MaxTurns)
	}
	if _, err := config.ReasoningBudget(o.ReasoningEffort); err != nil {
		return err
	}
	if o.isSet("model") && strings.TrimSpace(o.Model) == "" {
		return errors.New("--model must not be empty")
	}
	if o.isSet("claude-cmd") && strings.TrimSpace(o.ClaudeCmd) == "" {
		return errors.New("--claude-cmd must not be empty")
	}
	return nil
}

func (o ReviewOptions) isSet(name string) bool {
	return o.changed != nil && o.changed(name)
}

// applyTo layers explicitly given flags over cfg and records their source.
func (o ReviewOptions) applyTo(cfg *config.Config) {
	set := func(flag, field string, apply func()) {
		if o.isSet(flag) {
			apply()
			cfg.Set(field, "flag:--"+flag)
		}
	}

	set("model", "model", func() { cfg.Model = strings.TrimSpace(o.Model) })
	set("workspace", "workspace", func() { cfg.Workspace = o.Workspace })
	set("max-turns", "claude.max_turns", func() { cfg.Claude.MaxTurns = o.MaxTurns })
	set("claude-cmd", "claude.command", func() { cfg.Claude.Command = o.ClaudeCmd })
	set("post", "review.post", func() { cfg.Review.Post = o.Post })
	set("reasoning-effort", "reasoning_effort", func() { cfg.ReasoningEffort = o.ReasoningEffort })
	set("ultrathink", "reasoning_effort", func() {
		if o.Ultrathink {
			cfg.ReasoningEffort = "high"
		}
	})
	set("prompt-file", "prompt.file", func() {
		cfg.Prompt.File = o.PromptFile
		if !o.isSet("prompt") {
			cfg.Prompt.Inline = ""
		}
	})
	set("prompt", "prompt.inline", func() { cfg.Prompt.Inline = o.Prompt })
}

// loadEnvFile loads path, or .env when path is empty and the file exists.
// Variables already in the environment are left alone.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(defaultEnvFile); err != nil {
		return nil
	}
	if err := godotenv.Load(defaultEnvFile); err != nil {
		log.Printf("WARN: ignoring %s: %v", defaultEnvFile, err)
	}
	return nil
}

func (a *App) setupLogging() {
	log.SetFlags(0)
	log.SetPrefix("hodor: ")
	log.SetOutput(a.stderr)
}

// loadConfig builds the effective config: defaults, file, env, then flags.
func (a *App) loadConfig(opts ReviewOptions) (*config.Config, error) {
	path, optional := opts.ConfigFile, false
	if path == "" {
		path, optional = config.DefaultConfigFile, true
	}

	cfg, err := config.Load(path, optional, a.env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	opts.applyTo(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runReview executes one review end to end
func (a *App) runReview(ctx context.Context, opts ReviewOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	a.setupLogging()
	infof := func(format string, args ...any) {
		if opts.Verbose {
			log.Printf(format, args...)
		}
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return err
	}
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}
	infof("Model %s (%s), max turns %d (%s)",
		cfg.Model, cfg.Source("model"), cfg.Claude.MaxTurns, cfg.Source("claude.max_turns"))

	req, err := platform.Parse(opts.URL, a.env)
	if err != nil {
		return err
	}
	token, source := platform.ResolveToken(req.Platform, a.env)
	req = req.WithToken(token, source)
	if opts.TargetBranch != "" {
		req = req.WithTargetBranch(opts.TargetBranch)
	}
	if token == "" {
		log.Printf("WARN: no %s token in the environment; private repositories and --post will fail", req.Platform)
	} else {
		infof("Using %s token from %s", req.Platform, source)
	}

	client, err := a.newHosting(req)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", req.Platform, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	handler := NewSignalHandler(cancel)
	handler.StartWithNotify(a.notifySignals)
	defer handler.Stop()

	resolver := workspace.NewResolver(a.env, client)
	resolver.Git = a.git
	resolver.Verbose = opts.Verbose
	ws, err := resolver.Resolve(ctx, req, cfg.Workspace)
	if err != nil {
		return err
	}
	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			if err := ws.Cleanup(); err != nil {
				log.Printf("WARN: failed to remove workspace %s: %v", ws.Root, err)
			}
		})
	}
	handler.OnShutdown(cleanup)
	defer cleanup()
	infof("Reviewing %s in %s against %s", req, ws.Root, ws.TargetBranch)

	instruction, err := a.buildInstruction(ctx, cfg, req, ws, infof)
	if err != nil {
		return err
	}

	llm := config.ResolveLLM(a.env)
	if llm.KeySource != "" {
		infof("Using LLM API key from %s", llm.KeySource)
	}
	var agentEnv []string
	agentEnv = append(agentEnv, llm.AgentEnv()...)
	agentEnv = append(agentEnv, config.ThinkingEnv(cfg.ReasoningEffort)...)
	agentEnv = append(agentEnv, req.AgentEnv()...)
	agentEnv = append(agentEnv, diffcmd.PagerEnv()...)

	var runtimeStderr io.Writer
	if opts.Verbose {
		runtimeStderr = a.stderr
	}
	manager := session.NewManager(a.newRuntime(cfg.Claude.Command, runtimeStderr))
	var printer *session.Printer
	if opts.Verbose {
		printer = session.NewPrinter(a.stderr, true)
		manager.AddObserver(printer)
	}

	stopTUI := func() {}
	if !opts.Verbose && !opts.JSON && a.isTerminal() {
		bridge, stop := a.startTUI(req.String(), config.NormalizeModel(cfg.Model), handler)
		manager.AddObserver(bridge)
		stopTUI = stop
	}

	result, err := manager.Run(ctx, session.Input{Conversation: session.Conversation{
		Instruction:  instruction,
		WorkDir:      ws.Root,
		Model:        cfg.Model,
		MaxTurns:     cfg.Claude.MaxTurns,
		AllowedTools: cfg.Claude.AllowedTools,
		Env:          agentEnv,
	}})
	stopTUI()
	if err != nil {
		return err
	}
	if printer != nil {
		commands, failed := printer.Stats()
		infof("Agent ran %d commands, %d failed", commands, failed)
	}

	return a.report(ctx, cfg, req, ws, client, result, opts.JSON)
}

// buildInstruction renders the prompt for ws and appends the repository's
// matching review skills.
func (a *App) buildInstruction(ctx context.Context, cfg *config.Config, req platform.Request, ws *workspace.Workspace, infof func(string, ...any)) (string, error) {
	cmds := diffcmd.Select(req.Platform, ws.TargetBranch, diffcmd.Options{
		Number:  req.Number,
		BaseSHA: ws.BaseSHA,
	})

	instruction, src, err := prompt.Build(
		prompt.Options{Inline: cfg.Prompt.Inline, File: cfg.Prompt.File},
		prompt.Vars{
			URL:          req.URL,
			Owner:        req.Owner,
			Repo:         req.Repo,
			Number:       req.Number,
			TargetBranch: ws.TargetBranch,
			Commands:     cmds,
		},
	)
	if err != nil {
		return "", err
	}
	infof("Using %s prompt template", src)

	all, err := skills.Discover(ws.Root)
	if err != nil {
		log.Printf("WARN: skill discovery failed: %v", err)
		return instruction, nil
	}
	if len(all) == 0 {
		return instruction, nil
	}

	corpus := instruction
	files, err := git.NewClientWithRunner(ws.Root, a.git).ChangedFiles(ctx, cmds.Base)
	if err != nil {
		log.Printf("WARN: could not list changed files for skill matching: %v", err)
	} else {
		corpus += "\n" + strings.Join(files, "\n")
	}

	selected := skills.Select(all, corpus)
	for _, s := range selected {
		infof("Applying review skill %s", s.SourcePath)
	}
	return prompt.AppendSkills(instruction, selected), nil
}

// startTUI runs the progress view until stop is called. Quitting the view
// interrupts the review.
func (a *App) startTUI(target, model string, handler *SignalHandler) (session.Observer, func()) {
	program := tea.NewProgram(tui.NewModel(target, model), tea.WithOutput(a.stderr), tea.WithAltScreen())
	bridge := tui.NewBridge(program)
	logs := tui.NewLogWriter(program)
	log.SetOutput(logs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		final, err := program.Run()
		if err != nil {
			fmt.Fprintf(a.stderr, "TUI error: %v\n", err)
			return
		}
		if m, ok := final.(*tui.Model); ok && m.Quitting {
			handler.Interrupt("review aborted")
		}
	}()

	stop := func() {
		_ = logs.Close()
		log.SetOutput(a.stderr)
		bridge.SendDone()
		<-done
	}
	return bridge, stop
}

// jsonResult is the --json output document.
type jsonResult struct {
	URL     string          `json:"url"`
	Status  session.Status  `json:"status"`
	Body    string          `json:"body"`
	Format  review.Format   `json:"format,omitempty"`
	Review  *review.Review  `json:"review,omitempty"`
	Metrics session.Metrics `json:"metrics"`
	Error   string          `json:"error,omitempty"`
	Posted  bool            `json:"posted"`
}

// report prints the outcome, posts it when configured and maps the status
// to the command's error.
func (a *App) report(ctx context.Context, cfg *config.Config, req platform.Request, ws *workspace.Workspace, client hosting.Client, result *session.Result, asJSON bool) error {
	out := jsonResult{
		URL:     req.URL,
		Status:  result.Status,
		Metrics: result.Metrics,
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}

	if !result.HasBody() {
		if asJSON {
			if err := writeJSON(a.stdout, out); err != nil {
				return err
			}
		}
		fmt.Fprintln(a.stderr, dimStyle.Render(summaryLine(result.Metrics)))
		if ctx.Err() != nil {
			return fmt.Errorf("review interrupted: %w", result.Err)
		}
		return fmt.Errorf("review failed: %w", result.Err)
	}

	parsed, format := review.Parse(result.Body)
	markdown := review.Markdown(parsed, format, ws.Root)

	var postErr error
	if cfg.Review.Post {
		body := markdown
		if cfg.Review.Footer {
			body += reviewFooter(cfg.Model)
		}
		postErr = client.PostReview(ctx, req, body)
		out.Posted = postErr == nil
	}

	if asJSON {
		out.Body = result.Body
		out.Format = format
		out.Review = parsed
		if err := writeJSON(a.stdout, out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(a.stdout, markdown)
	}

	fmt.Fprintln(a.stderr, dimStyle.Render(summaryLine(result.Metrics)))
	if result.Status == session.StatusCompletedWithRuntimeError {
		fmt.Fprintln(a.stderr, warnStyle.Render(fmt.Sprintf("⚠ Review completed, but the agent reported an error: %v", result.Err)))
	}

	if postErr != nil {
		return fmt.Errorf("failed to post review to %s: %w", req, postErr)
	}
	if out.Posted {
		fmt.Fprintln(a.stderr, successStyle.Render(fmt.Sprintf("✓ Review posted to %s", req)))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
