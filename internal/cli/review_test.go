package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/RevCBH/hodor/internal/config"
	"github.com/RevCBH/hodor/internal/hosting"
	"github.com/RevCBH/hodor/internal/platform"
	"github.com/RevCBH/hodor/internal/session"
	"github.com/RevCBH/hodor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPRURL   = "https://github.com/acme/widgets/pull/42"
	testAnswer  = `{"findings":[{"title":"[P1] Nil map write","body":"m is never initialised.","confidence_score":0.9,"priority":1,"code_location":{"absolute_file_path":"WORKDIR/store.go","line_range":{"start":10,"end":12}}}],"overall_correctness":"patch is incorrect","overall_explanation":"One blocking bug.","overall_confidence_score":0.8}`
	testBaseSHA = "abc123"
)

// scriptedRuntime replays events and returns err, recording the
// conversation it was started with.
type scriptedRuntime struct {
	events []session.Event
	err    error

	mu   sync.Mutex
	conv *session.Conversation
}

func (r *scriptedRuntime) Run(ctx context.Context, conv session.Conversation, emit func(session.Event)) error {
	r.mu.Lock()
	r.conv = &conv
	r.mu.Unlock()
	for _, ev := range r.events {
		emit(ev)
	}
	return r.err
}

func (r *scriptedRuntime) Conversation() *session.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conv
}

type fakeHosting struct {
	postErr error

	mu     sync.Mutex
	posted []string
}

func (f *fakeHosting) GetChange(ctx context.Context, req platform.Request) (*hosting.ChangeInfo, error) {
	return &hosting.ChangeInfo{Number: req.Number, TargetBranch: "main"}, nil
}

func (f *fakeHosting) PostReview(ctx context.Context, req platform.Request, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return f.postErr
	}
	f.posted = append(f.posted, body)
	return nil
}

func (f *fakeHosting) Name() platform.Kind { return platform.GitHub }

func (f *fakeHosting) Posted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posted...)
}

type harness struct {
	app     *App
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	runtime *scriptedRuntime
	hosting *fakeHosting
	git     *testutil.StubRunner
	workDir string
	binary  string
}

// newHarness wires an App to fakes. The environment looks like a GitHub
// Actions run for acme/widgets, so no clone happens.
func newHarness(t *testing.T, rt *scriptedRuntime) *harness {
	t.Helper()

	workDir := t.TempDir()
	stub := testutil.NewStubRunner()
	stub.StubDefault("merge-base HEAD origin/main", testBaseSHA+"\n", nil)
	stub.StubDefault("--no-pager diff --name-only "+testBaseSHA+"...HEAD", "store.go\n", nil)

	h := &harness{
		stdout:  new(bytes.Buffer),
		stderr:  new(bytes.Buffer),
		runtime: rt,
		hosting: &fakeHosting{},
		git:     stub,
		workDir: workDir,
	}

	app := New()
	app.env = config.MapEnv{
		"GITHUB_ACTIONS":    "true",
		"GITHUB_WORKSPACE":  workDir,
		"GITHUB_REPOSITORY": "acme/widgets",
		"GITHUB_BASE_REF":   "main",
		"GITHUB_TOKEN":      "ghp_test",
		"ANTHROPIC_API_KEY": "sk-test",
	}
	app.stdout = h.stdout
	app.stderr = h.stderr
	app.git = stub
	app.newRuntime = func(binary string, stderr io.Writer) session.Runtime {
		h.binary = binary
		return rt
	}
	app.newHosting = func(req platform.Request) (hosting.Client, error) {
		return h.hosting, nil
	}
	app.isTerminal = func() bool { return false }
	app.notifySignals = false
	h.app = app
	return h
}

func (h *harness) run(args ...string) error {
	if args == nil {
		args = []string{}
	}
	h.app.rootCmd.SetArgs(args)
	return h.app.Execute()
}

func answerEvents(workDir string) []session.Event {
	return []session.Event{
		{Type: session.EventCommandStarted, Tool: "Bash", ToolID: "t1", Summary: "gh pr diff 42"},
		{Type: session.EventCommandFinished, Tool: "Bash", ToolID: "t1"},
		{Type: session.EventMetricsDelta, Usage: session.Usage{InputTokens: 1200, OutputTokens: 300, CacheHitTokens: 200}},
		{Type: session.EventFinalAnswer, Text: strings.ReplaceAll(testAnswer, "WORKDIR", workDir)},
	}
}

func TestRunReview_PrintsMarkdown(t *testing.T) {
	rt := &scriptedRuntime{}
	h := newHarness(t, rt)
	rt.events = answerEvents(h.workDir)
	require.NoError(t, os.WriteFile(filepath.Join(h.workDir, "AGENTS.md"), []byte("Prefer table-driven tests."), 0o644))

	err := h.run(testPRURL, "--ultrathink", "--max-turns", "40")
	require.NoError(t, err)

	out := h.stdout.String()
	assert.Contains(t, out, "One blocking bug.")
	assert.Contains(t, out, "**Critical (P0/P1)**")
	assert.Contains(t, out, "(`store.go:10-12`)")
	assert.Contains(t, h.stderr.String(), "Tokens: 1,200 in (200 cached), 300 out, 1,500 total")
	assert.Empty(t, h.hosting.Posted())

	conv := rt.Conversation()
	require.NotNil(t, conv)
	assert.Equal(t, h.workDir, conv.WorkDir)
	assert.Equal(t, config.DefaultModel, conv.Model)
	assert.Equal(t, 40, conv.MaxTurns)
	assert.Equal(t, config.DefaultAllowedTools, conv.AllowedTools)
	assert.Equal(t, config.DefaultClaudeCommand, h.binary)

	assert.Contains(t, conv.Instruction, testPRURL)
	assert.Contains(t, conv.Instruction, testBaseSHA+"...HEAD")
	assert.Contains(t, conv.Instruction, "## Repository Review Guidelines")
	assert.Contains(t, conv.Instruction, "Prefer table-driven tests.")

	assert.Contains(t, conv.Env, "ANTHROPIC_API_KEY=sk-test")
	assert.Contains(t, conv.Env, "MAX_THINKING_TOKENS=31999")
	assert.Contains(t, conv.Env, "GH_TOKEN=ghp_test")
	assert.Contains(t, conv.Env, "GIT_PAGER=cat")
}

func TestRunReview_VerboseReportsCommandCounts(t *testing.T) {
	rt := &scriptedRuntime{}
	h := newHarness(t, rt)
	rt.events = append([]session.Event{
		{Type: session.EventCommandStarted, Tool: "Bash", ToolID: "t0", Summary: "git show missing"},
		{Type: session.EventCommandFinished, Tool: "Bash", ToolID: "t0", ExitCode: 128},
	}, answerEvents(h.workDir)...)

	require.NoError(t, h.run(testPRURL, "--verbose"))
	assert.Contains(t, h.stderr.String(), "hodor: Agent ran 2 commands, 1 failed")
}

func TestRunReview_JSON(t *testing.T) {
	rt := &scriptedRuntime{}
	h := newHarness(t, rt)
	rt.events = answerEvents(h.workDir)

	require.NoError(t, h.run(testPRURL, "--json"))

	var got struct {
		URL     string `json:"url"`
		Status  string `json:"status"`
		Body    string `json:"body"`
		Format  string `json:"format"`
		Review  struct {
			Findings           []json.RawMessage `json:"findings"`
			OverallCorrectness string            `json:"overall_correctness"`
		} `json:"review"`
		Metrics struct {
			TotalTokens int    `json:"total_tokens"`
			Model       string `json:"model"`
		} `json:"metrics"`
		Posted bool `json:"posted"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))

	assert.Equal(t, testPRURL, got.URL)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "json", got.Format)
	assert.Len(t, got.Review.Findings, 1)
	assert.Equal(t, "patch is incorrect", got.Review.OverallCorrectness)
	assert.Equal(t, 1500, got.Metrics.TotalTokens)
	assert.Equal(t, config.DefaultModel, got.Metrics.Model)
	assert.NotEmpty(t, got.Body)
	assert.False(t, got.Posted)
}

func TestRunReview_Post(t *testing.T) {
	rt := &scriptedRuntime{}
	h := newHarness(t, rt)
	rt.events = answerEvents(h.workDir)

	require.NoError(t, h.run(testPRURL, "--post", "--model", "anthropic/claude-opus-4-1"))

	posted := h.hosting.Posted()
	require.Len(t, posted, 1)
	assert.Contains(t, posted[0], "One blocking bug.")
	assert.True(t, strings.HasSuffix(posted[0], "*Review generated by Hodor using `anthropic/claude-opus-4-1`*"))
	assert.Contains(t, h.stderr.String(), "Review posted to acme/widgets#42")
}

func TestRunReview_PostFailure(t *testing.T) {
	rt := &scriptedRuntime{}
	h := newHarness(t, rt)
	rt.events = answerEvents(h.workDir)
	h.hosting.postErr = errors.New("403 Forbidden")

	err := h.run(testPRURL, "--post")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to post review")
	// the review is still printed
	assert.Contains(t, h.stdout.String(), "One blocking bug.")
}

func TestRunReview_RuntimeErrorAfterAnswer(t *testing.T) {
	rt := &scriptedRuntime{err: errors.New("claude execution failed (exit 1)")}
	h := newHarness(t, rt)
	rt.events = answerEvents(h.workDir)

	require.NoError(t, h.run(testPRURL))
	assert.Contains(t, h.stdout.String(), "One blocking bug.")
	assert.Contains(t, h.stderr.String(), "agent reported an error")
}

func TestRunReview_NoAnswerFails(t *testing.T) {
	rt := &scriptedRuntime{events: []session.Event{
		{Type: session.EventCommandStarted, Tool: "Read", ToolID: "r1"},
	}}
	h := newHarness(t, rt)

	err := h.run(testPRURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrNoAnswer)
	assert.Empty(t, h.stdout.String())
}

func TestRunReview_StartFailure(t *testing.T) {
	rt := &scriptedRuntime{err: &session.StartError{Err: errors.New("executable file not found")}}
	h := newHarness(t, rt)

	err := h.run(testPRURL)
	var startErr *session.AgentStartFailedError
	require.ErrorAs(t, err, &startErr)
}

func TestRunReview_InvalidURL(t *testing.T) {
	rt := &scriptedRuntime{}
	h := newHarness(t, rt)

	err := h.run("https://example.com/not-a-pr")
	var urlErr *platform.InvalidURLError
	require.ErrorAs(t, err, &urlErr)
	assert.Nil(t, rt.Conversation())
	assert.Empty(t, h.git.Calls())
}

func TestRunReview_ConfigFileAndFlagPrecedence(t *testing.T) {
	rt := &scriptedRuntime{}
	h := newHarness(t, rt)
	rt.events = answerEvents(h.workDir)

	cfgPath := filepath.Join(t.TempDir(), "hodor.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("model: anthropic/claude-haiku-4-5\nclaude:\n  command: /opt/claude\n  max_turns: 25\n"), 0o644))

	require.NoError(t, h.run(testPRURL, "--config", cfgPath, "--max-turns", "-1"))

	conv := rt.Conversation()
	require.NotNil(t, conv)
	assert.Equal(t, "anthropic/claude-haiku-4-5", conv.Model)
	assert.Equal(t, -1, conv.MaxTurns)
	assert.Equal(t, "/opt/claude", h.binary)
}

func TestRunReview_MissingConfigFile(t *testing.T) {
	h := newHarness(t, &scriptedRuntime{})

	err := h.run(testPRURL, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRunReview_RequiresURL(t *testing.T) {
	h := newHarness(t, &scriptedRuntime{})
	require.Error(t, h.run())
}

func TestReviewOptions_Validate(t *testing.T) {
	changed := func(names ...string) func(string) bool {
		return func(name string) bool {
			for _, n := range names {
				if n == name {
					return true
				}
			}
			return false
		}
	}

	tests := []struct {
		name    string
		opts    ReviewOptions
		wantErr string
	}{
		{
			name: "valid",
			opts: ReviewOptions{URL: testPRURL, MaxTurns: 500},
		},
		{
			name:    "missing url",
			opts:    ReviewOptions{URL: "  "},
			wantErr: "URL is required",
		},
		{
			name:    "zero max turns",
			opts:    ReviewOptions{URL: testPRURL, MaxTurns: 0, changed: changed("max-turns")},
			wantErr: "--max-turns",
		},
		{
			name:    "max turns below -1",
			opts:    ReviewOptions{URL: testPRURL, MaxTurns: -2, changed: changed("max-turns")},
			wantErr: "--max-turns",
		},
		{
			name: "unlimited turns",
			opts: ReviewOptions{URL: testPRURL, MaxTurns: -1, changed: changed("max-turns")},
		},
		{
			name:    "bad reasoning effort",
			opts:    ReviewOptions{URL: testPRURL, ReasoningEffort: "extreme"},
			wantErr: "invalid reasoning effort",
		},
		{
			name:    "empty model flag",
			opts:    ReviewOptions{URL: testPRURL, Model: " ", changed: changed("model")},
			wantErr: "--model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReviewOptions_ApplyTo(t *testing.T) {
	set := func(names ...string) func(string) bool {
		m := map[string]bool{}
		for _, n := range names {
			m[n] = true
		}
		return func(name string) bool { return m[name] }
	}

	t.Run("unset flags leave config alone", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Model = "from-file"
		ReviewOptions{Model: config.DefaultModel, MaxTurns: 500, changed: set()}.applyTo(cfg)

		assert.Equal(t, "from-file", cfg.Model)
		assert.Equal(t, "default", cfg.Source("claude.max_turns"))
	})

	t.Run("explicit flags win and record source", func(t *testing.T) {
		cfg := config.DefaultConfig()
		ReviewOptions{
			Model:     "anthropic/claude-opus-4-5",
			Workspace: "/tmp/pinned",
			Post:      true,
			changed:   set("model", "workspace", "post"),
		}.applyTo(cfg)

		assert.Equal(t, "anthropic/claude-opus-4-5", cfg.Model)
		assert.Equal(t, "/tmp/pinned", cfg.Workspace)
		assert.True(t, cfg.Review.Post)
		assert.Equal(t, "flag:--model", cfg.Source("model"))
	})

	t.Run("ultrathink forces high effort", func(t *testing.T) {
		cfg := config.DefaultConfig()
		ReviewOptions{
			ReasoningEffort: "low",
			Ultrathink:      true,
			changed:         set("reasoning-effort", "ultrathink"),
		}.applyTo(cfg)

		assert.Equal(t, "high", cfg.ReasoningEffort)
	})

	t.Run("prompt file replaces configured inline prompt", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Prompt.Inline = "from config"
		ReviewOptions{PromptFile: "review.md", changed: set("prompt-file")}.applyTo(cfg)

		assert.Empty(t, cfg.Prompt.Inline)
		assert.Equal(t, "review.md", cfg.Prompt.File)
	})

	t.Run("inline prompt beats prompt file", func(t *testing.T) {
		cfg := config.DefaultConfig()
		ReviewOptions{Prompt: "inline", PromptFile: "review.md", changed: set("prompt", "prompt-file")}.applyTo(cfg)

		assert.Equal(t, "inline", cfg.Prompt.Inline)
		assert.Equal(t, "review.md", cfg.Prompt.File)
	})
}

func TestLoadEnvFile(t *testing.T) {
	const key = "HODOR_TEST_ENV_FILE_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o644))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv(key))

	err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load env file")
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	const key = "HODOR_TEST_ENV_FILE_KEEP"
	t.Setenv(key, "from-process")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o644))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-process", os.Getenv(key))
}
