package session

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRuntime replays events and then returns err.
type scriptedRuntime struct {
	events []Event
	err    error
	got    Conversation
}

func (s *scriptedRuntime) Run(ctx context.Context, conv Conversation, emit func(Event)) error {
	s.got = conv
	for _, ev := range s.events {
		emit(ev)
	}
	return s.err
}

// fixedClock advances by step on every call.
func fixedClock(step time.Duration) func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func TestManager_Completed(t *testing.T) {
	rt := &scriptedRuntime{events: []Event{
		{Type: EventCommandStarted, Tool: "Bash", ToolID: "t1", Summary: "gh pr diff 42"},
		{Type: EventMetricsDelta, Usage: Usage{InputTokens: 1000, OutputTokens: 200}},
		{Type: EventCommandFinished, Tool: "Bash", ToolID: "t1"},
		{Type: EventMetricsDelta, Usage: Usage{InputTokens: 500, OutputTokens: 100, CacheHitTokens: 400}},
		{Type: EventFinalAnswer, Text: "No issues found."},
	}}

	var seen []EventType
	m := NewManager(rt, ObserverFunc(func(ev Event) { seen = append(seen, ev.Type) }))
	m.Now = fixedClock(time.Second)

	res, err := m.Run(context.Background(), Input{Conversation{Instruction: "review", WorkDir: "/w", Model: "anthropic/claude-sonnet-4-5-20250929"}})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, "No issues found.", res.Body)
	assert.NoError(t, res.Err)
	assert.Equal(t, "review", rt.got.Instruction)

	assert.Equal(t, 1500, res.Metrics.InputTokens)
	assert.Equal(t, 300, res.Metrics.OutputTokens)
	assert.Equal(t, 400, res.Metrics.CacheHitTokens)
	assert.Equal(t, 1800, res.Metrics.TotalTokens)
	assert.True(t, res.Metrics.Finalized())
	assert.Greater(t, res.Metrics.ElapsedSeconds, 0.0)

	// (1100 uncached * 3 + 400 * 0.30 + 300 * 15) / 1e6
	assert.InDelta(t, 0.00792, res.Metrics.EstimatedCost, 1e-9)

	assert.Equal(t, []EventType{
		EventCommandStarted, EventMetricsDelta, EventCommandFinished, EventMetricsDelta, EventFinalAnswer,
	}, seen)
}

func TestManager_AnswerSurvivesTeardownError(t *testing.T) {
	teardown := errors.New("conversation teardown: broken pipe")
	rt := &scriptedRuntime{
		events: []Event{{Type: EventFinalAnswer, Text: "LGTM"}},
		err:    teardown,
	}

	res, err := NewManager(rt).Run(context.Background(), Input{})
	require.NoError(t, err)

	assert.Equal(t, StatusCompletedWithRuntimeError, res.Status)
	assert.Equal(t, "LGTM", res.Body)
	assert.ErrorIs(t, res.Err, teardown)
	assert.True(t, res.HasBody())
}

func TestManager_LastAnswerWins(t *testing.T) {
	rt := &scriptedRuntime{events: []Event{
		{Type: EventFinalAnswer, Text: "draft"},
		{Type: EventFinalAnswer, Text: "final"},
	}}

	res, err := NewManager(rt).Run(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, "final", res.Body)
}

func TestManager_Failed(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		rt      *scriptedRuntime
		wantErr error
	}{
		{name: "error without answer", rt: &scriptedRuntime{err: boom}, wantErr: boom},
		{name: "clean exit without answer", rt: &scriptedRuntime{}, wantErr: ErrNoAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewManager(tt.rt).Run(context.Background(), Input{})
			require.NoError(t, err)
			assert.Equal(t, StatusFailed, res.Status)
			assert.Empty(t, res.Body)
			assert.ErrorIs(t, res.Err, tt.wantErr)
			assert.False(t, res.HasBody())
		})
	}
}

func TestManager_ReportedRuntimeError(t *testing.T) {
	rt := &scriptedRuntime{events: []Event{
		{Type: EventFinalAnswer, Text: "partial review"},
		{Type: EventRuntimeError, Text: "error_max_turns"},
	}}

	res, err := NewManager(rt).Run(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, StatusCompletedWithRuntimeError, res.Status)

	var rtErr *RuntimeError
	require.ErrorAs(t, res.Err, &rtErr)
	assert.Equal(t, "error_max_turns", rtErr.Message)
}

func TestManager_StartFailure(t *testing.T) {
	cause := errors.New(`exec: "claude": executable file not found in $PATH`)
	rt := &scriptedRuntime{err: &StartError{Err: cause}}

	res, err := NewManager(rt).Run(context.Background(), Input{})
	assert.Nil(t, res)

	var startErr *AgentStartFailedError
	require.ErrorAs(t, err, &startErr)
	assert.ErrorIs(t, err, cause)
}

func TestManager_ObserversSeeStampedEvents(t *testing.T) {
	rt := &scriptedRuntime{events: []Event{{Type: EventReasoning, Text: "thinking"}}}

	var got Event
	m := NewManager(rt)
	m.AddObserver(ObserverFunc(func(ev Event) { got = ev }))
	_, err := m.Run(context.Background(), Input{})
	require.NoError(t, err)

	assert.False(t, got.Time.IsZero())
	assert.Equal(t, "thinking", got.Text)
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.Observe(Event{Type: EventCommandStarted, Tool: "Bash", Summary: "git --no-pager diff origin/main...HEAD"})
	p.Observe(Event{Type: EventCommandFinished, Tool: "Bash", ExitCode: 1})
	p.Observe(Event{Type: EventReasoning, Text: "Looking at\nthe diff"})
	p.Observe(Event{Type: EventMetricsDelta, Usage: Usage{InputTokens: 1}})
	p.Observe(Event{Type: EventFinalAnswer, Text: "done"})

	out := buf.String()
	assert.Contains(t, out, "💻 Bash: git --no-pager diff origin/main...HEAD\n")
	assert.Contains(t, out, "Bash exited 1")
	assert.Contains(t, out, "Looking at the diff")
	assert.Contains(t, out, "Review complete")

	commands, failed := p.Stats()
	assert.Equal(t, 1, commands)
	assert.Equal(t, 1, failed)
}
