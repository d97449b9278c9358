package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	calls []string
	err   error
}

func (f *fakeDispatcher) DispatchMention(_ context.Context, raw string) error {
	f.calls = append(f.calls, raw)
	return f.err
}

type fakeSender struct {
	texts  []string
	models []string
	err    error
}

func (f *fakeSender) Send(_ context.Context, text, modelID string) error {
	f.texts = append(f.texts, text)
	f.models = append(f.models, modelID)
	return f.err
}

func submit(t *testing.T, g Gate, req SubmitRequest) (Buffer, Outcome, error) {
	t.Helper()
	return g.Submit(context.Background(), req)
}

func TestGate_SuppressionCases(t *testing.T) {
	tests := []struct {
		name string
		req  SubmitRequest
	}{
		{
			name: "disabled",
			req:  SubmitRequest{Buffer: NewBuffer("hi"), Picker: Closed, Disabled: true},
		},
		{
			name: "picker open",
			req: SubmitRequest{
				Buffer: NewBuffer("hi @J"),
				Picker: State{Kind: KindMention, TriggerOffset: 3},
			},
		},
		{
			name: "composing",
			req: SubmitRequest{
				Buffer: NewBuffer("hi").Apply(Edit{Kind: EditCompositionStart}),
				Picker: Closed,
			},
		},
		{
			name: "tick after composition end",
			req: SubmitRequest{
				Buffer: NewBuffer("hi").
					Apply(Edit{Kind: EditCompositionStart}).
					Apply(Edit{Kind: EditCompositionEnd}),
				Picker: Closed,
			},
		},
		{
			name: "empty buffer",
			req:  SubmitRequest{Buffer: NewBuffer(""), Picker: Closed},
		},
		{
			name: "whitespace only",
			req:  SubmitRequest{Buffer: NewBuffer("  \n "), Picker: Closed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disp := &fakeDispatcher{}
			send := &fakeSender{}
			g := NewGate(disp, send)

			buf, outcome, err := submit(t, g, tt.req)

			require.NoError(t, err)
			assert.Equal(t, OutcomeSuppressed, outcome)
			assert.Equal(t, tt.req.Buffer.Text(), buf.Text(), "suppression leaves the buffer intact")
			assert.Empty(t, disp.calls)
			assert.Empty(t, send.texts)
		})
	}
}

func TestGate_BareMentionDispatches(t *testing.T) {
	disp := &fakeDispatcher{}
	send := &fakeSender{}
	g := NewGate(disp, send)

	buf, outcome, err := submit(t, g, SubmitRequest{
		Buffer: NewBuffer("  @James  "),
		Picker: Closed,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeDispatched, outcome)
	assert.Equal(t, []string{"@James"}, disp.calls, "dispatch receives the trimmed text")
	assert.Empty(t, send.texts, "the normal send path is bypassed")
	assert.Equal(t, "", buf.Text())
}

func TestGate_DispatchFailureStillClears(t *testing.T) {
	disp := &fakeDispatcher{err: errors.New("conversation surface down")}
	g := NewGate(disp, &fakeSender{})

	buf, outcome, err := submit(t, g, SubmitRequest{
		Buffer: NewBuffer("@James"),
		Picker: Closed,
	})

	require.NoError(t, err, "dispatch failures are logged, never surfaced")
	assert.Equal(t, OutcomeDispatched, outcome)
	assert.Equal(t, "", buf.Text())
}

func TestGate_MentionWithTrailingTextSendsNormally(t *testing.T) {
	disp := &fakeDispatcher{}
	send := &fakeSender{}
	g := NewGate(disp, send)

	_, outcome, err := submit(t, g, SubmitRequest{
		Buffer: NewBuffer("@James look at this"),
		Picker: Closed,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, outcome)
	assert.Empty(t, disp.calls)
	assert.Equal(t, []string{"@James look at this"}, send.texts)
}

func TestGate_NilDispatcherFallsThroughToSend(t *testing.T) {
	send := &fakeSender{}
	g := NewGate(nil, send)

	_, outcome, err := submit(t, g, SubmitRequest{
		Buffer: NewBuffer("@James"),
		Picker: Closed,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, outcome)
	assert.Equal(t, []string{"@James"}, send.texts)
}

func TestGate_AppliesDepthPhrase(t *testing.T) {
	send := &fakeSender{}
	g := NewGate(nil, send)

	buf, outcome, err := submit(t, g, SubmitRequest{
		Buffer:  NewBuffer("fix bug"),
		Picker:  Closed,
		DepthID: "think_hard",
		ModelID: "opus",
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, outcome)
	require.Equal(t, []string{"fix bug.\n\nthink hard."}, send.texts)
	assert.Equal(t, []string{"opus"}, send.models)
	assert.Equal(t, "", buf.Text())
}

func TestGate_DefaultDepthLeavesTextAlone(t *testing.T) {
	for _, depth := range []string{"", "auto"} {
		send := &fakeSender{}
		g := NewGate(nil, send)

		_, _, err := submit(t, g, SubmitRequest{
			Buffer:  NewBuffer("fix bug"),
			Picker:  Closed,
			DepthID: depth,
		})

		require.NoError(t, err)
		assert.Equalf(t, []string{"fix bug"}, send.texts, "depth %q", depth)
	}
}

func TestGate_SendFailureClearsButReportsError(t *testing.T) {
	sendErr := errors.New("host unavailable")
	send := &fakeSender{err: sendErr}
	g := NewGate(nil, send)

	buf, outcome, err := submit(t, g, SubmitRequest{
		Buffer: NewBuffer("fix bug"),
		Picker: Closed,
	})

	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, OutcomeSent, outcome)
	assert.Equal(t, "", buf.Text(), "the buffer clears even when sending fails")
}
