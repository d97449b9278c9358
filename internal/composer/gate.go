package composer

import (
	"context"
	"regexp"
	"strings"

	"roster/internal/catalog"
	"roster/internal/log"
)

// MentionDispatcher hands a bare "@name" message to the agent conversation
// surface. Optional collaborator; nil disables agent-mention dispatch.
type MentionDispatcher interface {
	DispatchMention(ctx context.Context, raw string) error
}

// MessageSender is the normal-send collaborator invoked with the final text
// and the selected model.
type MessageSender interface {
	Send(ctx context.Context, text string, modelID string) error
}

// Outcome reports what the gate did with a submit request.
type Outcome int

const (
	// OutcomeSuppressed means nothing was sent and the buffer is untouched.
	OutcomeSuppressed Outcome = iota
	// OutcomeDispatched means the text went to the mention dispatcher.
	OutcomeDispatched
	// OutcomeSent means the text went to the normal-send collaborator.
	OutcomeSent
)

// agentMentionRe matches a trimmed buffer that is exactly one "@word"
// mention and nothing else.
var agentMentionRe = regexp.MustCompile(`^@[^\s@"]+$`)

// SubmitRequest captures everything the gate composes on submit.
type SubmitRequest struct {
	Buffer   Buffer
	Picker   State
	Disabled bool   // Submission externally disabled
	DepthID  string // Selected reasoning depth (catalog id)
	ModelID  string // Selected model (catalog id)
}

// Gate decides between suppressing, dispatching an agent mention, and the
// normal send path. It owns clearing the buffer; attachments are derived
// from the buffer, so clearing it clears them too.
type Gate struct {
	dispatcher MentionDispatcher
	sender     MessageSender
}

// NewGate creates a submission gate. dispatcher may be nil.
func NewGate(dispatcher MentionDispatcher, sender MessageSender) Gate {
	return Gate{dispatcher: dispatcher, sender: sender}
}

// Submit applies the gate policy and returns the resulting buffer and
// outcome. On the dispatch path a collaborator failure is logged, never
// surfaced, and never blocks clearing: from the composition surface's view
// the message was sent, which avoids resubmission loops on a
// possibly-partial failure. On the normal path the sender's error is
// returned for user-visible reporting, but the buffer is still cleared.
func (g Gate) Submit(ctx context.Context, req SubmitRequest) (Buffer, Outcome, error) {
	if req.Disabled || req.Picker.Open() ||
		req.Buffer.Composing() || req.Buffer.JustComposed() {
		return req.Buffer, OutcomeSuppressed, nil
	}

	trimmed := strings.TrimSpace(req.Buffer.Text())
	if trimmed == "" {
		return req.Buffer, OutcomeSuppressed, nil
	}

	cleared := req.Buffer.Apply(Edit{Kind: EditClear})

	if g.dispatcher != nil && agentMentionRe.MatchString(trimmed) {
		if err := g.dispatcher.DispatchMention(ctx, trimmed); err != nil {
			log.ErrorErr(log.CatComposer, "agent mention dispatch failed", err,
				"text", trimmed)
		}
		return cleared, OutcomeDispatched, nil
	}

	text := catalog.ApplyDepth(trimmed, req.DepthID)
	err := g.sender.Send(ctx, text, req.ModelID)
	return cleared, OutcomeSent, err
}
