package agenthost

import "context"

// Unavailable is the host used when no agent binary could be resolved.
// Every operation fails with ErrHostUnavailable; Stop and Status report
// the same as they would for an unknown token.
type Unavailable struct {
	// Reason describes why the host is unavailable, for user-facing text.
	Reason string
}

// Start always fails.
func (Unavailable) Start(context.Context, StartSpec) (RunToken, error) {
	return "", ErrHostUnavailable
}

// Send always fails.
func (Unavailable) Send(RunToken, string) error { return ErrHostUnavailable }

// Stop reports no run was stopped.
func (Unavailable) Stop(RunToken) bool { return false }

// Status reports no run.
func (Unavailable) Status(RunToken) (RunStatus, bool) { return "", false }

// SubscribeOutput always fails.
func (Unavailable) SubscribeOutput(RunToken, func(string)) (Subscription, error) {
	return Subscription{}, ErrHostUnavailable
}

// SubscribeError always fails.
func (Unavailable) SubscribeError(RunToken, func(string)) (Subscription, error) {
	return Subscription{}, ErrHostUnavailable
}

// SubscribeComplete always fails.
func (Unavailable) SubscribeComplete(RunToken, func(bool)) (Subscription, error) {
	return Subscription{}, ErrHostUnavailable
}

var _ Host = Unavailable{}
