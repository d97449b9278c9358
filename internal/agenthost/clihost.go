package agenthost

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"roster/internal/log"
	"roster/internal/pubsub"
	"roster/internal/tracing"
)

var tracer = otel.Tracer("roster/agenthost")

// Config holds CLI host settings.
type Config struct {
	// Binary is the agent executable name or path. Resolved with LookPath
	// at construction.
	Binary string
}

// DefaultBinary is the agent CLI launched when no binary is configured.
const DefaultBinary = "claude"

// New resolves the configured binary and returns a live CLI host, or an
// Unavailable host when resolution fails. The choice is made once, here;
// callers never re-probe availability per operation.
func New(cfg Config) Host {
	binary := cfg.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		log.Warn(log.CatHost, "agent binary not found, host unavailable",
			"binary", binary, "error", err)
		return Unavailable{Reason: fmt.Sprintf("binary %q not found", binary)}
	}
	log.Info(log.CatHost, "agent host ready", "binary", path)
	return &CLIHost{binary: path, runs: make(map[RunToken]*run)}
}

// CLIHost launches agent runs as subprocesses of the configured binary,
// streaming prompts over stdin and reading stream-json events from stdout.
type CLIHost struct {
	binary string

	mu   sync.Mutex
	runs map[RunToken]*run
}

// run is one live subprocess and its subscriber lists.
type run struct {
	token  RunToken
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool

	output   *pubsub.Observers[string]
	errs     *pubsub.Observers[string]
	complete *pubsub.Observers[bool]
}

// Start launches a subprocess for the spec and registers its run token.
// The process stays alive waiting for stdin messages; no initial prompt
// argument is passed.
func (h *CLIHost) Start(ctx context.Context, spec StartSpec) (RunToken, error) {
	ctx, span := tracer.Start(ctx, tracing.SpanHostStart, trace.WithAttributes(
		tracing.AttrAgentID.String(spec.AgentID),
		tracing.AttrModel.String(spec.Model),
	))
	defer span.End()

	token, err := h.start(ctx, spec)
	span.SetAttributes(tracing.AttrSuccess.Bool(err == nil))
	return token, err
}

func (h *CLIHost) start(ctx context.Context, spec StartSpec) (RunToken, error) {
	if spec.AgentID == "" {
		return "", fmt.Errorf("agenthost: start: empty agent id")
	}
	if spec.WorkDir == "" {
		return "", fmt.Errorf("agenthost: start: empty work dir")
	}

	args, err := buildArgs(spec)
	if err != nil {
		return "", err
	}

	token := RunToken(uuid.NewString())
	procCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	log.Debug(log.CatHost, "spawning agent run",
		"token", token, "agent", spec.AgentID, "workDir", spec.WorkDir,
		"args", strings.Join(args, " "))

	// #nosec G204 -- args are built from StartSpec, not raw user input
	cmd := exec.CommandContext(procCtx, h.binary, args...)
	cmd.Dir = spec.WorkDir
	cmd.Env = runEnv()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return "", fmt.Errorf("agenthost: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return "", fmt.Errorf("agenthost: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return "", fmt.Errorf("agenthost: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return "", fmt.Errorf("agenthost: start %s: %w", h.binary, err)
	}

	r := &run{
		token:    token,
		cmd:      cmd,
		stdin:    stdin,
		cancel:   cancel,
		output:   pubsub.NewObservers[string](),
		errs:     pubsub.NewObservers[string](),
		complete: pubsub.NewObservers[bool](),
	}

	h.mu.Lock()
	h.runs[token] = r
	h.mu.Unlock()

	log.Info(log.CatHost, "agent run started",
		"token", token, "agent", spec.AgentID, "pid", cmd.Process.Pid)

	go h.readOutput(r, stdout)
	go h.readStderr(r, stderr)
	go h.waitForExit(r)

	return token, nil
}

// Send writes one message to the run's stdin, newline terminated.
func (h *CLIHost) Send(token RunToken, content string) error {
	r, ok := h.lookup(token)
	if !ok {
		return ErrUnknownRun
	}
	if _, err := io.WriteString(r.stdin, content+"\n"); err != nil {
		return fmt.Errorf("agenthost: send to run %s: %w", token, err)
	}
	return nil
}

// Stop terminates a run. Unknown tokens report false without error, so
// stopping an already-exited run is a clean no-op.
func (h *CLIHost) Stop(token RunToken) bool {
	r, ok := h.lookup(token)
	if !ok {
		return false
	}

	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	log.Info(log.CatHost, "stopping agent run", "token", token)
	r.cancel()
	return true
}

// Status reports StatusRunning for live runs and false for everything else.
func (h *CLIHost) Status(token RunToken) (RunStatus, bool) {
	if _, ok := h.lookup(token); !ok {
		return "", false
	}
	return StatusRunning, true
}

// SubscribeOutput registers a stdout line callback.
func (h *CLIHost) SubscribeOutput(token RunToken, fn func(line string)) (Subscription, error) {
	r, ok := h.lookup(token)
	if !ok {
		return Subscription{}, ErrUnknownRun
	}
	handle := r.output.Add(fn)
	return NewSubscription(func() { r.output.Remove(handle) }), nil
}

// SubscribeError registers a stderr line callback.
func (h *CLIHost) SubscribeError(token RunToken, fn func(line string)) (Subscription, error) {
	r, ok := h.lookup(token)
	if !ok {
		return Subscription{}, ErrUnknownRun
	}
	handle := r.errs.Add(fn)
	return NewSubscription(func() { r.errs.Remove(handle) }), nil
}

// SubscribeComplete registers an exit callback.
func (h *CLIHost) SubscribeComplete(token RunToken, fn func(success bool)) (Subscription, error) {
	r, ok := h.lookup(token)
	if !ok {
		return Subscription{}, ErrUnknownRun
	}
	handle := r.complete.Add(fn)
	return NewSubscription(func() { r.complete.Remove(handle) }), nil
}

func (h *CLIHost) lookup(token RunToken) (*run, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.runs[token]
	return r, ok
}

// readOutput streams stdout lines to output subscribers. Lines are
// forwarded raw; stream-json parsing belongs to the consumer.
func (h *CLIHost) readOutput(r *run, stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	// Agent result events can be large single lines.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		r.output.Notify(line)
	}
	if err := scanner.Err(); err != nil {
		log.Debug(log.CatHost, "stdout scanner error", "token", r.token, "error", err)
	}
}

// readStderr streams stderr lines to error subscribers.
func (h *CLIHost) readStderr(r *run, stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debug(log.CatHost, "agent stderr", "token", r.token, "line", line)
		r.errs.Notify(line)
	}
}

// waitForExit blocks on the subprocess, unregisters the token, and fires
// the completion topic exactly once. A stopped run is never a success,
// regardless of exit code.
func (h *CLIHost) waitForExit(r *run) {
	err := r.cmd.Wait()

	h.mu.Lock()
	delete(h.runs, r.token)
	h.mu.Unlock()

	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	r.cancel()

	success := err == nil && !stopped
	log.Info(log.CatHost, "agent run exited",
		"token", r.token, "success", success, "stopped", stopped, "error", err)

	r.complete.Notify(success)
}

// buildArgs assembles the agent CLI arguments: stream-json output, an
// --agents config naming the member, and no prompt argument because
// messages arrive over stdin.
func buildArgs(spec StartSpec) ([]string, error) {
	description := spec.DefaultTask
	if description == "" {
		description = "Teammate agent: " + spec.AgentName
	}
	agent := map[string]any{"description": description}
	if spec.Model != "" {
		agent["model"] = spec.Model
	}
	if spec.SystemPrompt != "" {
		agent["prompt"] = spec.SystemPrompt
	}
	agentsJSON, err := json.Marshal(map[string]any{spec.AgentID: agent})
	if err != nil {
		return nil, fmt.Errorf("agenthost: encode agents config: %w", err)
	}

	args := []string{
		"--agents", string(agentsJSON),
		"--output-format", "stream-json",
		"--verbose",
	}
	if spec.Model != "" {
		args = append(args, "--model", spec.Model)
	}
	if spec.SkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}
	return args, nil
}

// runEnv returns the subprocess environment with agent defaults applied
// only when the variable is not already set.
func runEnv() []string {
	env := os.Environ()
	for _, kv := range [][2]string{
		{"API_TIMEOUT_MS", "600000"},
		{"CLAUDE_CODE_DISABLE_NONESSENTIAL_TRAFFIC", "1"},
	} {
		if _, set := os.LookupEnv(kv[0]); !set {
			env = append(env, kv[0]+"="+kv[1])
		}
	}
	return env
}
