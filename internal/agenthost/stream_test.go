package agenthost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStreamLine_AssistantText(t *testing.T) {
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Hello "},{"type":"text","text":"there"}]}}`
	ev, ok := ParseStreamLine(line)
	require.True(t, ok)
	assert.Equal(t, StreamAssistant, ev.Type)
	assert.Equal(t, "Hello there", ev.Text)
}

func TestParseStreamLine_ToolUseOnlyIsSkipped(t *testing.T) {
	line := `{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Bash"}]}}`
	_, ok := ParseStreamLine(line)
	assert.False(t, ok)
}

func TestParseStreamLine_Result(t *testing.T) {
	line := `{"type":"result","subtype":"success","result":"done","is_error":false}`
	ev, ok := ParseStreamLine(line)
	require.True(t, ok)
	assert.Equal(t, StreamResult, ev.Type)
	assert.Equal(t, "done", ev.Text)
	assert.False(t, ev.IsError)
}

func TestParseStreamLine_ErrorResult(t *testing.T) {
	line := `{"type":"result","subtype":"error_during_execution","is_error":true}`
	ev, ok := ParseStreamLine(line)
	require.True(t, ok)
	assert.True(t, ev.IsError)
}

func TestParseStreamLine_GarbageAndUnknown(t *testing.T) {
	_, ok := ParseStreamLine("plain text progress line")
	assert.False(t, ok)

	_, ok = ParseStreamLine(`{"type":"stream_event"}`)
	assert.False(t, ok)
}

func TestParseStreamLine_SystemInit(t *testing.T) {
	ev, ok := ParseStreamLine(`{"type":"system","subtype":"init"}`)
	require.True(t, ok)
	assert.Equal(t, StreamSystem, ev.Type)
}
