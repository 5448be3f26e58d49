// Package model defines a provider-neutral chat interface used by the
// LLM node type in package wfnode, plus a mock implementation for
// tests. A real deployment supplies its own ChatModel implementation
// against whichever provider SDK it needs; this module only needs the
// interface and the mock to exercise wfnode.NewLLMNodeType.
package model

import "context"

// ChatModel abstracts one turn of an LLM chat completion across
// providers.
type ChatModel interface {
	// Chat sends messages and optional tool specs, returning the
	// provider's response. Implementations must respect ctx
	// cancellation.
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (ChatOut, error)
}

// Message is one turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Role constants shared across providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolSpec describes a tool the model may call, with its parameters
// expressed as a JSON Schema object.
type ToolSpec struct {
	Name        string
	Description string
	Schema      map[string]interface{}
}

// ChatOut is a model's response: generated text, requested tool calls,
// or both.
type ChatOut struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolCall is one request from the model to invoke a named tool with
// the given input.
type ToolCall struct {
	Name  string
	Input map[string]interface{}
}
