package wfnode

import (
	"context"
	"strconv"

	"github.com/wfgraph/sarasvati-go/wfgraph"
	"github.com/wfgraph/sarasvati-go/wfnode/model"
)

// LLMTypeName is the conventional registry key for NewLLMNodeType.
const LLMTypeName = "llm"

// LLMExtra is the NodeExtra shape a node of type LLMTypeName must
// carry: the prompt to send and the tools the model may call.
type LLMExtra struct {
	SystemPrompt string
	Prompt       string
	Tools        []model.ToolSpec
}

// NewLLMNodeType returns a node type whose accept action sends the
// node's LLMExtra prompt to chatModel and completes along "ok" with
// the response text and any tool calls recorded as node-token
// attributes, or "error" if the call fails.
func NewLLMNodeType(chatModel model.ChatModel) wfgraph.NodeType {
	return wfgraph.NodeType{
		Guard: wfgraph.DefaultGuard,
		Accept: func(ctx context.Context, engine wfgraph.Engine, token wfgraph.NodeToken, process *wfgraph.Process) error {
			node, ok := process.NodeForToken(token)
			if !ok {
				return &Error{NodeID: token.NodeID, TypeName: LLMTypeName, Message: "node not present in graph"}
			}
			extra, ok := node.NodeExtra.(LLMExtra)
			if !ok {
				return &Error{NodeID: node.ID, TypeName: node.Type, Message: "node extra is not a wfnode.LLMExtra"}
			}

			messages := buildMessages(extra)
			out, err := chatModel.Chat(ctx, messages, extra.Tools)
			if err != nil {
				if attrErr := engine.SetTokenAttr(ctx, process, token, "error", err.Error()); attrErr != nil {
					return attrErr
				}
				return wfgraph.CompleteExecution(ctx, engine, token, "error", process)
			}

			if err := engine.SetTokenAttr(ctx, process, token, "text", out.Text); err != nil {
				return err
			}
			if err := engine.SetTokenAttr(ctx, process, token, "tool_call_count", strconv.Itoa(len(out.ToolCalls))); err != nil {
				return err
			}
			for i, call := range out.ToolCalls {
				if err := engine.SetTokenAttr(ctx, process, token, "tool_call_"+strconv.Itoa(i)+"_name", call.Name); err != nil {
					return err
				}
			}

			return wfgraph.CompleteExecution(ctx, engine, token, "ok", process)
		},
	}
}

func buildMessages(extra LLMExtra) []model.Message {
	var messages []model.Message
	if extra.SystemPrompt != "" {
		messages = append(messages, model.Message{Role: model.RoleSystem, Content: extra.SystemPrompt})
	}
	messages = append(messages, model.Message{Role: model.RoleUser, Content: extra.Prompt})
	return messages
}
