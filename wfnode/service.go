package wfnode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/wfgraph/sarasvati-go/wfgraph"
)

// ServiceTypeName is the conventional registry key for
// NewServiceNodeType.
const ServiceTypeName = "service"

// ServiceExtra is the NodeExtra shape a node of type ServiceTypeName
// must carry: the request to issue when the node fires.
type ServiceExtra struct {
	Method  string // defaults to GET when empty
	URL     string
	Headers map[string]string
	Body    string
}

// NewServiceNodeType returns a node type whose accept action issues an
// HTTP request described by the node's ServiceExtra and completes
// along "ok" for any 2xx response, or "error" otherwise (including
// transport failures). The response is recorded as node-token
// attributes (status_code, body, and error when applicable) before
// completion, so downstream nodes can read them via
// Process.AttrValue using the same token id.
//
// A nil client defaults to http.DefaultClient.
func NewServiceNodeType(client *http.Client) wfgraph.NodeType {
	if client == nil {
		client = http.DefaultClient
	}
	return wfgraph.NodeType{
		Guard: wfgraph.DefaultGuard,
		Accept: func(ctx context.Context, engine wfgraph.Engine, token wfgraph.NodeToken, process *wfgraph.Process) error {
			node, ok := process.NodeForToken(token)
			if !ok {
				return &Error{NodeID: token.NodeID, TypeName: ServiceTypeName, Message: "node not present in graph"}
			}
			extra, ok := node.NodeExtra.(ServiceExtra)
			if !ok {
				return &Error{NodeID: node.ID, TypeName: node.Type, Message: "node extra is not a wfnode.ServiceExtra"}
			}

			outcome, status, body, callErr := callService(ctx, client, extra)

			if err := engine.SetTokenAttr(ctx, process, token, "status_code", strconv.Itoa(status)); err != nil {
				return err
			}
			if err := engine.SetTokenAttr(ctx, process, token, "body", body); err != nil {
				return err
			}
			if callErr != nil {
				if err := engine.SetTokenAttr(ctx, process, token, "error", callErr.Error()); err != nil {
					return err
				}
			}

			return wfgraph.CompleteExecution(ctx, engine, token, outcome, process)
		},
	}
}

func callService(ctx context.Context, client *http.Client, extra ServiceExtra) (outcome string, status int, body string, err error) {
	method := strings.ToUpper(extra.Method)
	if method == "" {
		method = http.MethodGet
	}

	var reqBody io.Reader
	if extra.Body != "" {
		reqBody = bytes.NewBufferString(extra.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, extra.URL, reqBody)
	if err != nil {
		return "error", 0, "", fmt.Errorf("wfnode: build request: %w", err)
	}
	for key, value := range extra.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "error", 0, "", fmt.Errorf("wfnode: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "error", resp.StatusCode, "", fmt.Errorf("wfnode: read response body: %w", err)
	}

	outcome = "error"
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		outcome = "ok"
	}
	return outcome, resp.StatusCode, string(respBody), nil
}
