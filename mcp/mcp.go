package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gouniverse/masterblog"
)

type MCP struct {
	store masterblog.StoreInterface
}

func NewMCP(store masterblog.StoreInterface) *MCP {
	return &MCP{store: store}
}

// Handler is an HTTP handler intended to be mounted at a dedicated route.
//
// The protocol is JSON-RPC 2.0 compatible and currently supports:
// - MCP standard methods: initialize, notifications/initialized, tools/list, tools/call
// - legacy aliases: list_tools, call_tool
func (m *MCP) Handler(w http.ResponseWriter, r *http.Request) {
	if m == nil || m.store == nil {
		writeJSON(w, http.StatusInternalServerError, jsonRPCErrorResponse(nil, -32603, "store is not initialized"))
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, jsonRPCErrorResponse(nil, -32602, "failed to read request body"))
		return
	}
	defer r.Body.Close()

	var req jsonRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, jsonRPCErrorResponse(nil, -32700, "parse error"))
		return
	}

	if strings.TrimSpace(req.JSONRPC) == "" {
		req.JSONRPC = "2.0"
	}

	switch req.Method {
	case "initialize":
		m.handleInitialize(w, r.Context(), req.ID, req.Params)
		return
	case "notifications/initialized":
		m.handleInitialized(w, r.Context())
		return
	case "tools/list":
		m.handleToolsList(w, r.Context(), req.ID)
		return
	case "tools/call":
		m.handleToolsCall(w, r.Context(), req.ID, req.Params)
		return
	case "list_tools":
		m.handleToolsList(w, r.Context(), req.ID)
		return
	case "call_tool":
		m.handleToolsCall(w, r.Context(), req.ID, req.Params)
		return
	default:
		writeJSON(w, http.StatusOK, jsonRPCErrorResponse(req.ID, -32601, "method not found"))
		return
	}
}

func argString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprintf("%.0f", t)
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	default:
		return ""
	}
}

func argID(args map[string]any, key string) (int64, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		i64, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return i64, true
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		i64, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return i64, true
	default:
		return 0, false
	}
}

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type jsonRPCResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   any    `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func jsonRPCErrorResponse(id any, code int, message string) jsonRPCResponse {
	return jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: jsonRPCError{
			Code:    code,
			Message: message,
		},
	}
}

func jsonRPCResultResponse(id any, result any) jsonRPCResponse {
	return jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func toolTextResult(text string) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{
				"type": "text",
				"text": text,
			},
		},
	}
}

func (m *MCP) handleInitialize(w http.ResponseWriter, ctx context.Context, id any, params json.RawMessage) {
	var p struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      any    `json:"clientInfo"`
		Capabilities    any    `json:"capabilities"`
	}
	_ = json.Unmarshal(params, &p)

	result := map[string]any{
		"protocolVersion": "2025-06-18",
		"serverInfo": map[string]any{
			"name":    "masterblog",
			"version": "0.1.0",
		},
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"echo": map[string]any{
			"clientProtocolVersion": p.ProtocolVersion,
			"clientInfo":            p.ClientInfo,
			"clientCapabilities":    p.Capabilities,
		},
	}

	writeJSON(w, http.StatusOK, jsonRPCResultResponse(id, result))
}

func (m *MCP) handleInitialized(w http.ResponseWriter, ctx context.Context) {
	w.WriteHeader(http.StatusOK)
}

func (m *MCP) handleToolsList(w http.ResponseWriter, ctx context.Context, id any) {
	tools := []map[string]any{
		{
			"name":        "post_list",
			"description": "List blog posts, optionally sorted by title or content",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sort":      map[string]any{"type": "string", "enum": []string{"title", "content"}},
					"direction": map[string]any{"type": "string", "enum": []string{"asc", "desc"}},
				},
			},
		},
		{
			"name":        "post_create",
			"description": "Create a blog post",
			"inputSchema": map[string]any{
				"type":     "object",
				"required": []string{"title", "content"},
				"properties": map[string]any{
					"title":   map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
			},
		},
		{
			"name":        "post_get",
			"description": "Get a blog post by ID",
			"inputSchema": map[string]any{
				"type":     "object",
				"required": []string{"id"},
				"properties": map[string]any{
					"id": map[string]any{"type": "integer"},
				},
			},
		},
		{
			"name":        "post_update",
			"description": "Update the title and/or content of a blog post",
			"inputSchema": map[string]any{
				"type":     "object",
				"required": []string{"id"},
				"properties": map[string]any{
					"id":      map[string]any{"type": "integer"},
					"title":   map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
			},
		},
		{
			"name":        "post_delete",
			"description": "Delete a blog post",
			"inputSchema": map[string]any{
				"type":     "object",
				"required": []string{"id"},
				"properties": map[string]any{
					"id": map[string]any{"type": "integer"},
				},
			},
		},
		{
			"name":        "post_search",
			"description": "Search blog posts by title and/or content substring",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":   map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
			},
		},
	}

	result := map[string]any{"tools": tools}
	writeJSON(w, http.StatusOK, jsonRPCResultResponse(id, result))
}

func (m *MCP) handleToolsCall(w http.ResponseWriter, ctx context.Context, id any, params json.RawMessage) {
	var p struct {
		Name      string          `json:"name"`
		ToolName  string          `json:"tool_name"`
		Args      json.RawMessage `json:"arguments"`
		Arguments json.RawMessage `json:"params"`
	}
	_ = json.Unmarshal(params, &p)

	toolName := strings.TrimSpace(p.Name)
	if toolName == "" {
		toolName = strings.TrimSpace(p.ToolName)
	}

	argsRaw := p.Args
	if len(argsRaw) == 0 {
		argsRaw = p.Arguments
	}

	args := map[string]any{}
	if len(argsRaw) > 0 {
		dec := json.NewDecoder(strings.NewReader(string(argsRaw)))
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			writeJSON(w, http.StatusOK, jsonRPCErrorResponse(id, -32602, "invalid tool arguments"))
			return
		}
	}

	text, err := m.dispatchTool(ctx, toolName, args)
	if err != nil {
		writeJSON(w, http.StatusOK, jsonRPCErrorResponse(id, -32603, err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, jsonRPCResultResponse(id, toolTextResult(text)))
}

func (m *MCP) dispatchTool(ctx context.Context, toolName string, args map[string]any) (string, error) {
	switch toolName {
	case "post_list":
		return m.toolPostList(ctx, args)
	case "post_create":
		return m.toolPostCreate(ctx, args)
	case "post_get":
		return m.toolPostGet(ctx, args)
	case "post_update":
		return m.toolPostUpdate(ctx, args)
	case "post_delete":
		return m.toolPostDelete(ctx, args)
	case "post_search":
		return m.toolPostSearch(ctx, args)
	default:
		return "", errors.New("unknown tool")
	}
}

func postToMap(post *masterblog.Post) map[string]any {
	if post == nil {
		return map[string]any{}
	}
	return map[string]any{
		"id":      post.IDInt(),
		"title":   post.Title(),
		"content": post.Content(),
	}
}

func postsToItems(list []masterblog.Post) []map[string]any {
	items := make([]map[string]any, 0, len(list))
	for i := range list {
		post := list[i]
		items = append(items, postToMap(&post))
	}
	return items
}

func (m *MCP) toolPostList(ctx context.Context, args map[string]any) (string, error) {
	opts := masterblog.PostQueryOptions{}

	if sortField := argString(args, "sort"); sortField != "" {
		if sortField != masterblog.SORT_FIELD_TITLE && sortField != masterblog.SORT_FIELD_CONTENT {
			return "", errors.New("sort must be title or content")
		}
		opts.OrderBy = sortField
		opts.SortOrder = argString(args, "direction")
	}

	list, err := m.store.PostList(ctx, opts)
	if err != nil {
		return "", err
	}

	b, _ := json.Marshal(map[string]any{"items": postsToItems(list)})
	return string(b), nil
}

func (m *MCP) toolPostCreate(ctx context.Context, args map[string]any) (string, error) {
	title := argString(args, "title")
	content := argString(args, "content")

	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return "", errors.New("title and content are required")
	}

	post := masterblog.NewPost().
		SetTitle(title).
		SetContent(content)

	if err := m.store.PostCreate(ctx, post); err != nil {
		return "", err
	}

	b, _ := json.Marshal(postToMap(post))
	return string(b), nil
}

func (m *MCP) toolPostGet(ctx context.Context, args map[string]any) (string, error) {
	id, ok := argID(args, "id")
	if !ok {
		return "", errors.New("id is required")
	}

	post, err := m.store.PostFindByID(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return "", err
	}
	if post == nil {
		return "", fmt.Errorf("post with id %d not found", id)
	}

	b, _ := json.Marshal(postToMap(post))
	return string(b), nil
}

func (m *MCP) toolPostUpdate(ctx context.Context, args map[string]any) (string, error) {
	id, ok := argID(args, "id")
	if !ok {
		return "", errors.New("id is required")
	}

	post, err := m.store.PostFindByID(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return "", err
	}
	if post == nil {
		return "", fmt.Errorf("post with id %d not found", id)
	}

	if _, exists := args["title"]; exists {
		post.SetTitle(argString(args, "title"))
	}

	if _, exists := args["content"]; exists {
		post.SetContent(argString(args, "content"))
	}

	if err := m.store.PostUpdate(ctx, post); err != nil {
		return "", err
	}

	b, _ := json.Marshal(postToMap(post))
	return string(b), nil
}

func (m *MCP) toolPostDelete(ctx context.Context, args map[string]any) (string, error) {
	id, ok := argID(args, "id")
	if !ok {
		return "", errors.New("id is required")
	}

	post, err := m.store.PostFindByID(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return "", err
	}
	if post == nil {
		return "", fmt.Errorf("post with id %d not found", id)
	}

	if err := m.store.PostDeleteByID(ctx, post.ID()); err != nil {
		return "", err
	}

	b, _ := json.Marshal(map[string]any{"deleted": true, "id": id})
	return string(b), nil
}

func (m *MCP) toolPostSearch(ctx context.Context, args map[string]any) (string, error) {
	titleQuery := argString(args, "title")
	contentQuery := argString(args, "content")

	list, err := m.store.PostSearch(ctx, titleQuery, contentQuery)
	if err != nil {
		return "", err
	}

	b, _ := json.Marshal(map[string]any{"items": postsToItems(list)})
	return string(b), nil
}
