package mcp_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gouniverse/masterblog"
	"github.com/gouniverse/masterblog/mcp"
	_ "modernc.org/sqlite"
)

func rpcResultText(t *testing.T, respBytes []byte) string {
	t.Helper()

	var rpcResp map[string]any
	if err := json.Unmarshal(respBytes, &rpcResp); err != nil {
		t.Fatalf("Failed to unmarshal json-rpc response: %v. Body=%s", err, string(respBytes))
	}

	result, ok := rpcResp["result"].(map[string]any)
	if !ok {
		t.Fatalf("Expected response to have result: %s", string(respBytes))
	}

	content, ok := result["content"].([]any)
	if !ok || len(content) == 0 {
		t.Fatalf("Expected response result.content: %s", string(respBytes))
	}

	item0, ok := content[0].(map[string]any)
	if !ok {
		t.Fatalf("Expected response result.content[0] object: %s", string(respBytes))
	}

	text, ok := item0["text"].(string)
	if !ok {
		t.Fatalf("Expected response result.content[0].text: %s", string(respBytes))
	}

	return text
}

func rpcErrorMessage(t *testing.T, respBytes []byte) string {
	t.Helper()

	var rpcResp map[string]any
	if err := json.Unmarshal(respBytes, &rpcResp); err != nil {
		t.Fatalf("Failed to unmarshal json-rpc response: %v. Body=%s", err, string(respBytes))
	}

	rpcErr, ok := rpcResp["error"].(map[string]any)
	if !ok {
		t.Fatalf("Expected response to have error: %s", string(respBytes))
	}

	message, _ := rpcErr["message"].(string)
	return message
}

func initDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := ":memory:?parseTime=true"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	// each pooled connection would otherwise get its own empty :memory: database
	db.SetMaxOpenConns(1)

	return db
}

func initMCPServerWithStore(t *testing.T) (*httptest.Server, masterblog.StoreInterface, func()) {
	t.Helper()

	db := initDB(t)

	store, err := masterblog.NewStore(masterblog.NewStoreOptions{
		PostTableName:      "posts",
		DB:                 db,
		AutomigrateEnabled: true,
		SeedEnabled:        true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}

	h := mcp.NewMCP(store)
	server := httptest.NewServer(http.HandlerFunc(h.Handler))
	return server, store, server.Close
}

func callRPC(t *testing.T, serverURL string, payload map[string]any) []byte {
	t.Helper()

	reqBody, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	resp, err := http.Post(serverURL, "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	return bodyBytes
}

func callTool(t *testing.T, serverURL string, name string, args map[string]any) []byte {
	t.Helper()

	return callRPC(t, serverURL, map[string]any{
		"jsonrpc": "2.0",
		"id":      "1",
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
}

func Test_MCP_Initialize(t *testing.T) {
	server, _, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	body := callRPC(t, server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      "1",
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-06-18",
			"clientInfo": map[string]any{
				"name":    "test",
				"version": "0.0.0",
			},
		},
	})

	respStr := string(body)
	if !strings.Contains(respStr, "protocolVersion") {
		t.Fatalf("Unexpected response: %s", respStr)
	}
	if !strings.Contains(respStr, "masterblog") {
		t.Fatalf("Expected server info to name masterblog: %s", respStr)
	}
}

func Test_MCP_ToolsList(t *testing.T) {
	server, _, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	body := callRPC(t, server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      "1",
		"method":  "tools/list",
	})

	respStr := string(body)
	for _, tool := range []string{"post_list", "post_create", "post_get", "post_update", "post_delete", "post_search"} {
		if !strings.Contains(respStr, tool) {
			t.Errorf("tools/list must contain %q: %s", tool, respStr)
		}
	}
}

func Test_MCP_PostList(t *testing.T) {
	server, _, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	text := rpcResultText(t, callTool(t, server.URL, "post_list", map[string]any{}))

	var result struct {
		Items []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("Failed to unmarshal tool result: %v. Text=%s", err, text)
	}

	if len(result.Items) != 2 {
		t.Fatalf("post_list items = %d, want 2", len(result.Items))
	}
	if result.Items[0].ID != 1 || result.Items[0].Title != "First post" {
		t.Errorf("post_list items[0] = %+v", result.Items[0])
	}
}

func Test_MCP_PostCreateAndGet(t *testing.T) {
	server, _, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	text := rpcResultText(t, callTool(t, server.URL, "post_create", map[string]any{
		"title":   "Created via MCP",
		"content": "Tool content",
	}))

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(text), &created); err != nil {
		t.Fatalf("Failed to unmarshal create result: %v. Text=%s", err, text)
	}
	if created.ID != 3 {
		t.Errorf("post_create id = %d, want 3", created.ID)
	}

	text = rpcResultText(t, callTool(t, server.URL, "post_get", map[string]any{
		"id": created.ID,
	}))
	if !strings.Contains(text, "Created via MCP") {
		t.Errorf("post_get text = %s, want the created title", text)
	}
}

func Test_MCP_PostCreateRequiresTitleAndContent(t *testing.T) {
	server, _, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	message := rpcErrorMessage(t, callTool(t, server.URL, "post_create", map[string]any{
		"title": "No content",
	}))

	if !strings.Contains(message, "required") {
		t.Errorf("post_create error = %q, want a required-fields message", message)
	}
}

func Test_MCP_PostUpdate(t *testing.T) {
	server, _, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	text := rpcResultText(t, callTool(t, server.URL, "post_update", map[string]any{
		"id":    1,
		"title": "Retitled",
	}))

	var updated struct {
		ID      int64  `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(text), &updated); err != nil {
		t.Fatalf("Failed to unmarshal update result: %v. Text=%s", err, text)
	}

	if updated.Title != "Retitled" {
		t.Errorf("post_update title = %q, want %q", updated.Title, "Retitled")
	}
	if updated.Content != "This is the first post." {
		t.Errorf("post_update content = %q, want unchanged", updated.Content)
	}
}

func Test_MCP_PostDelete(t *testing.T) {
	server, store, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	text := rpcResultText(t, callTool(t, server.URL, "post_delete", map[string]any{
		"id": 2,
	}))
	if !strings.Contains(text, "deleted") {
		t.Errorf("post_delete text = %s", text)
	}

	found, err := store.PostFindByID(context.Background(), "2")
	if err != nil {
		t.Fatalf("PostFindByID() error = %v, want nil", err)
	}
	if found != nil {
		t.Errorf("post 2 still present after post_delete")
	}
}

func Test_MCP_PostDeleteUnknownID(t *testing.T) {
	server, _, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	message := rpcErrorMessage(t, callTool(t, server.URL, "post_delete", map[string]any{
		"id": 99,
	}))

	if !strings.Contains(message, "not found") {
		t.Errorf("post_delete error = %q, want a not-found message", message)
	}
}

func Test_MCP_PostSearch(t *testing.T) {
	server, _, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	text := rpcResultText(t, callTool(t, server.URL, "post_search", map[string]any{
		"title": "second",
	}))

	var result struct {
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("Failed to unmarshal search result: %v. Text=%s", err, text)
	}

	if len(result.Items) != 1 || result.Items[0].ID != 2 {
		t.Errorf("post_search items = %+v, want the second post", result.Items)
	}

	// both queries empty matches nothing
	text = rpcResultText(t, callTool(t, server.URL, "post_search", map[string]any{}))
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("Failed to unmarshal empty search result: %v. Text=%s", err, text)
	}
	if len(result.Items) != 0 {
		t.Errorf("post_search with no queries items = %d, want 0", len(result.Items))
	}
}

func Test_MCP_UnknownMethod(t *testing.T) {
	server, _, cleanup := initMCPServerWithStore(t)
	defer cleanup()

	body := callRPC(t, server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      "1",
		"method":  "bogus/method",
	})

	if message := rpcErrorMessage(t, body); message != "method not found" {
		t.Errorf("unknown method error = %q, want %q", message, "method not found")
	}
}
