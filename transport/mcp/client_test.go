package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/mcp-training/chatgames/api"
	"github.com/wricardo/mcp-training/chatgames/bot"
	"github.com/wricardo/mcp-training/chatgames/game/service"
	"github.com/wricardo/mcp-training/chatgames/game/session"
)

// newBotServer starts a real REST API over an in-memory store.
func newBotServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := session.NewStore(session.Config{
		NewState: service.NewStateFactory(service.GameOptions{}),
	})
	games := service.NewGameService(store, nil)
	server := httptest.NewServer(api.NewServer(games, bot.NewDispatcher(games, nil), nil, nil))
	t.Cleanup(server.Close)
	return server
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("%s: expected content", name)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content in result", name)
	}
	return text.Text, result.IsError
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCallError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "no active session", "code": 404})
	}))
	defer server.Close()

	err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api/sessions/x", nil, nil)
	if err == nil || err.Error() != "no active session" {
		t.Errorf("Expected API error message, got %v", err)
	}
}

func TestClient_SendMessageFlow(t *testing.T) {
	client := NewClient(newBotServer(t).URL)

	text, isErr := callTool(t, client.handleSendMessage, "send_message", map[string]interface{}{
		"user_id": "agent", "display_name": "Agent", "text": "/tictactoe",
	})
	if isErr || !strings.Contains(text, "[command]") || !strings.Contains(text, "Tic-Tac-Toe with Agent") {
		t.Errorf("Unexpected start reply: %s", text)
	}

	text, _ = callTool(t, client.handleSendMessage, "send_message", map[string]interface{}{
		"user_id": "agent", "text": "5",
	})
	if !strings.Contains(text, "[game_input]") {
		t.Errorf("Expected game input route, got: %s", text)
	}

	text, _ = callTool(t, client.handleGetSession, "get_session", map[string]interface{}{"user_id": "agent"})
	if !strings.Contains(text, "agent playing Tic-Tac-Toe") {
		t.Errorf("Unexpected session info: %s", text)
	}

	text, _ = callTool(t, client.handleListSessions, "list_sessions", map[string]interface{}{"kind": "tictactoe"})
	if !strings.Contains(text, "Active sessions (1)") {
		t.Errorf("Unexpected session list: %s", text)
	}

	text, _ = callTool(t, client.handleSessionStats, "session_stats", nil)
	if !strings.Contains(text, "Active sessions: 1") || !strings.Contains(text, "Tic-Tac-Toe: 1") {
		t.Errorf("Unexpected stats: %s", text)
	}

	text, isErr = callTool(t, client.handleEndSession, "end_session", map[string]interface{}{"user_id": "agent"})
	if isErr || !strings.Contains(text, "Ended Tic-Tac-Toe session for agent") {
		t.Errorf("Unexpected end reply: %s", text)
	}

	_, isErr = callTool(t, client.handleGetSession, "get_session", map[string]interface{}{"user_id": "agent"})
	if !isErr {
		t.Error("Expected an error for a user without a session")
	}

	text, _ = callTool(t, client.handleListSessions, "list_sessions", nil)
	if text != "No active sessions" {
		t.Errorf("Unexpected session list: %s", text)
	}
}

func TestClient_Validation(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")

	_, isErr := callTool(t, client.handleSendMessage, "send_message", map[string]interface{}{"user_id": "u1"})
	if !isErr {
		t.Error("Expected an error without text")
	}
	_, isErr = callTool(t, client.handleEndSession, "end_session", map[string]interface{}{})
	if !isErr {
		t.Error("Expected an error without user_id")
	}
}

func TestClient_BotHelp(t *testing.T) {
	client := NewClient(newBotServer(t).URL)

	text, isErr := callTool(t, client.handleBotHelp, "bot_help", nil)
	if isErr || !strings.Contains(text, "/rps") {
		t.Errorf("Unexpected help: %s", text)
	}
}

func TestFormatMessageResponse(t *testing.T) {
	got := formatMessageResponse(&messageResponse{Route: "no_session"})
	if got != "[no_session] (no reply)" {
		t.Errorf("Unexpected format: %s", got)
	}

	got = formatMessageResponse(&messageResponse{
		Route:   "game_input",
		Replies: []bot.Reply{{Text: "a"}, {Text: "b"}},
	})
	if got != "[game_input]\na\n---\nb" {
		t.Errorf("Unexpected format: %q", got)
	}
}
