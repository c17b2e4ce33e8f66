package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/chatgames/bot"
	"github.com/wricardo/mcp-training/chatgames/game/service"
	"github.com/wricardo/mcp-training/chatgames/game/session"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Chat Games Bot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Chat Games Bot - MCP Interface

This is a thin client that proxies all requests to the bot's REST API.
You talk to the bot exactly like a chat user does: every message goes
through send_message and the bot answers with text replies.

GAMES:
- /tictactoe starts Tic-Tac-Toe. Cells are numbered 1-9, left to right, top to bottom. The bot never loses.
- /rps starts Rock-Paper-Scissors, first to 3. Throw rock, paper or scissors (or 1, 2, 3). The bot learns your most frequent throw.
- quit ends the current game. Starting a game replaces the one in progress.

AVAILABLE TOOLS:
- send_message: Send one chat message as a user and get the bot's replies
- get_session: Show a user's active game session
- list_sessions: List all active sessions
- end_session: End a user's session
- session_stats: Active-session count per game
- bot_help: Show the bot's help text`),
	)

	// Register all tools
	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Chat
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "send_message",
		Description: "Send a chat message to the bot as a user and return the bot's replies",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id":      stringProp("Chat user ID"),
				"display_name": stringProp("Name the bot greets the user with (optional)"),
				"text":         stringProp("Message text, e.g. /tictactoe, 5, rock, quit"),
			},
			Required: []string{"user_id", "text"},
		},
	}, c.handleSendMessage)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_help",
		Description: "Show the bot's command help",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleBotHelp)

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"kind": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"tictactoe", "rps"},
					"description": "Only list sessions of this game (optional)",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the active session of a user",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": stringProp("Chat user ID"),
			},
			Required: []string{"user_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_session",
		Description: "End the active session of a user",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": stringProp("Chat user ID"),
			},
			Required: []string{"user_id"},
		},
	}, c.handleEndSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_stats",
		Description: "Get the number of active sessions per game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleSessionStats)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the MCP protocol over stdin/stdout until EOF
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// messageResponse mirrors the body of POST /api/messages
type messageResponse struct {
	Route   string      `json:"route"`
	Replies []bot.Reply `json:"replies"`
}

func (c *Client) sendMessage(ctx context.Context, userID, displayName, text string) (*messageResponse, error) {
	body := map[string]string{
		"user_id":      userID,
		"display_name": displayName,
		"text":         text,
	}
	var resp messageResponse
	if err := c.apiCall(ctx, "POST", "/api/messages", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tool handlers

func (c *Client) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	userID, _ := args["user_id"].(string)
	displayName, _ := args["display_name"].(string)
	text, _ := args["text"].(string)
	if userID == "" || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("user_id and text are required"), nil
	}

	resp, err := c.sendMessage(ctx, userID, displayName, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMessageResponse(resp)), nil
}

func (c *Client) handleBotHelp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := c.sendMessage(ctx, "mcp-help", "", "/help")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMessageResponse(resp)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/sessions"
	if kind, _ := arguments(request)["kind"].(string); kind != "" {
		path += "?kind=" + url.QueryEscape(kind)
	}

	var resp struct {
		Sessions []session.Info `json:"sessions"`
		Count    int            `json:"count"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.Count == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions (%d):\n", resp.Count)
	for _, info := range resp.Sessions {
		b.WriteString("- ")
		b.WriteString(formatSessionInfo(info))
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, _ := arguments(request)["user_id"].(string)
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	var info session.Info
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(userID), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(info)), nil
}

func (c *Client) handleEndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, _ := arguments(request)["user_id"].(string)
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	var resp struct {
		Kind session.Kind `json:"kind"`
	}
	if err := c.apiCall(ctx, "DELETE", "/api/sessions/"+url.PathEscape(userID), nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Ended %s session for %s", resp.Kind.DisplayName(), userID)), nil
}

func (c *Client) handleSessionStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats service.StatsResult
	if err := c.apiCall(ctx, "GET", "/api/stats", nil, &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions: %d\n", stats.ActiveSessions)
	for _, kind := range session.Kinds {
		fmt.Fprintf(&b, "  %s: %d\n", kind.DisplayName(), stats.ByKind[kind.String()])
	}
	fmt.Fprintf(&b, "Average session age: %s\n", (time.Duration(stats.AverageAgeSeconds * float64(time.Second))).Round(time.Second))
	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func formatMessageResponse(resp *messageResponse) string {
	if len(resp.Replies) == 0 {
		return fmt.Sprintf("[%s] (no reply)", resp.Route)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", resp.Route)
	for i, reply := range resp.Replies {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString(reply.Text)
	}
	return b.String()
}

func formatSessionInfo(info session.Info) string {
	return fmt.Sprintf("%s playing %s (session %s, started %s, last active %s)",
		info.UserID,
		info.Kind.DisplayName(),
		info.ID,
		info.CreatedAt.Format(time.RFC3339),
		info.LastActivityAt.Format(time.RFC3339))
}
