// Package mcp exposes the game bot to AI agents over the Model Context Protocol.
//
// The client is a thin proxy: every tool call is translated into a request
// against the bot's REST API, so an agent plays through the same dispatcher
// as chat users do.
//
// MCP Tools:
//   - send_message: Send a chat message as a user and return the replies
//   - bot_help: Show the bot's command help
//   - list_sessions: List active sessions, optionally by game
//   - get_session: Get a user's active session
//   - end_session: End a user's session
//   - session_stats: Active-session count per game
//
// Transport Modes:
//   - Stdio: Client.ServeStdio for local MCP clients
//   - HTTP: GetMCPServer().HandleMessage mounted at /mcp by the serve command
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
