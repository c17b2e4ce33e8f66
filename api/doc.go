// Package api provides the HTTP surface of the game bot.
//
// Endpoints:
//
// Chat:
//   - POST /api/messages - Dispatch one inbound message and return the replies
//   - GET /ws?user={id}&name={display name} - WebSocket chat connection
//
// Sessions:
//   - GET /api/sessions - List active sessions (optional ?kind=tictactoe|rps)
//   - GET /api/sessions/{user} - Get a user's active session
//   - DELETE /api/sessions/{user} - End a user's session
//
// Diagnostics:
//   - GET /api/stats - Active-session count and per-kind breakdown
//   - GET /health - Liveness check
//
// Request/Response Format:
//
// All endpoints accept and return JSON. A chat message is posted as:
//
//	{"user_id": "u1", "display_name": "Ana", "text": "/tictactoe"}
//
// and answered with the routing outcome and the replies to deliver:
//
//	{"route": "command", "replies": [{"user_id": "u1", "text": "..."}]}
//
// Replies are also pushed to the user's WebSocket connections when a hub is
// configured.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message",
//	  "code": 400
//	}
package api
