// Package websocket provides the WebSocket chat transport for the game bot.
//
// Architecture:
//
// A central Hub owns every connection, grouped by user ID. Each connection
// has a read goroutine and a write goroutine. The read goroutine hands each
// inbound frame to the Dispatcher and passes the replies to Hub.Deliver; the
// hub's event loop pushes them to every connection of the target user.
//
// Message Protocol:
//
//   - Incoming: {"text": "5", "display_name": "Ana"} or a plain text frame
//   - Outgoing: {"event": "reply", "user_id": "u1", "text": "..."}
//
// Users are identified by the ?user= query parameter when the connection is
// established, see api.Server.
//
// Delivery is best effort. A reply for a user without connections is dropped
// and a client whose send buffer is full is disconnected; nothing is retried.
//
// Usage:
//
//	hub := websocket.NewHub(dispatcher, logger)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("user"), "")
//	})
package websocket
