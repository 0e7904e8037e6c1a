package system

import (
	"context"
	"encoding/json"
	"sync"

	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/session"
	"nextgen-crm/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// WebSocketController upgrades authenticated connections into live view
// sessions. One connection, one session, one event loop.
type WebSocketController struct {
	Access   access.AccessService
	Sessions *session.Manager
	Log      *zap.Logger
}

func NewWebSocketController(accessSvc access.AccessService, sessions *session.Manager, log *zap.Logger) *WebSocketController {
	return &WebSocketController{
		Access:   accessSvc,
		Sessions: sessions,
		Log:      log,
	}
}

// connPusher serializes writes onto the websocket. Session callbacks
// and the loading/error pushes all funnel through here.
type connPusher struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (p *connPusher) Push(ev session.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.WriteJSON(ev)
}

// HandleWebSocket authenticates the connection from the token query
// parameter, resolves the CRM identity, and runs the session until the
// peer disconnects or access is revoked.
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	defer c.Close()

	out := &connPusher{conn: c}

	token := c.Query("token")
	claims, err := utils.ValidateToken(token)
	if err != nil {
		out.Push(session.Event{Type: session.EventSignOut, Reason: "Session expired. Please sign in again."})
		return
	}

	identity, err := h.Access.Resolve(context.Background(), claims.Email)
	if err != nil {
		reason := "Internal Server Error"
		if access.IsAccessError(err) {
			reason = err.Error()
		}
		out.Push(session.Event{Type: session.EventSignOut, Reason: reason})
		return
	}

	h.Log.Info("session opened", zap.String("employee_id", identity.EmployeeID))

	closed := make(chan struct{})
	var once sync.Once
	sess := h.Sessions.NewSession(identity, out, func(string) {
		once.Do(func() { close(closed) })
	})
	sess.Start()
	defer sess.Close()

	out.Push(session.Event{Type: session.EventUser, Data: identity})

	// Read pump. Runs until the peer hangs up or a forced sign-out
	// closes the session from the other side.
	msgs := make(chan session.Request)
	go func() {
		defer close(msgs)
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}
			var req session.Request
			if err := json.Unmarshal(raw, &req); err != nil {
				out.Push(session.Event{Type: session.EventError, Reason: "Malformed message"})
				continue
			}
			msgs <- req
		}
	}()

	for {
		select {
		case <-closed:
			h.Log.Info("session force-closed", zap.String("employee_id", identity.EmployeeID))
			return
		case req, ok := <-msgs:
			if !ok {
				h.Log.Info("session closed", zap.String("employee_id", identity.EmployeeID))
				return
			}
			sess.Dispatch(req)
		}
	}
}
