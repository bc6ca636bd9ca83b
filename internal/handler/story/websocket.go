package story

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// WebSocketHandler serves latest-story fetches over a websocket.
type WebSocketHandler struct {
	svc      StoryService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(svc StoryService, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/latest", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
}

type outgoingMessage struct {
	Type      string  `json:"type"`
	Data      any     `json:"data,omitempty"`
	Notice    *Notice `json:"notice,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接，每条 load 消息触发一次读取
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	go h.pingLoop(ctx, conn)

	if banner := connectionBanner(h.svc.ConnectionError()); banner != nil {
		h.send(conn, outgoingMessage{Type: "connected", Notice: banner})
	} else {
		h.send(conn, outgoingMessage{Type: "connected"})
	}

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket read error", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		h.handleMessage(ctx, conn, msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, msg inboundMessage) {
	switch msg.Type {
	case "load":
		latest, err := h.svc.FetchLatest(ctx)
		if err != nil {
			notice := fetchErrorNotice(err, h.svc.Config().OutputTable)
			h.send(conn, outgoingMessage{Type: "error", Notice: &notice})
			return
		}
		notice := latestNotice(latest.Kind)
		h.send(conn, outgoingMessage{Type: "latest", Data: latest, Notice: &notice})
	case "ping":
		h.send(conn, outgoingMessage{Type: "pong"})
	default:
		h.send(conn, outgoingMessage{
			Type:   "error",
			Notice: &Notice{Level: LevelError, Message: "unknown message type: " + msg.Type},
		})
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write failed", zap.String("type", msg.Type), zap.Error(err))
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
