package message

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vendora/vendora-api/internal/pkg/errorhandler"
	"github.com/vendora/vendora-api/internal/pkg/response"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

type Handler struct {
	service  *Service
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates the inbox handler. An empty allowedOrigins accepts any origin.
func NewHandler(service *Service, hub *Hub, allowedOrigins []string) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

// List handles GET /messages?unread=true
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	q := r.URL.Query()
	unreadOnly, _ := strconv.ParseBool(q.Get("unread"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	msgs, err := h.service.List(r.Context(), sess.UserID, unreadOnly, limit, offset)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "LIST_FAILED", "Failed to list messages", err)
		return
	}

	items := make([]Response, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, ResponseFrom(m))
	}
	response.OK(w, items)
}

// Unread handles GET /messages/unread
func (h *Handler) Unread(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.UnreadCount(r.Context(), session.FromContext(r.Context()).UserID)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "COUNT_FAILED", "Failed to count messages", err)
		return
	}
	response.OK(w, UnreadResponse{Unread: n})
}

// MarkRead handles POST /messages/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid message ID")
		return
	}

	err = h.service.MarkRead(r.Context(), session.FromContext(r.Context()).UserID, id)
	switch {
	case errors.Is(err, ErrMessageNotFound):
		response.NotFound(w, "Message not found")
	case err != nil:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "MARK_FAILED", "Failed to mark message", err)
	default:
		response.NoContent(w)
	}
}

// MarkAllRead handles POST /messages/read-all
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAllRead(r.Context(), session.FromContext(r.Context()).UserID)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "MARK_FAILED", "Failed to mark messages", err)
		return
	}
	response.OK(w, MarkedResponse{Marked: n})
}

// WebSocket handles GET /ws
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID := session.FromContext(r.Context()).UserID
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &Connection{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
	}
	h.hub.Register(client)

	go h.wsReader(client)
	go h.wsWriter(client)
}

// wsReader drains client frames so pongs and close frames are processed.
func (h *Handler) wsReader(client *Connection) {
	defer func() {
		h.hub.Unregister(client)
		_ = client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", client.UserID.String()).Msg("WebSocket read error")
			}
			return
		}
	}
}

func (h *Handler) wsWriter(client *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
