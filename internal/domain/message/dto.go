package message

import "time"

type Response struct {
	ID        string  `json:"id"`
	Kind      Kind    `json:"kind"`
	SenderID  *string `json:"sender_id,omitempty"`
	RequestID *string `json:"request_id,omitempty"`
	Body      string  `json:"body"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
}

func ResponseFrom(m *Message) Response {
	resp := Response{
		ID:        m.ID.String(),
		Kind:      m.Kind,
		Body:      m.Body,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.SenderID.Valid {
		s := m.SenderID.UUID.String()
		resp.SenderID = &s
	}
	if m.RequestID.Valid {
		s := m.RequestID.UUID.String()
		resp.RequestID = &s
	}
	return resp
}

type UnreadResponse struct {
	Unread int `json:"unread"`
}

type MarkedResponse struct {
	Marked int64 `json:"marked"`
}
