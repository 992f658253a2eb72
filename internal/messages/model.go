package messages

import "time"

// Kinds of audited messages.
const (
	KindCommand  = "command"
	KindText     = "text"
	KindDocument = "document"
	KindCallback = "callback"
)

// Statuses of document intake rows.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Message is one audit log entry.
type Message struct {
	ID        string    `json:"id"`
	MessageID int64     `json:"messageId"`
	ChatID    int64     `json:"chatId"`
	UserID    int64     `json:"userId"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
	Callback  string    `json:"callback,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
