package conversation

import (
	"context"

	"resume-bot/internal/payments"
)

// EventKind classifies incoming updates for the transition table.
type EventKind string

const (
	EventCommand     EventKind = "command"
	EventDocument    EventKind = "document"
	EventText        EventKind = "text"
	EventCallback    EventKind = "callback"
	EventPreCheckout EventKind = "pre_checkout"
	EventPayment     EventKind = "payment"
)

// DocumentRef points at a file that still lives on the chat platform.
type DocumentRef struct {
	FileID   string
	FileName string
	MimeType string
	Size     int64
}

// CallbackQuery is an inline button press.
type CallbackQuery struct {
	ID   string
	Data string
}

// PreCheckout is the platform asking whether an invoice may be charged.
type PreCheckout struct {
	ID       string
	Payload  string
	Currency string
	Amount   int
}

// SuccessfulPayment is a completed charge.
type SuccessfulPayment struct {
	Payload  string
	Currency string
	Amount   int
	ChargeID string
}

// Event is one platform update normalized for the controller.
type Event struct {
	Kind      EventKind
	UserID    int64
	ChatID    int64
	MessageID int64
	Username  string

	// Command is the command name without the slash; Args is the rest of the line.
	Command string
	Args    string
	Text    string

	Document    *DocumentRef
	Callback    *CallbackQuery
	PreCheckout *PreCheckout
	Payment     *SuccessfulPayment
}

// Button is an inline keyboard button. Exactly one of Data and URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// SendOptions control message formatting.
type SendOptions struct {
	// Markdown sends the text with MarkdownV2 parse mode; the caller escapes it.
	Markdown bool
	Buttons  []Button
}

// Messenger is the outbound side of the chat platform.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, opts SendOptions) error
	FetchDocument(ctx context.Context, fileID string) ([]byte, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
	SendInvoice(ctx context.Context, invoice payments.Invoice) error
	AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errorMessage string) error
}
