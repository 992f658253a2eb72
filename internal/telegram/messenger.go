package telegram

import (
	"context"
	"errors"
	"fmt"

	"resume-bot/internal/conversation"
	"resume-bot/internal/payments"
)

const parseModeMarkdown = "MarkdownV2"

// ErrPaymentsDisabled is returned when an invoice is requested without a provider token.
var ErrPaymentsDisabled = errors.New("payments provider token not configured")

// Messenger adapts the Client to conversation.Messenger.
type Messenger struct {
	client        *Client
	providerToken string
}

// NewMessenger constructs a Messenger. An empty provider token disables invoices.
func NewMessenger(client *Client, providerToken string) *Messenger {
	return &Messenger{client: client, providerToken: providerToken}
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, text string, opts conversation.SendOptions) error {
	parseMode := ""
	if opts.Markdown {
		parseMode = parseModeMarkdown
	}
	return m.client.SendMessage(ctx, chatID, text, parseMode, keyboard(opts.Buttons))
}

func (m *Messenger) FetchDocument(ctx context.Context, fileID string) ([]byte, error) {
	f, err := m.client.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return m.client.DownloadFile(ctx, f.FilePath)
}

func (m *Messenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return m.client.AnswerCallbackQuery(ctx, callbackID, text)
}

func (m *Messenger) SendInvoice(ctx context.Context, inv payments.Invoice) error {
	if m.providerToken == "" {
		return ErrPaymentsDisabled
	}
	prices := make([]LabeledPrice, 0, len(inv.Prices))
	for _, p := range inv.Prices {
		prices = append(prices, LabeledPrice{Label: p.Label, Amount: p.Amount})
	}
	if len(prices) == 0 {
		return fmt.Errorf("invoice %s has no prices", inv.Payload)
	}
	return m.client.sendInvoice(ctx, sendInvoiceParams{
		ChatID:         inv.ChatID,
		Title:          inv.Title,
		Description:    inv.Description,
		Payload:        inv.Payload,
		ProviderToken:  m.providerToken,
		Currency:       inv.Currency,
		Prices:         prices,
		StartParameter: inv.StartParameter,
	})
}

func (m *Messenger) AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errorMessage string) error {
	return m.client.AnswerPreCheckoutQuery(ctx, queryID, ok, errorMessage)
}

// keyboard puts each button on its own row.
func keyboard(buttons []conversation.Button) *InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineKeyboardButton{{Text: b.Text, CallbackData: b.Data, URL: b.URL}})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

var _ conversation.Messenger = (*Messenger)(nil)
