package telegram

import (
	"strings"

	"resume-bot/internal/conversation"
)

// ToEvent normalizes an update. Updates the bot does not react to return false.
func ToEvent(u Update) (conversation.Event, bool) {
	switch {
	case u.PreCheckoutQuery != nil:
		q := u.PreCheckoutQuery
		return conversation.Event{
			Kind:     conversation.EventPreCheckout,
			UserID:   q.From.ID,
			ChatID:   q.From.ID,
			Username: q.From.Username,
			PreCheckout: &conversation.PreCheckout{
				ID:       q.ID,
				Payload:  q.InvoicePayload,
				Currency: q.Currency,
				Amount:   q.TotalAmount,
			},
		}, true
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		ev := conversation.Event{
			Kind:     conversation.EventCallback,
			UserID:   q.From.ID,
			ChatID:   q.From.ID,
			Username: q.From.Username,
			Callback: &conversation.CallbackQuery{ID: q.ID, Data: q.Data},
		}
		if q.Message != nil {
			ev.ChatID = q.Message.Chat.ID
			ev.MessageID = q.Message.MessageID
		}
		return ev, true
	case u.Message != nil:
		return messageEvent(u.Message)
	}
	return conversation.Event{}, false
}

func messageEvent(m *Message) (conversation.Event, bool) {
	if m.From == nil || m.From.IsBot {
		return conversation.Event{}, false
	}
	ev := conversation.Event{
		UserID:    m.From.ID,
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Username:  m.From.Username,
	}

	switch {
	case m.SuccessfulPayment != nil:
		p := m.SuccessfulPayment
		ev.Kind = conversation.EventPayment
		ev.Payment = &conversation.SuccessfulPayment{
			Payload:  p.InvoicePayload,
			Currency: p.Currency,
			Amount:   p.TotalAmount,
			ChargeID: chargeID(p),
		}
	case m.Document != nil:
		ev.Kind = conversation.EventDocument
		ev.Text = m.Caption
		ev.Document = &conversation.DocumentRef{
			FileID:   m.Document.FileID,
			FileName: m.Document.FileName,
			MimeType: m.Document.MimeType,
			Size:     m.Document.FileSize,
		}
	case strings.HasPrefix(m.Text, "/"):
		ev.Kind = conversation.EventCommand
		ev.Text = m.Text
		ev.Command, ev.Args = splitCommand(m.Text)
	case strings.TrimSpace(m.Text) != "":
		ev.Kind = conversation.EventText
		ev.Text = m.Text
	default:
		return conversation.Event{}, false
	}
	return ev, true
}

// splitCommand turns "/cover@bot some text" into ("cover", "some text"). The command
// ends at the first space or line break; the bot mention is stripped from it after.
func splitCommand(text string) (string, string) {
	head, rest := strings.TrimPrefix(text, "/"), ""
	if end := strings.IndexAny(head, " \t\n"); end >= 0 {
		head, rest = head[:end], head[end+1:]
	}
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	return strings.ToLower(head), strings.TrimSpace(rest)
}

func chargeID(p *SuccessfulPayment) string {
	if p.ProviderPaymentChargeID != "" {
		return p.ProviderPaymentChargeID
	}
	return p.TelegramPaymentChargeID
}
