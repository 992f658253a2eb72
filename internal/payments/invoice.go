// Package payments builds invoices and settles successful payments against user balances.
package payments

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Invoice payload kinds.
const (
	KindSubscription = "sub_1w"
	KindPro          = "BUY_PRO"
	KindHRReview     = "BUY_HR"
	KindCoverPack    = "BUY_COVER"
)

var (
	ErrUnknownPayload = errors.New("unknown invoice payload")
	ErrUserMismatch   = errors.New("invoice payload belongs to another user")
)

// Price is one labeled invoice line in minor currency units.
type Price struct {
	Label  string
	Amount int
}

// Invoice is a payment request sent to a chat.
type Invoice struct {
	ChatID         int64
	Title          string
	Description    string
	Payload        string
	Currency       string
	StartParameter string
	Prices         []Price
}

// Total sums the invoice lines.
func (i Invoice) Total() int {
	total := 0
	for _, p := range i.Prices {
		total += p.Amount
	}
	return total
}

// Catalog holds the tariffs. Prices are in minor currency units.
type Catalog struct {
	Currency          string
	SubscriptionPrice int
	SubscriptionDays  int
	ProPrice          int
	ProDays           int
	HRReviewPrice     int
	CoverPackPrice    int
}

// newNonce is replaced in tests.
var newNonce = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Subscription builds the weekly subscription invoice bound to the payer.
func (c Catalog) Subscription(chatID, userID int64) Invoice {
	return Invoice{
		ChatID:         chatID,
		Title:          "Подписка на 1 неделю",
		Description:    fmt.Sprintf("Доступ ко всем функциям на %d дней.", c.SubscriptionDays),
		Payload:        SubscriptionPayload(userID, newNonce()),
		Currency:       c.Currency,
		StartParameter: "buy-subscription-1w",
		Prices:         []Price{{Label: "1 неделя подписки", Amount: c.SubscriptionPrice}},
	}
}

// Pro builds the PRO invoice.
func (c Catalog) Pro(chatID int64) Invoice {
	return Invoice{
		ChatID:      chatID,
		Title:       "Подписка PRO",
		Description: fmt.Sprintf("Доступ к полным отчётам на %d дней", c.ProDays),
		Payload:     KindPro,
		Currency:    c.Currency,
		Prices:      []Price{{Label: "Оплата", Amount: c.ProPrice}},
	}
}

// HRReview builds the HR review invoice.
func (c Catalog) HRReview(chatID int64) Invoice {
	return Invoice{
		ChatID:      chatID,
		Title:       "Разбор с HR",
		Description: "Живой фидбек от HR. Мы свяжемся в чате.",
		Payload:     KindHRReview,
		Currency:    c.Currency,
		Prices:      []Price{{Label: "Оплата", Amount: c.HRReviewPrice}},
	}
}

// CoverPack builds the cover letter pack invoice.
func (c Catalog) CoverPack(chatID int64) Invoice {
	return Invoice{
		ChatID:      chatID,
		Title:       "Пакет сопроводительных писем",
		Description: "Генерация сопроводительных под вакансии.",
		Payload:     KindCoverPack,
		Currency:    c.Currency,
		Prices:      []Price{{Label: "Оплата", Amount: c.CoverPackPrice}},
	}
}

// Payload is a parsed invoice payload.
type Payload struct {
	Kind   string
	UserID int64
	Nonce  string
}

// SubscriptionPayload formats sub_1w:<uid>:<nonce>.
func SubscriptionPayload(userID int64, nonce string) string {
	return fmt.Sprintf("%s:%d:%s", KindSubscription, userID, nonce)
}

// ParsePayload recognizes subscription and legacy payloads.
func ParsePayload(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case KindPro, KindHRReview, KindCoverPack:
		return Payload{Kind: raw}, nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 3 || parts[0] != KindSubscription || parts[2] == "" {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownPayload, raw)
	}
	uid, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownPayload, raw)
	}
	return Payload{Kind: KindSubscription, UserID: uid, Nonce: parts[2]}, nil
}

// FormatAmount renders minor units as 299.00.
func FormatAmount(minor int) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
