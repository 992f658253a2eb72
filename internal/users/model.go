package users

import "time"

// User is a bot user keyed by the Telegram user id.
type User struct {
	TgUserID          int64      `json:"tgUserId"`
	ChatID            int64      `json:"chatId"`
	Username          string     `json:"username,omitempty"`
	AcceptedRules     bool       `json:"acceptedRules"`
	SubscriptionUntil *time.Time `json:"subscriptionUntil,omitempty"`
	OneTimeFullLeft   int        `json:"oneTimeFullLeft"`
	CoverPacksLeft    int        `json:"coverPacksLeft"`
	HRReviewsLeft     int        `json:"hrReviewsLeft"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// SubscribedAt reports whether the subscription is active at now.
func (u User) SubscribedAt(now time.Time) bool {
	return u.SubscriptionUntil != nil && u.SubscriptionUntil.After(now)
}

// Profile is the identity data refreshed on every contact.
type Profile struct {
	TgUserID int64
	ChatID   int64
	Username string
}
