package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"resume-bot/internal/analyses"
	"resume-bot/internal/payments"
	"resume-bot/internal/review"
	"resume-bot/internal/shared/metrics"
)

func (c *Controller) onStart(ctx context.Context, t *turn) error {
	if err := c.sessions.Clear(ctx, t.ev.UserID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if t.user.AcceptedRules {
		c.reply(ctx, t.ev.ChatID, textWelcomeBack)
		return nil
	}
	c.reply(ctx, t.ev.ChatID, textWelcome)
	return c.sendTermsPrompt(ctx, t.ev.ChatID)
}

func (c *Controller) sendTermsPrompt(ctx context.Context, chatID int64) error {
	parts := []string{textTermsIntro}
	if c.opts.UserAgreementURL != "" {
		parts = append(parts, fmt.Sprintf(textTermsLink, c.opts.UserAgreementURL))
	}
	if c.opts.PrivacyURL != "" {
		parts = append(parts, fmt.Sprintf(textPrivacy, c.opts.PrivacyURL))
	}
	return c.send(ctx, chatID, strings.Join(parts, "\n\n"), SendOptions{Buttons: []Button{acceptButton()}})
}

func (c *Controller) onAcceptTerms(ctx context.Context, t *turn) error {
	if t.user.AcceptedRules {
		c.answer(ctx, t.ev.Callback.ID, textAlreadyAccepted)
		return c.sessions.Clear(ctx, t.ev.UserID)
	}
	if err := c.users.AcceptTerms(ctx, t.ev.UserID); err != nil {
		return fmt.Errorf("accept terms: %w", err)
	}
	t.user.AcceptedRules = true
	c.answer(ctx, t.ev.Callback.ID, textAccepted)

	if err := c.sessions.Save(ctx, t.ev.UserID, Session{State: StateAwaitingResume, UpdatedAt: c.now().UTC()}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.reply(ctx, t.ev.ChatID, textDemoIntro)
	return nil
}

func (c *Controller) onAnalysis(ctx context.Context, t *turn) error {
	if !t.user.AcceptedRules {
		if err := c.sessions.Clear(ctx, t.ev.UserID); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return c.sendTermsPrompt(ctx, t.ev.ChatID)
	}

	if err := c.sessions.Save(ctx, t.ev.UserID, Session{State: StateAwaitingResume, UpdatedAt: c.now().UTC()}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if !c.guard.MayGenerateFull(t.user) {
		c.reply(ctx, t.ev.ChatID, textNoEntitlement)
		return nil
	}
	c.reply(ctx, t.ev.ChatID, textSendResume)
	return nil
}

func (c *Controller) onHelp(ctx context.Context, t *turn) error {
	c.reply(ctx, t.ev.ChatID, textHelp)
	return nil
}

func (c *Controller) onPricing(ctx context.Context, t *turn) error {
	cat := c.opts.Catalog
	c.reply(ctx, t.ev.ChatID, fmt.Sprintf(textPricing,
		cat.SubscriptionDays, payments.FormatAmount(cat.SubscriptionPrice), cat.Currency,
		cat.ProDays, payments.FormatAmount(cat.ProPrice), cat.Currency,
		payments.FormatAmount(cat.HRReviewPrice), cat.Currency,
		payments.FormatAmount(cat.CoverPackPrice), cat.Currency,
	))
	return nil
}

// paymentsBlocked replies and reports true when the user may not buy anything yet.
func (c *Controller) paymentsBlocked(ctx context.Context, t *turn) bool {
	switch {
	case !t.user.AcceptedRules:
		c.reply(ctx, t.ev.ChatID, textUseStart)
		return true
	case !c.opts.PaymentsEnabled:
		c.reply(ctx, t.ev.ChatID, textPaymentsDisabled)
		return true
	}
	return false
}

func (c *Controller) onSubscription(ctx context.Context, t *turn) error {
	if c.paymentsBlocked(ctx, t) {
		return nil
	}
	price := payments.FormatAmount(c.opts.Catalog.SubscriptionPrice)
	text := fmt.Sprintf(textSubscriptionOffer, c.opts.Catalog.SubscriptionDays, price)
	return c.send(ctx, t.ev.ChatID, text, SendOptions{Buttons: []Button{{Text: fmt.Sprintf(buttonPay, price), Data: CallbackPay}}})
}

func (c *Controller) onPayCallback(ctx context.Context, t *turn) error {
	c.answer(ctx, t.ev.Callback.ID, "")
	if c.paymentsBlocked(ctx, t) {
		return nil
	}
	return c.sendInvoice(ctx, t, c.opts.Catalog.Subscription(t.ev.ChatID, t.ev.UserID))
}

func (c *Controller) onBuy(kind string) handler {
	return func(ctx context.Context, t *turn) error {
		if c.paymentsBlocked(ctx, t) {
			return nil
		}
		cat := c.opts.Catalog
		var inv payments.Invoice
		switch kind {
		case payments.KindPro:
			inv = cat.Pro(t.ev.ChatID)
		case payments.KindHRReview:
			inv = cat.HRReview(t.ev.ChatID)
		default:
			inv = cat.CoverPack(t.ev.ChatID)
		}
		return c.sendInvoice(ctx, t, inv)
	}
}

func (c *Controller) sendInvoice(ctx context.Context, t *turn, inv payments.Invoice) error {
	if err := c.messenger.SendInvoice(ctx, inv); err != nil {
		metrics.IncFailure(metrics.StagePayment)
		c.log.Error("conversation.invoice.failed",
			zap.Int64("user_id", t.ev.UserID),
			zap.String("payload", inv.Payload),
			zap.Error(err),
		)
		c.reply(ctx, t.ev.ChatID, textInvoiceFailed)
		return nil
	}
	c.log.Info("conversation.invoice.sent", zap.Int64("user_id", t.ev.UserID), zap.String("payload", inv.Payload))
	return nil
}

// onPreCheckout approves every checkout; the goods are digital.
func (c *Controller) onPreCheckout(ctx context.Context, ev Event) error {
	if ev.PreCheckout == nil {
		return nil
	}
	if err := c.messenger.AnswerPreCheckout(ctx, ev.PreCheckout.ID, true, ""); err != nil {
		metrics.IncFailure(metrics.StagePayment)
		return fmt.Errorf("answer pre-checkout: %w", err)
	}
	return nil
}

func (c *Controller) onPayment(ctx context.Context, t *turn) error {
	p := t.ev.Payment
	if p == nil {
		return nil
	}
	metrics.IncRequest(metrics.RequestPayment)

	res, err := c.settler.Settle(ctx, payments.Payment{
		UserID:   t.ev.UserID,
		Payload:  p.Payload,
		Currency: p.Currency,
		Amount:   p.Amount,
		ChargeID: p.ChargeID,
	})
	if err != nil {
		metrics.IncFailure(metrics.StagePayment)
		c.log.Error("conversation.payment.settle_failed",
			zap.Int64("user_id", t.ev.UserID),
			zap.String("payload", p.Payload),
			zap.String("charge_id", p.ChargeID),
			zap.Error(err),
		)
		c.reply(ctx, t.ev.ChatID, textPaymentFailed)
		return nil
	}

	switch res.Kind {
	case payments.KindSubscription:
		c.reply(ctx, t.ev.ChatID, fmt.Sprintf(textPaidSubscription, payments.FormatAmount(p.Amount), p.Currency, res.Until.Format("02.01.2006")))
	case payments.KindPro:
		c.reply(ctx, t.ev.ChatID, fmt.Sprintf(textPaidPro, res.Until.Format("02.01.2006")))
	case payments.KindHRReview:
		c.reply(ctx, t.ev.ChatID, textPaidHR)
	case payments.KindCoverPack:
		c.reply(ctx, t.ev.ChatID, textPaidCover)
	}
	return nil
}

func (c *Controller) onCover(ctx context.Context, t *turn) error {
	if !t.user.AcceptedRules {
		c.reply(ctx, t.ev.ChatID, textUseStart)
		return nil
	}
	subscribed := c.guard.IsSubscribed(t.user)
	if !subscribed && t.user.CoverPacksLeft <= 0 {
		c.reply(ctx, t.ev.ChatID, textCoverNeedsPack)
		return nil
	}

	latest, err := c.analyses.Latest(ctx, t.ev.UserID)
	if errors.Is(err, analyses.ErrNotFound) {
		c.reply(ctx, t.ev.ChatID, textCoverNeedsResume)
		return nil
	}
	if err != nil {
		return fmt.Errorf("latest analysis: %w", err)
	}
	vacancy := strings.TrimSpace(t.ev.Args)
	if vacancy == "" {
		c.reply(ctx, t.ev.ChatID, textCoverUsage)
		return nil
	}

	metrics.IncRequest(metrics.RequestCover)
	detail, _ := latest.Primary()
	letter, err := c.cover.Write(ctx, detail, vacancy)
	if errors.Is(err, review.ErrEmptyLetter) {
		c.reply(ctx, t.ev.ChatID, textCoverEmpty)
		return nil
	}
	if err != nil {
		c.log.Error("conversation.cover.failed", zap.Int64("user_id", t.ev.UserID), zap.Error(err))
		c.reply(ctx, t.ev.ChatID, textCoverFailed)
		return nil
	}

	if err := c.sendLong(ctx, t.ev.ChatID, letter, SendOptions{}); err != nil {
		metrics.IncFailure(metrics.StageDelivery)
		c.log.Error("conversation.cover.delivery_failed", zap.Int64("user_id", t.ev.UserID), zap.Error(err))
		return nil
	}
	if !subscribed {
		if _, err := c.users.ConsumeCoverPack(ctx, t.ev.UserID); err != nil {
			metrics.IncFailure(metrics.StageStorage)
			c.log.Error("conversation.cover.consume_failed", zap.Int64("user_id", t.ev.UserID), zap.Error(err))
		}
	}
	return nil
}
