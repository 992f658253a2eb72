package conversation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"resume-bot/internal/analyses"
	"resume-bot/internal/heuristic"
	"resume-bot/internal/shared/metrics"
)

// generateReport finishes the dialogue: the session is cleared, the full report is
// generated, stored and delivered, and only then is a credit consumed.
func (c *Controller) generateReport(ctx context.Context, t *turn, vacancy, vacancyRef string) error {
	resume := *t.session.Resume
	if err := c.sessions.Clear(ctx, t.ev.UserID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	t.session = idleSession()

	if !c.guard.MayGenerateFull(t.user) {
		return c.paywall(ctx, t, resume, []string{vacancyRef})
	}

	metrics.IncRequest(metrics.RequestAnalysis)
	scored := heuristic.Score(resume.Text)
	c.reply(ctx, t.ev.ChatID, textAnalyzing)

	detail, err := c.feedback.Generate(ctx, resume.Text, vacancy)
	if err != nil {
		c.log.Error("conversation.report.generation_failed",
			zap.Int64("user_id", t.ev.UserID),
			zap.String("storage_ref", resume.Ref),
			zap.Error(err),
		)
		c.reply(ctx, t.ev.ChatID, textAnalysisFailed)
		return nil
	}

	record := analyses.Record{
		ID:         c.newID(),
		UserID:     t.ev.UserID,
		SourceRefs: sourceRefs(resume.Ref, vacancyRef),
		Details:    []analyses.Detail{detail, scored.Detail()},
		Mode:       analyses.ModeFull,
		CreatedAt:  c.now().UTC(),
	}
	c.storeRecord(ctx, record)

	sections := reportSections(detail)
	if !detail.OK {
		sections = rawSections(detail)
	}
	for _, section := range sections {
		if err := c.sendLong(ctx, t.ev.ChatID, section, SendOptions{Markdown: true}); err != nil {
			metrics.IncFailure(metrics.StageDelivery)
			c.log.Error("conversation.report.delivery_failed", zap.Int64("user_id", t.ev.UserID), zap.Error(err))
			return nil
		}
	}

	if err := c.guard.ConsumeOnSuccess(ctx, t.user); err != nil {
		metrics.IncFailure(metrics.StageStorage)
		c.log.Error("conversation.entitlement.consume_failed", zap.Int64("user_id", t.ev.UserID), zap.Error(err))
	}
	c.log.Info("conversation.report.delivered",
		zap.Int64("user_id", t.ev.UserID),
		zap.String("analysis_id", record.ID),
		zap.Bool("ok", detail.OK),
		zap.Int("score", detail.Score),
		zap.Int("heuristic_score", scored.Score),
		zap.Bool("with_vacancy", vacancy != ""),
	)

	if !c.guard.IsSubscribed(t.user) {
		c.reply(ctx, t.ev.ChatID, textDemoOver)
	}
	return nil
}

// paywall answers a user without entitlement with the heuristic score only.
func (c *Controller) paywall(ctx context.Context, t *turn, resume Document, extraRefs []string) error {
	scored := heuristic.Score(resume.Text)
	record := analyses.Record{
		ID:         c.newID(),
		UserID:     t.ev.UserID,
		SourceRefs: sourceRefs(append([]string{resume.Ref}, extraRefs...)...),
		Details:    []analyses.Detail{scored.Detail()},
		Mode:       analyses.ModeScoreOnly,
		CreatedAt:  c.now().UTC(),
	}
	c.storeRecord(ctx, record)
	c.log.Info("conversation.report.paywalled", zap.Int64("user_id", t.ev.UserID), zap.Int("score", scored.Score))
	c.reply(ctx, t.ev.ChatID, fmt.Sprintf(textPaywall, scored.Score))
	return nil
}

func (c *Controller) storeRecord(ctx context.Context, record analyses.Record) {
	if err := c.analyses.Create(ctx, record); err != nil {
		metrics.IncFailure(metrics.StageStorage)
		c.log.Error("conversation.analysis.store_failed",
			zap.Int64("user_id", record.UserID),
			zap.String("analysis_id", record.ID),
			zap.Error(err),
		)
	}
}

func sourceRefs(refs ...string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref != "" {
			out = append(out, ref)
		}
	}
	return out
}
