package conversation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"resume-bot/internal/analyses"
	"resume-bot/internal/extract"
	"resume-bot/internal/messages"
	"resume-bot/internal/review"
	"resume-bot/internal/shared/metrics"
	"resume-bot/internal/shared/storage/object"
)

func (c *Controller) onResumeDocument(ctx context.Context, t *turn) error {
	doc, ok, err := c.intake(ctx, t, review.KindResume)
	if err != nil || !ok {
		return err
	}

	if !c.guard.MayGenerateFull(t.user) {
		if err := c.sessions.Clear(ctx, t.ev.UserID); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return c.paywall(ctx, t, doc, nil)
	}

	t.session = Session{State: StateAwaitingVacancy, Resume: &doc, UpdatedAt: c.now().UTC()}
	if err := c.sessions.Save(ctx, t.ev.UserID, t.session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return c.send(ctx, t.ev.ChatID, textAskVacancy, SendOptions{Buttons: []Button{skipButton()}})
}

func (c *Controller) onVacancyDocument(ctx context.Context, t *turn) error {
	if t.session.Resume == nil {
		return c.lostState(ctx, t)
	}
	doc, ok, err := c.intake(ctx, t, review.KindVacancy)
	if err != nil || !ok {
		return err
	}
	return c.generateReport(ctx, t, doc.Text, doc.Ref)
}

func (c *Controller) onVacancyText(ctx context.Context, t *turn) error {
	if t.session.Resume == nil {
		return c.lostState(ctx, t)
	}
	return c.generateReport(ctx, t, t.ev.Text, "")
}

func (c *Controller) onSkipVacancy(ctx context.Context, t *turn) error {
	if t.ev.Callback == nil || t.ev.Callback.Data != CallbackSkipVacancy {
		c.answer(ctx, callbackID(t.ev), textStaleButton)
		return nil
	}
	if t.session.Resume == nil {
		return c.lostState(ctx, t)
	}
	c.answer(ctx, t.ev.Callback.ID, "")
	c.reply(ctx, t.ev.ChatID, textSkipped)
	return c.generateReport(ctx, t, "", "")
}

// intake downloads, stores, extracts and classifies an uploaded document. A false
// result means the user has already been told what went wrong and the state stays.
func (c *Controller) intake(ctx context.Context, t *turn, kind review.Kind) (Document, bool, error) {
	ref := t.ev.Document
	if ref == nil {
		t.status = messages.StatusError
		c.reply(ctx, t.ev.ChatID, textWaitResume)
		return Document{}, false, nil
	}
	if c.tooLarge(ref.Size) {
		t.status = messages.StatusError
		c.reply(ctx, t.ev.ChatID, fmt.Sprintf(textTooLarge, c.opts.MaxDocumentBytes>>20))
		return Document{}, false, nil
	}
	if !extract.Supported(ref.MimeType, ref.FileName) {
		t.status = messages.StatusError
		c.reply(ctx, t.ev.ChatID, textUnsupported)
		return Document{}, false, nil
	}

	c.reply(ctx, t.ev.ChatID, textReading)
	data, err := c.messenger.FetchDocument(ctx, ref.FileID)
	if err != nil {
		t.status = messages.StatusError
		metrics.IncFailure(metrics.StageExtract)
		c.log.Error("conversation.document.download_failed", zap.Int64("user_id", t.ev.UserID), zap.Error(err))
		c.reply(ctx, t.ev.ChatID, textExtractFailed)
		return Document{}, false, nil
	}
	if c.tooLarge(int64(len(data))) {
		t.status = messages.StatusError
		c.reply(ctx, t.ev.ChatID, fmt.Sprintf(textTooLarge, c.opts.MaxDocumentBytes>>20))
		return Document{}, false, nil
	}

	key, err := object.SaveUpload(ctx, c.uploads, t.ev.UserID, ref.FileName, ref.MimeType, data, c.now())
	if err != nil {
		t.status = messages.StatusError
		metrics.IncFailure(metrics.StageStorage)
		return Document{}, false, err
	}

	text, err := c.extractor.ExtractText(ctx, data, ref.MimeType, ref.FileName)
	if err != nil {
		t.status = messages.StatusError
		metrics.IncFailure(metrics.StageExtract)
		c.log.Warn("conversation.document.extract_failed",
			zap.Int64("user_id", t.ev.UserID),
			zap.String("file_name", ref.FileName),
			zap.String("storage_ref", key),
			zap.Error(err),
		)
		if errors.Is(err, extract.ErrUnsupported) {
			c.reply(ctx, t.ev.ChatID, textUnsupported)
		} else {
			c.reply(ctx, t.ev.ChatID, textExtractFailed)
		}
		return Document{}, false, nil
	}
	t.status = messages.StatusOK

	c.reply(ctx, t.ev.ChatID, textChecking)
	verdict := c.classifier.Classify(ctx, kind, text)
	if !verdict.Valid {
		c.rejectDocument(ctx, t, kind, key, verdict)
		return Document{}, false, nil
	}

	return Document{Text: text, Ref: key, FileName: ref.FileName}, true, nil
}

func (c *Controller) rejectDocument(ctx context.Context, t *turn, kind review.Kind, key string, verdict review.Verdict) {
	check := analyses.FileCheck{
		ID:         c.newID(),
		UserID:     t.ev.UserID,
		StorageRef: key,
		Kind:       string(kind),
		Valid:      verdict.Valid,
		Reason:     verdict.Reason,
		CreatedAt:  c.now().UTC(),
	}
	if err := c.analyses.RecordFileCheck(ctx, check); err != nil {
		metrics.IncFailure(metrics.StageStorage)
		c.log.Error("conversation.file_check.failed", zap.Int64("user_id", t.ev.UserID), zap.Error(err))
	}
	c.log.Info("conversation.document.rejected",
		zap.Int64("user_id", t.ev.UserID),
		zap.String("kind", string(kind)),
		zap.Bool("fallback", verdict.Fallback),
		zap.String("reason", verdict.Reason),
	)

	text, opts := textNotResume, SendOptions{}
	if kind == review.KindVacancy {
		text, opts = textNotVacancy, SendOptions{Buttons: []Button{skipButton()}}
	}
	if verdict.Reason != "" {
		text += fmt.Sprintf(textReason, verdict.Reason)
	}
	if err := c.messenger.SendText(ctx, t.ev.ChatID, text, opts); err != nil {
		c.log.Warn("conversation.reply.failed", zap.Int64("chat_id", t.ev.ChatID), zap.Error(err))
	}
}

func (c *Controller) tooLarge(size int64) bool {
	return c.opts.MaxDocumentBytes > 0 && size > c.opts.MaxDocumentBytes
}

func callbackID(ev Event) string {
	if ev.Callback == nil {
		return ""
	}
	return ev.Callback.ID
}
