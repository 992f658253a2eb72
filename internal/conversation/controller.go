// Package conversation drives the analysis dialogue: it turns platform events into
// state transitions, calls the review pipeline and talks back through a Messenger.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resume-bot/internal/analyses"
	"resume-bot/internal/entitlement"
	"resume-bot/internal/messages"
	"resume-bot/internal/payments"
	"resume-bot/internal/review"
	"resume-bot/internal/shared/storage/object"
	"resume-bot/internal/shared/telemetry"
	"resume-bot/internal/users"
)

// TextExtractor turns uploaded bytes into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType, fileName string) (string, error)
}

// DocumentClassifier checks that text is of the expected kind.
type DocumentClassifier interface {
	Classify(ctx context.Context, kind review.Kind, text string) review.Verdict
}

// ReportGenerator produces the full report.
type ReportGenerator interface {
	Generate(ctx context.Context, resume, vacancy string) (analyses.Detail, error)
}

// LetterWriter produces cover letters.
type LetterWriter interface {
	Write(ctx context.Context, detail analyses.Detail, vacancy string) (string, error)
}

// PaymentSettler applies successful payments.
type PaymentSettler interface {
	Settle(ctx context.Context, p payments.Payment) (payments.Settlement, error)
}

// Options are the user-facing settings of the dialogue.
type Options struct {
	FreeOneTimeFull  int
	MaxDocumentBytes int64
	UserAgreementURL string
	PrivacyURL       string
	PaymentsEnabled  bool
	Catalog          payments.Catalog
	Concurrency      int
}

// Deps are the collaborators of the controller.
type Deps struct {
	Users      users.Repo
	Messages   messages.Repo
	Analyses   analyses.Repo
	Sessions   Store
	Uploads    object.ObjectStore
	Extractor  TextExtractor
	Classifier DocumentClassifier
	Feedback   ReportGenerator
	Cover      LetterWriter
	Guard      *entitlement.Guard
	Settler    PaymentSettler
	Messenger  Messenger
	Log        *zap.Logger
}

// turn is the context of one event being handled.
type turn struct {
	ev      Event
	user    users.User
	session Session
	// status is the intake outcome recorded on the document audit row.
	status string
}

type handler func(ctx context.Context, t *turn) error

type transitionKey struct {
	state State
	kind  EventKind
}

// Controller is the conversation state machine.
type Controller struct {
	users      users.Repo
	audit      messages.Repo
	analyses   analyses.Repo
	sessions   Store
	uploads    object.ObjectStore
	extractor  TextExtractor
	classifier DocumentClassifier
	feedback   ReportGenerator
	cover      LetterWriter
	guard      *entitlement.Guard
	settler    PaymentSettler
	messenger  Messenger
	log        *zap.Logger
	opts       Options

	transitions map[transitionKey]handler
	commands    map[string]handler
	callbacks   map[string]handler

	locks      keyedMutex
	serializer *Serializer
	now        func() time.Time
	newID      func() string
}

// New wires a Controller.
func New(deps Deps, opts Options) (*Controller, error) {
	switch {
	case deps.Users == nil, deps.Messages == nil, deps.Analyses == nil:
		return nil, errors.New("conversation: repositories are required")
	case deps.Sessions == nil:
		return nil, errors.New("conversation: session store is required")
	case deps.Uploads == nil, deps.Extractor == nil:
		return nil, errors.New("conversation: upload store and extractor are required")
	case deps.Classifier == nil, deps.Feedback == nil, deps.Cover == nil:
		return nil, errors.New("conversation: review pipeline is required")
	case deps.Guard == nil, deps.Settler == nil:
		return nil, errors.New("conversation: entitlement guard and settler are required")
	case deps.Messenger == nil:
		return nil, errors.New("conversation: messenger is required")
	}

	c := &Controller{
		users:      deps.Users,
		audit:      deps.Messages,
		analyses:   deps.Analyses,
		sessions:   deps.Sessions,
		uploads:    deps.Uploads,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		feedback:   deps.Feedback,
		cover:      deps.Cover,
		guard:      deps.Guard,
		settler:    deps.Settler,
		messenger:  deps.Messenger,
		log:        telemetry.OrNop(deps.Log),
		opts:       opts,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	c.transitions = map[transitionKey]handler{
		{StateIdle, EventText}:                c.idleFallback,
		{StateIdle, EventDocument}:            c.idleFallback,
		{StateIdle, EventCallback}:            c.staleCallback,
		{StateAwaitingResume, EventDocument}:  c.onResumeDocument,
		{StateAwaitingResume, EventText}:      c.remindResume,
		{StateAwaitingVacancy, EventDocument}: c.onVacancyDocument,
		{StateAwaitingVacancy, EventText}:     c.onVacancyText,
		{StateAwaitingVacancy, EventCallback}: c.onSkipVacancy,
	}
	c.commands = map[string]handler{
		CommandStart:        c.onStart,
		CommandAnalysis:     c.onAnalysis,
		CommandAnalyze:      c.onAnalysis,
		CommandHelp:         c.onHelp,
		CommandSubscription: c.onSubscription,
		CommandPricing:      c.onPricing,
		CommandBuyPro:       c.onBuy(payments.KindPro),
		CommandBuyHR:        c.onBuy(payments.KindHRReview),
		CommandBuyCover:     c.onBuy(payments.KindCoverPack),
		CommandCover:        c.onCover,
	}
	c.callbacks = map[string]handler{
		CallbackAcceptTerms: c.onAcceptTerms,
		CallbackPay:         c.onPayCallback,
	}
	c.serializer = NewSerializer(c.Handle, opts.Concurrency, c.log)
	return c, nil
}

// Dispatch queues the event behind earlier events of the same user. It reports false
// once Shutdown has begun and the event was dropped.
func (c *Controller) Dispatch(ev Event) bool {
	if !c.serializer.Submit(ev) {
		c.log.Warn("conversation.dispatch.rejected", zap.Int64("user_id", ev.UserID), zap.String("kind", string(ev.Kind)))
		return false
	}
	return true
}

// Shutdown stops accepting events and waits for queued ones.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.serializer.Close()
	return c.serializer.Wait(ctx)
}

// Handle processes one event. Events of the same user are mutually exclusive.
// Every failure is answered with a user-facing text; the returned error is for logging.
func (c *Controller) Handle(ctx context.Context, ev Event) error {
	unlock := c.locks.Lock(ev.UserID)
	defer unlock()

	if ev.Kind == EventPreCheckout {
		return c.onPreCheckout(ctx, ev)
	}

	received := c.now().UTC()
	user, err := c.users.Ensure(ctx, users.Profile{TgUserID: ev.UserID, ChatID: ev.ChatID, Username: ev.Username}, c.opts.FreeOneTimeFull)
	if err != nil {
		c.reply(ctx, ev.ChatID, textInternalError)
		return fmt.Errorf("ensure user: %w", err)
	}

	t := &turn{ev: ev, user: user}
	defer c.record(ctx, t, received)

	if err := c.route(ctx, t); err != nil {
		c.reply(ctx, ev.ChatID, textInternalError)
		return err
	}
	return nil
}

func (c *Controller) route(ctx context.Context, t *turn) error {
	ev := t.ev
	switch ev.Kind {
	case EventPayment:
		return c.onPayment(ctx, t)
	case EventCommand:
		if h, ok := c.commands[ev.Command]; ok {
			return h(ctx, t)
		}
		c.reply(ctx, ev.ChatID, textHelp)
		return nil
	case EventCallback:
		if ev.Callback == nil {
			return nil
		}
		if h, ok := c.callbacks[ev.Callback.Data]; ok {
			return h(ctx, t)
		}
	}

	if !t.user.AcceptedRules {
		return c.termsGate(ctx, t)
	}

	session, err := c.sessions.Load(ctx, ev.UserID)
	if errors.Is(err, ErrCorruptSession) {
		c.log.Warn("conversation.state.corrupt", zap.Int64("user_id", ev.UserID), zap.Error(err))
		return c.lostState(ctx, t)
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	t.session = session

	h, ok := c.transitions[transitionKey{session.State, ev.Kind}]
	if !ok {
		return c.lostState(ctx, t)
	}
	return h(ctx, t)
}

// termsGate answers anything but commands while the terms are not accepted.
func (c *Controller) termsGate(ctx context.Context, t *turn) error {
	if t.ev.Callback != nil {
		c.answer(ctx, t.ev.Callback.ID, "")
	}
	if t.ev.Kind == EventText {
		c.reply(ctx, t.ev.ChatID, textUseStart)
		return nil
	}
	return c.send(ctx, t.ev.ChatID, textTermsRequired, SendOptions{Buttons: []Button{acceptButton()}})
}

// lostState resets a dialogue whose state does not fit the event.
func (c *Controller) lostState(ctx context.Context, t *turn) error {
	c.log.Warn("conversation.state.lost",
		zap.Int64("user_id", t.ev.UserID),
		zap.String("state", string(t.session.State)),
		zap.String("kind", string(t.ev.Kind)),
	)
	if t.ev.Callback != nil {
		c.answer(ctx, t.ev.Callback.ID, "")
	}
	if err := c.sessions.Clear(ctx, t.ev.UserID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.reply(ctx, t.ev.ChatID, textLostState)
	return nil
}

func (c *Controller) idleFallback(ctx context.Context, t *turn) error {
	c.reply(ctx, t.ev.ChatID, textUseAnalysis)
	return nil
}

func (c *Controller) staleCallback(ctx context.Context, t *turn) error {
	c.answer(ctx, t.ev.Callback.ID, textStaleButton)
	c.reply(ctx, t.ev.ChatID, textUseAnalysis)
	return nil
}

func (c *Controller) remindResume(ctx context.Context, t *turn) error {
	c.reply(ctx, t.ev.ChatID, textWaitResume)
	return nil
}

// record appends the event to the audit log. Failures are only logged.
func (c *Controller) record(ctx context.Context, t *turn, received time.Time) {
	ev := t.ev
	msg := messages.Message{
		ID:        c.newID(),
		MessageID: ev.MessageID,
		ChatID:    ev.ChatID,
		UserID:    ev.UserID,
		Text:      ev.Text,
		CreatedAt: received,
	}
	switch ev.Kind {
	case EventCommand:
		msg.Kind = messages.KindCommand
		msg.Text = strings.TrimSpace("/" + ev.Command + " " + ev.Args)
	case EventDocument:
		msg.Kind = messages.KindDocument
		msg.Status = t.status
		if ev.Document != nil {
			msg.FileName = ev.Document.FileName
		}
	case EventCallback:
		msg.Kind = messages.KindCallback
		if ev.Callback != nil {
			msg.Callback = ev.Callback.Data
		}
	case EventPayment:
		msg.Kind = messages.KindText
		if ev.Payment != nil {
			msg.Text = "successful_payment:" + ev.Payment.ChargeID
		}
	default:
		msg.Kind = messages.KindText
	}
	if err := c.audit.Append(ctx, msg); err != nil {
		c.log.Error("conversation.audit.failed", zap.Int64("user_id", ev.UserID), zap.Error(err))
	}
}

func (c *Controller) send(ctx context.Context, chatID int64, text string, opts SendOptions) error {
	if err := c.messenger.SendText(ctx, chatID, text, opts); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// reply sends plain text and only logs delivery failures.
func (c *Controller) reply(ctx context.Context, chatID int64, text string) {
	if err := c.messenger.SendText(ctx, chatID, text, SendOptions{}); err != nil {
		c.log.Warn("conversation.reply.failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (c *Controller) answer(ctx context.Context, callbackID, text string) {
	if callbackID == "" {
		return
	}
	if err := c.messenger.AnswerCallback(ctx, callbackID, text); err != nil {
		c.log.Warn("conversation.callback.answer_failed", zap.Error(err))
	}
}

func acceptButton() Button {
	return Button{Text: buttonAccept, Data: CallbackAcceptTerms}
}

func skipButton() Button {
	return Button{Text: buttonSkip, Data: CallbackSkipVacancy}
}

// keyedMutex hands out one mutex per user id and drops it when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key int64) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
