// Package workflow drives the per-conversation state machine: free-text
// entry, price and notes prompts, AI confirm/select, and the deletion flow.
// Side effects happen only on commit; every terminal error ends in either a
// corrective re-prompt or an explicit cancellation, never an indeterminate
// state.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
	"github.com/adel-hamdan/purchases-tracker/internal/llm"
	"github.com/adel-hamdan/purchases-tracker/internal/normalize"
	"github.com/adel-hamdan/purchases-tracker/internal/parser"
	"github.com/adel-hamdan/purchases-tracker/internal/reconcile"
	"github.com/adel-hamdan/purchases-tracker/internal/retry"
	"github.com/adel-hamdan/purchases-tracker/internal/store"
)

// Config bounds prices and sizes the "recent" deletion listing.
type Config struct {
	MinPrice    float64
	MaxPrice    float64
	RecentLimit int
}

// Workflow wires the parsing pipeline, the extraction service, and the store
// behind the conversational state machine.
type Workflow struct {
	cfg        Config
	norm       *normalize.Normalizer
	locale     *normalize.Locale
	parser     *parser.Parser
	classifier *parser.Classifier
	extractor  llm.Extractor
	st         store.Store
	transport  Transport
	policy     retry.Policy
	logger     *slog.Logger
	sessions   *sessions
	now        func() time.Time
}

func New(
	cfg Config,
	norm *normalize.Normalizer,
	locale *normalize.Locale,
	p *parser.Parser,
	classifier *parser.Classifier,
	extractor llm.Extractor,
	st store.Store,
	transport Transport,
	policy retry.Policy,
	logger *slog.Logger,
) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	if locale == nil {
		locale = normalize.DefaultLocale()
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 10
	}
	return &Workflow{
		cfg:        cfg,
		norm:       norm,
		locale:     locale,
		parser:     p,
		classifier: classifier,
		extractor:  extractor,
		st:         st,
		transport:  transport,
		policy:     policy,
		logger:     logger,
		sessions:   newSessions(),
		now:        time.Now,
	}
}

// Welcome sends the greeting and resets the session, mirroring /start.
func (w *Workflow) Welcome(ctx context.Context, sessionID string) error {
	sess, ok := w.sessions.acquire(sessionID)
	if !ok {
		return w.reply(ctx, sessionID, msgBusy)
	}
	defer w.sessions.release(sess)
	sess.clear()
	return w.reply(ctx, sessionID, msgWelcome)
}

// Cancel processes an explicit cancel signal from any phase, clearing all
// pending fields atomically. It is honored even while candidates await
// confirmation.
func (w *Workflow) Cancel(ctx context.Context, sessionID string) error {
	sess, ok := w.sessions.acquire(sessionID)
	if !ok {
		return w.reply(ctx, sessionID, msgBusy)
	}
	defer w.sessions.release(sess)
	w.logger.Info("workflow.cancel", "session", sessionID, "phase", sess.Phase.String())
	sess.clear()
	return w.reply(ctx, sessionID, msgCancelled)
}

// HandleMessage applies one text message to the session's current phase.
func (w *Workflow) HandleMessage(ctx context.Context, sessionID, text string) error {
	sess, ok := w.sessions.acquire(sessionID)
	if !ok {
		return w.reply(ctx, sessionID, msgBusy)
	}
	defer w.sessions.release(sess)

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	w.logger.Debug("workflow.message", "session", sessionID, "phase", sess.Phase.String())

	switch sess.Phase {
	case PhaseIdle:
		return w.handleEntry(ctx, sess, text)
	case PhaseCollectingPrice:
		return w.handlePrice(ctx, sess, text)
	case PhaseCollectingNotes:
		return w.handleNotes(ctx, sess, text)
	case PhaseSelectingDeletion:
		return w.handleDeletionChoice(ctx, sess, text)
	case PhaseAIConfirm, PhaseAISelect:
		return w.reply(ctx, sess.ID, msgUseButtons)
	default:
		sess.clear()
		return w.reply(ctx, sess.ID, msgWelcome)
	}
}

// handleEntry is the idle-state entry point: fast-path commit, price prompt,
// or escalation to the extraction service.
func (w *Workflow) handleEntry(ctx context.Context, sess *Session, text string) error {
	decision := w.classifier.Classify(text)
	w.logger.Debug("workflow.classified", "session", sess.ID, "decision", decision.String())
	if decision == parser.Escalate {
		return w.escalate(ctx, sess, text, w.parser.ParseBatch(text).Records)
	}

	batch := w.parser.ParseBatch(text)
	if batch.Complete() {
		// Fast path: every line carries product and price; commit directly.
		if err := w.commit(ctx, sess, batch.Records); err != nil {
			return err
		}
		sess.clear()
		return nil
	}

	if len(batch.Records) == 0 && len(batch.Unparsed) == 1 {
		if out := w.parser.ParseLine(batch.Unparsed[0]); out.Kind == parser.KindProductOnly {
			sess.PendingProduct = out.Product
			sess.Phase = PhaseCollectingPrice
			return w.reply(ctx, sess.ID, fmt.Sprintf(msgPricePrompt, out.Product))
		}
	}

	// Mixed batch: some lines parsed, some did not. No silent partial
	// commits — the whole message goes to the extraction service and the
	// parsed portion rides along for merging.
	return w.escalate(ctx, sess, text, batch.Records)
}

// escalate sends the message to the AI extraction service, merges the result
// with anything already parsed deterministically, and asks for confirmation.
func (w *Workflow) escalate(ctx context.Context, sess *Session, text string, parsed []entity.ParsedRecord) error {
	var extracted []entity.ParsedRecord
	err := w.policy.Do(ctx, w.logger, "llm.extract", func(ctx context.Context) error {
		var callErr error
		extracted, callErr = w.extractor.Extract(ctx, text)
		return callErr
	})
	if err != nil {
		w.logger.Error("workflow.extract_failed", "session", sess.ID, "error", err)
		sess.clear()
		return w.reply(ctx, sess.ID, msgCouldNotParse)
	}

	candidates := parser.MergeDedup(parsed, extracted)
	if len(candidates) == 0 {
		sess.clear()
		return w.reply(ctx, sess.ID, msgCouldNotParse)
	}

	sess.AICandidates = candidates
	sess.Phase = PhaseAIConfirm
	return w.reply(ctx, sess.ID, formatCandidates(candidates),
		Button{Label: btnConfirmAll, Payload: payloadConfirmAll},
		Button{Label: btnSelectMode, Payload: payloadSelectMode},
		Button{Label: btnCancel, Payload: payloadCancel},
	)
}

// handlePrice accepts only a normalizable positive price within bounds;
// anything else re-prompts without a state change.
func (w *Workflow) handlePrice(ctx context.Context, sess *Session, text string) error {
	normalized := strings.TrimSpace(w.norm.Normalize(text))
	price, err := strconv.ParseFloat(normalized, 64)
	if err != nil || price <= 0 {
		return w.reply(ctx, sess.ID, msgInvalidPrice)
	}
	if err := common.ValidatePrice(price, w.cfg.MinPrice, w.cfg.MaxPrice); err != nil {
		return w.reply(ctx, sess.ID, msgInvalidPrice)
	}
	sess.PendingPrice = &price
	sess.Phase = PhaseCollectingNotes
	return w.reply(ctx, sess.ID, fmt.Sprintf(msgNotesPrompt, entity.FormatPrice(price)))
}

// handleNotes accepts any text; skip tokens mean empty notes. The pending
// record commits and the session returns to idle.
func (w *Workflow) handleNotes(ctx context.Context, sess *Session, text string) error {
	notes := text
	if w.locale.IsSkipToken(strings.ToLower(strings.TrimSpace(text))) {
		notes = ""
	}
	rec := entity.ParsedRecord{
		Product: sess.PendingProduct,
		Price:   sess.PendingPrice,
		Notes:   notes,
	}
	if err := w.commit(ctx, sess, []entity.ParsedRecord{rec}); err != nil {
		return err
	}
	sess.clear()
	return nil
}

// HandleButton applies one button press to the session.
func (w *Workflow) HandleButton(ctx context.Context, sessionID, payload string) error {
	sess, ok := w.sessions.acquire(sessionID)
	if !ok {
		return w.reply(ctx, sessionID, msgBusy)
	}
	defer w.sessions.release(sess)

	w.logger.Debug("workflow.button", "session", sessionID, "phase", sess.Phase.String(), "payload", payload)

	// Cancel wins regardless of phase.
	if payload == payloadCancel {
		sess.clear()
		return w.reply(ctx, sess.ID, msgCancelled)
	}

	switch sess.Phase {
	case PhaseAIConfirm:
		return w.handleConfirmButton(ctx, sess, payload)
	case PhaseAISelect:
		return w.handleSelectButton(ctx, sess, payload)
	default:
		w.logger.Warn("workflow.button_ignored", "session", sessionID, "payload", payload)
		return nil
	}
}

func (w *Workflow) handleConfirmButton(ctx context.Context, sess *Session, payload string) error {
	switch payload {
	case payloadConfirmAll:
		if len(sess.AICandidates) == 0 {
			sess.clear()
			return w.reply(ctx, sess.ID, msgNothingToConfirm)
		}
		if err := w.commit(ctx, sess, sess.AICandidates); err != nil {
			return err
		}
		sess.clear()
		return nil
	case payloadSelectMode:
		if len(sess.AICandidates) == 0 {
			sess.clear()
			return w.reply(ctx, sess.ID, msgNothingToConfirm)
		}
		sess.Phase = PhaseAISelect
		sess.Selected = make(map[int]struct{})
		return w.reply(ctx, sess.ID, msgSelectPrompt, w.selectionButtons(sess)...)
	default:
		return w.reply(ctx, sess.ID, msgUseButtons)
	}
}

func (w *Workflow) handleSelectButton(ctx context.Context, sess *Session, payload string) error {
	if idx, ok := strings.CutPrefix(payload, payloadSelectPrefix); ok {
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 || i >= len(sess.AICandidates) {
			return w.reply(ctx, sess.ID, msgUseButtons)
		}
		// Idempotent toggle: choosing the same candidate twice deselects it.
		if _, selected := sess.Selected[i]; selected {
			delete(sess.Selected, i)
		} else {
			sess.Selected[i] = struct{}{}
		}
		return w.reply(ctx, sess.ID, fmt.Sprintf(msgSelectCount, len(sess.Selected)), w.selectionButtons(sess)...)
	}

	if payload == payloadConfirmSelected {
		if len(sess.Selected) == 0 {
			// Confirming nothing is a cancellation, not an empty commit.
			sess.clear()
			return w.reply(ctx, sess.ID, msgEmptySelection)
		}
		chosen := make([]entity.ParsedRecord, 0, len(sess.Selected))
		for i, r := range sess.AICandidates {
			if _, ok := sess.Selected[i]; ok {
				chosen = append(chosen, r)
			}
		}
		if err := w.commit(ctx, sess, chosen); err != nil {
			return err
		}
		sess.clear()
		return nil
	}

	return w.reply(ctx, sess.ID, msgUseButtons)
}

func (w *Workflow) selectionButtons(sess *Session) []Button {
	buttons := make([]Button, 0, len(sess.AICandidates)+2)
	for i, r := range sess.AICandidates {
		label := formatRecord(r)
		if _, ok := sess.Selected[i]; ok {
			label = selectedMarkerPrefix + label
		}
		buttons = append(buttons, Button{Label: label, Payload: payloadSelectPrefix + strconv.Itoa(i)})
	}
	buttons = append(buttons,
		Button{Label: btnConfirmSelected, Payload: payloadConfirmSelected},
		Button{Label: btnCancel, Payload: payloadCancel},
	)
	return buttons
}

// StartDeletion reads the store, snapshots the numbered list into the
// session, and asks which entries to remove. The snapshot — not a re-fetched
// list — is the addressing basis for the user's answer.
func (w *Workflow) StartDeletion(ctx context.Context, sessionID string, target DeletionTarget) error {
	sess, ok := w.sessions.acquire(sessionID)
	if !ok {
		return w.reply(ctx, sessionID, msgBusy)
	}
	defer w.sessions.release(sess)

	records, err := w.st.ReadAll(ctx)
	if err != nil {
		w.logger.Error("workflow.deletion_read_failed", "session", sessionID, "error", err)
		sess.clear()
		return w.reply(ctx, sess.ID, msgStoreError)
	}

	switch target {
	case DeleteToday:
		today := w.now().Format(entity.DateLayout)
		filtered := records[:0:0]
		for _, r := range records {
			if r.Date == today {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	case DeleteRecent:
		if len(records) > w.cfg.RecentLimit {
			records = records[len(records)-w.cfg.RecentLimit:]
		}
	}

	if len(records) == 0 {
		sess.clear()
		return w.reply(ctx, sess.ID, msgNoRecords)
	}

	sess.Displayed = records
	sess.Target = target
	sess.Phase = PhaseSelectingDeletion
	return w.reply(ctx, sess.ID, formatDisplayedList(records)+"\n"+msgDeletePrompt)
}

// handleDeletionChoice resolves chosen display numbers against the captured
// snapshot and deletes the matching rows in descending order.
func (w *Workflow) handleDeletionChoice(ctx context.Context, sess *Session, text string) error {
	numbers, bad := parseSelectionNumbers(w.norm.Normalize(text))
	if len(numbers) == 0 {
		return w.reply(ctx, sess.ID, fmt.Sprintf(msgInvalidSelection, bad))
	}

	prep := reconcile.PrepareDeletion(sess.Displayed, numbers)
	if len(prep.ToDelete) == 0 {
		return w.reply(ctx, sess.ID, fmt.Sprintf(msgInvalidSelection, prep.Invalid))
	}

	rowIDs := make([]int, len(prep.ToDelete))
	for i, rec := range prep.ToDelete {
		rowIDs[i] = rec.RowID
	}
	result := reconcile.DeleteRows(ctx, w.st, rowIDs, w.logger)

	reply := fmt.Sprintf(msgDeleteResult, result.Succeeded, len(result.Failed))
	// Part of the selection may have been out of range or non-numeric; say
	// so instead of silently deleting less than the user asked for.
	if ignored := ignoredTokens(prep.Invalid, bad); len(ignored) > 0 {
		reply += fmt.Sprintf(msgIgnoredNumbers, ignored)
	}
	sess.clear()
	return w.reply(ctx, sess.ID, reply)
}

// commit is the only place records are persisted. Validation failures abort
// the whole batch with a corrective reply; the session state is untouched so
// the caller decides what happens next.
func (w *Workflow) commit(ctx context.Context, sess *Session, records []entity.ParsedRecord) error {
	stored := make([]entity.StoredRecord, 0, len(records))
	now := w.now()
	for _, r := range records {
		if err := common.ValidateProduct(r.Product); err != nil {
			w.logger.Warn("workflow.commit_invalid", "session", sess.ID, "error", err)
			return w.reply(ctx, sess.ID, msgCouldNotParse)
		}
		if r.Price == nil {
			w.logger.Warn("workflow.commit_invalid", "session", sess.ID, "product", r.Product, "reason", "missing price")
			return w.reply(ctx, sess.ID, msgCouldNotParse)
		}
		if err := common.ValidatePrice(*r.Price, w.cfg.MinPrice, w.cfg.MaxPrice); err != nil {
			w.logger.Warn("workflow.commit_invalid", "session", sess.ID, "error", err)
			return w.reply(ctx, sess.ID, msgInvalidPrice)
		}
		stored = append(stored, entity.NewStoredRecord(r, now))
	}

	if err := w.st.AppendAll(ctx, stored); err != nil {
		w.logger.Error("workflow.commit_failed", "session", sess.ID, "error", err)
		return w.reply(ctx, sess.ID, msgStoreError)
	}

	if len(stored) == 1 {
		rec := stored[0]
		if rec.Notes != "" {
			return w.reply(ctx, sess.ID, fmt.Sprintf(msgAddedWithNotes, rec.Product, entity.FormatPrice(rec.Price), rec.Notes))
		}
		return w.reply(ctx, sess.ID, fmt.Sprintf(msgAdded, rec.Product, entity.FormatPrice(rec.Price)))
	}
	return w.reply(ctx, sess.ID, fmt.Sprintf(msgAddedBatch, len(stored)))
}

func (w *Workflow) reply(ctx context.Context, sessionID, text string, buttons ...Button) error {
	if err := w.transport.Reply(ctx, sessionID, text, buttons...); err != nil {
		w.logger.Error("workflow.reply_failed", "session", sessionID, "error", err)
		return err
	}
	return nil
}

// ignoredTokens merges out-of-range numbers and non-numeric tokens into one
// list for the reply.
func ignoredTokens(invalid []int, bad []string) []string {
	out := make([]string, 0, len(invalid)+len(bad))
	for _, n := range invalid {
		out = append(out, strconv.Itoa(n))
	}
	return append(out, bad...)
}

// parseSelectionNumbers splits "1,3" or "1 3" into ints, reporting tokens
// that are not numbers.
func parseSelectionNumbers(text string) (numbers []int, bad []string) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '،' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			bad = append(bad, f)
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers, bad
}
