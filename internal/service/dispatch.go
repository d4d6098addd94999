package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bloodconnect/internal/model"
	"bloodconnect/internal/repository"
)

// InFlightGuard serializes concurrent attempts on one dedup key across
// replicas. Acquire fails with model.ErrDispatchInProgress while another
// attempt holds the key.
type InFlightGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type noopGuard struct{}

func (noopGuard) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

// Dispatcher runs the notification protocols. Every dispatch follows the
// same order: dedup check, resolve, send, claim, fan-out. The ledger is
// claimed only after the push call returned, so a failed or timed-out
// send can be retried by the caller without tripping the dedup check.
type Dispatcher struct {
	resolver  *TokenResolver
	ledger    *Ledger
	push      PushTransport
	notifRepo repository.NotificationRepository
	recorder  *ActivityRecorder
	guard     InFlightGuard
	log       zerolog.Logger

	callTimeout time.Duration
}

func NewDispatcher(
	resolver *TokenResolver,
	ledger *Ledger,
	push PushTransport,
	notifRepo repository.NotificationRepository,
	recorder *ActivityRecorder,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		resolver:  resolver,
		ledger:    ledger,
		push:      push,
		notifRepo: notifRepo,
		recorder:  recorder,
		guard:     noopGuard{},
		log:       logger,
	}
}

// SetInFlightGuard installs a cross-replica guard (optional).
func (d *Dispatcher) SetInFlightGuard(g InFlightGuard) {
	if g == nil {
		g = noopGuard{}
	}
	d.guard = g
}

// SetCallTimeout bounds every store and push call. Zero disables the bound.
func (d *Dispatcher) SetCallTimeout(timeout time.Duration) {
	d.callTimeout = timeout
}

// DispatchDonorToRecipient notifies a recipient that a donor responded.
func (d *Dispatcher) DispatchDonorToRecipient(ctx context.Context, req *model.SendNotificationRequest) (*model.DispatchResult, error) {
	tokens := UniqueTokens(req.Tokens)
	if len(tokens) == 0 {
		return nil, model.ErrTokensRequired
	}
	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		return nil, model.ErrRequestIDRequired
	}

	key := model.DedupKey(requestID, model.KindDonorToRecipient)
	sent, err := d.isAlreadySent(ctx, key)
	if err != nil {
		return nil, err
	}
	if sent {
		return alreadySent(key), nil
	}

	notifType := req.Type
	if notifType == "" {
		notifType = model.NotificationTypeRequestUpdate
	}

	result, err := d.dispatch(ctx, dispatchPlan{
		key:       key,
		requestID: requestID,
		tokens:    tokens,
		title:     req.Title,
		body:      req.Body,
		notifType: notifType,
		fanOut:    d.ownerRecipients,
	})

	// The donor's response is audited whether or not the push went out,
	// but not when this attempt found the key already dispatched.
	if req.DonorID != "" && !errors.Is(err, model.ErrDispatchInProgress) && !skippedAsSent(result) {
		d.recordActivity(ctx, req.DonorID, model.ActionRespondedToRequest, req.BloodType, req.Location)
	}

	return result, err
}

// DispatchRecipientToAdmin alerts every admin about a new blood request.
func (d *Dispatcher) DispatchRecipientToAdmin(ctx context.Context, req *model.NotifyAdminsRequest) (*model.DispatchResult, error) {
	requestID := strings.TrimSpace(req.RequestID)
	bloodType := strings.TrimSpace(req.BloodType)
	location := strings.TrimSpace(req.Location)
	if requestID == "" || bloodType == "" || location == "" {
		return nil, model.ErrMissingAdminFields
	}

	key := model.DedupKey(requestID, model.KindRecipientToAdmin)
	sent, err := d.isAlreadySent(ctx, key)
	if err != nil {
		return nil, err
	}
	if sent {
		return alreadySent(key), nil
	}

	callCtx, cancel := d.bounded(ctx)
	tokens, admins, err := d.resolver.AdminTokens(callCtx)
	cancel()
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		d.log.Info().Str("key", key).Msg("no admin tokens, nothing sent")
		return &model.DispatchResult{Key: key, Status: model.DispatchNoRecipients}, nil
	}

	// Every enumerated admin gets an in-app record, including admins with
	// no registered device.
	adminIDs := make([]string, 0, len(admins))
	for _, a := range admins {
		adminIDs = append(adminIDs, a.ID)
	}

	return d.dispatch(ctx, dispatchPlan{
		key:       key,
		requestID: requestID,
		tokens:    tokens,
		title:     model.AdminBroadcastTitle,
		body:      model.AdminBroadcastBody(bloodType, location),
		notifType: model.NotificationTypeSystem,
		fanOut: func(context.Context, []string) ([]string, error) {
			return adminIDs, nil
		},
	})
}

// dispatchPlan is one resolved dispatch ready to go out.
type dispatchPlan struct {
	key       string
	requestID string
	tokens    []string
	title     string
	body      string
	notifType string

	// fanOut returns the users that get an in-app record.
	fanOut func(ctx context.Context, tokens []string) ([]string, error)
}

func (d *Dispatcher) dispatch(ctx context.Context, p dispatchPlan) (*model.DispatchResult, error) {
	log := d.log.With().Str("key", p.key).Logger()

	release, err := d.guard.Acquire(ctx, p.key)
	if err != nil {
		if errors.Is(err, model.ErrDispatchInProgress) {
			log.Info().Msg("dispatch in progress elsewhere")
			return nil, err
		}
		return nil, fmt.Errorf("acquire dispatch guard: %w", err)
	}
	defer release()

	// The previous holder may have finished between our check and Acquire.
	sent, err := d.isAlreadySent(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if sent {
		return alreadySent(p.key), nil
	}

	callCtx, cancel := d.bounded(ctx)
	response, err := d.push.SendMulticast(callCtx, model.PushMessage{
		Tokens: p.tokens,
		Title:  p.title,
		Body:   p.body,
		Data: map[string]string{
			"type":      p.notifType,
			"requestId": p.requestID,
		},
	})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("push multicast: %w", err)
	}

	// The push is out. From here the request going away must not keep the
	// claim from being written, or a retry would push again.
	persistCtx := context.WithoutCancel(ctx)

	callCtx, cancel = d.bounded(persistCtx)
	err = d.ledger.Claim(callCtx, p.key, len(p.tokens), p.notifType)
	cancel()
	if err != nil {
		if errors.Is(err, model.ErrAlreadyClaimed) {
			// A concurrent attempt claimed first; it owns the fan-out.
			log.Warn().Int("tokens", len(p.tokens)).Msg("lost ledger claim after sending, duplicate push delivered")
			return alreadySent(p.key), nil
		}
		log.Error().Err(err).Msg("push sent but ledger claim failed")
		return nil, err
	}

	d.fanOut(persistCtx, log, p)

	log.Info().
		Int("tokens", len(p.tokens)).
		Int("success", response.SuccessCount).
		Int("failure", response.FailureCount).
		Msg("dispatch sent")

	return &model.DispatchResult{Key: p.key, Status: model.DispatchSent, Response: response}, nil
}

// fanOut writes the in-app records. The ledger is already claimed, so a
// failure here cannot be retried through the API and is only logged.
func (d *Dispatcher) fanOut(ctx context.Context, log zerolog.Logger, p dispatchPlan) {
	callCtx, cancel := d.bounded(ctx)
	userIDs, err := p.fanOut(callCtx, p.tokens)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("fan-out recipients unresolved")
		return
	}
	if len(userIDs) == 0 {
		return
	}

	records := make([]model.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		records = append(records, model.Notification{
			UserID: userID,
			Title:  p.title,
			Body:   p.body,
			Type:   p.notifType,
		})
	}

	callCtx, cancel = d.bounded(ctx)
	err = d.notifRepo.CreateBatch(callCtx, records)
	cancel()
	if err != nil {
		log.Error().Err(err).Int("records", len(records)).Msg("fan-out write failed")
	}
}

// ownerRecipients returns every user owning at least one token, sorted.
func (d *Dispatcher) ownerRecipients(ctx context.Context, tokens []string) ([]string, error) {
	owners, err := d.resolver.OwnersOf(ctx, tokens)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(owners))
	for userID := range owners {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)
	return userIDs, nil
}

func (d *Dispatcher) isAlreadySent(ctx context.Context, key string) (bool, error) {
	callCtx, cancel := d.bounded(ctx)
	defer cancel()
	return d.ledger.IsAlreadySent(callCtx, key)
}

// recordActivity survives the client going away: the audit write runs on
// a context detached from request cancellation.
func (d *Dispatcher) recordActivity(ctx context.Context, donorID, action string, bloodType, location *string) {
	callCtx, cancel := d.bounded(context.WithoutCancel(ctx))
	defer cancel()

	if err := d.recorder.Record(callCtx, donorID, action, bloodType, location); err != nil {
		d.log.Error().Err(err).Str("donor_id", donorID).Str("action", action).Msg("donor activity not recorded")
	}
}

func (d *Dispatcher) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.callTimeout)
}

func skippedAsSent(result *model.DispatchResult) bool {
	return result != nil && result.Status == model.DispatchAlreadySent
}

func alreadySent(key string) *model.DispatchResult {
	return &model.DispatchResult{Key: key, Status: model.DispatchAlreadySent}
}
