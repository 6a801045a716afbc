package payment

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/downstream"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	tracing "github.com/KelluuhShit/loan-mpesa/internal/pkg/otel"
	storemodels "github.com/KelluuhShit/loan-mpesa/internal/pkg/store/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/store/repository"
	"github.com/KelluuhShit/loan-mpesa/internal/service/interfaces"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	confirmationGuardTTL = 7 * 24 * time.Hour
	sideEffectTimeout    = 30 * time.Second
)

type SessionConfig struct {
	Payment       Config
	SessionTTL    time.Duration
	RepaymentDays int
}

func SessionConfigFrom(cfg *config.AppConfig) SessionConfig {
	return SessionConfig{
		Payment:       ConfigFrom(cfg.Payment),
		SessionTTL:    cfg.Payment.SessionTTL,
		RepaymentDays: cfg.Loan.RepaymentDays,
	}
}

type SessionDependencies struct {
	Gateway  downstream.PaymentGatewayAPI
	Store    interfaces.SubmissionStoreInterface
	Cache    interfaces.RedisStoreInterface
	Events   interfaces.EventPublisherInterface
	Notifier interfaces.NotificationPublisherInterface
	Receipts interfaces.ReceiptUploaderInterface
	Pool     interfaces.TaskSubmitterInterface
	Clock    Clock
}

type session struct {
	ctrl *Controller
	mu   sync.Mutex
	app  *models.LoanApplication
}

func (s *session) application() *models.LoanApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app
}

func (s *session) setApplication(app *models.LoanApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.app = app
}

// SessionService owns one Controller per tracking number.
type SessionService struct {
	deps SessionDependencies
	cfg  SessionConfig

	owner string

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionService(deps SessionDependencies, cfg SessionConfig) *SessionService {
	if deps.Clock == nil {
		deps.Clock = RealClock()
	}
	return &SessionService{
		deps:     deps,
		cfg:      cfg,
		owner:    uuid.NewString(),
		sessions: make(map[string]*session),
	}
}

// Pay starts the fee payment for a quoted loan. phone, when set, replaces the
// quoted recipient number.
func (s *SessionService) Pay(ctx context.Context, trackingNumber, phone string) (Snapshot, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "checkout.pay", trace.WithAttributes(attribute.String("trackingNumber", trackingNumber)))
	defer span.End()

	app, err := s.loadApplication(ctx, trackingNumber)
	if err != nil {
		return Snapshot{}, err
	}

	sess := s.session(trackingNumber, false)
	if sess == nil {
		if snap, err := s.claimCheckout(ctx, trackingNumber); err != nil {
			return snap, err
		}
		sess = s.session(trackingNumber, true)
	}
	sess.setApplication(app)
	return sess.ctrl.Confirm(ctx, models.PaymentRequest{Application: app, PhoneNumber: phone})
}

// claimCheckout decides whether a tracking number without a local session
// may start paying. A confirmed loan or an attempt owned by another session
// is rejected before any STK push goes out.
func (s *SessionService) claimCheckout(ctx context.Context, trackingNumber string) (Snapshot, error) {
	cached, err := repository.GetJSON[Snapshot](ctx, s.deps.Cache, consts.CheckoutSnapshotKeyPrefix+trackingNumber)
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		cached = &Snapshot{State: StateIdle}
	default:
		logger.CtxError(ctx, log_messages.ErrorCachingSnapshot, err, slog.String("trackingNumber", trackingNumber))
		return Snapshot{}, consts.ErrorStoreUnavailable.Wrap(err)
	}

	if _, err := s.deps.Cache.Get(ctx, consts.ConfirmedLoanKeyPrefix+trackingNumber); err == nil {
		if cached.State != StateConfirmed {
			cached = &Snapshot{State: StateConfirmed}
		}
		return *cached, consts.ErrorPaymentAlreadyConfirmed
	} else if !errors.Is(err, redis.Nil) {
		logger.CtxError(ctx, log_messages.ErrorCheckingCheckoutOwner, err, slog.String("trackingNumber", trackingNumber))
		return Snapshot{}, consts.ErrorStoreUnavailable.Wrap(err)
	}

	switch cached.State {
	case StateConfirmed:
		return *cached, consts.ErrorPaymentAlreadyConfirmed
	case StateSending, StatePolling:
		if cached.StopReason == "" {
			return *cached, consts.ErrorPaymentInProgress
		}
	}

	owned, err := s.deps.Cache.SetNX(ctx, consts.CheckoutOwnerKeyPrefix+trackingNumber, s.owner, s.cfg.SessionTTL)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorCheckingCheckoutOwner, err, slog.String("trackingNumber", trackingNumber))
		return Snapshot{}, consts.ErrorStoreUnavailable.Wrap(err)
	}
	if !owned {
		logger.CtxInfo(ctx, log_messages.CheckoutOwnedElsewhere, slog.String("trackingNumber", trackingNumber))
		return *cached, consts.ErrorPaymentInProgress
	}
	return *cached, nil
}

func (s *SessionService) Retry(ctx context.Context, trackingNumber, phone string) (Snapshot, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "checkout.retry", trace.WithAttributes(attribute.String("trackingNumber", trackingNumber)))
	defer span.End()

	app, err := s.loadApplication(ctx, trackingNumber)
	if err != nil {
		return Snapshot{}, err
	}

	sess := s.session(trackingNumber, false)
	if sess == nil {
		return Snapshot{}, consts.ErrorNothingToRetry
	}
	sess.setApplication(app)
	return sess.ctrl.Retry(ctx, models.PaymentRequest{Application: app, PhoneNumber: phone})
}

// Status returns the live snapshot, falling back to the cached one written
// by whichever instance owns the session.
func (s *SessionService) Status(ctx context.Context, trackingNumber string) (Snapshot, error) {
	if sess := s.session(trackingNumber, false); sess != nil {
		return sess.ctrl.Snapshot(), nil
	}

	cached, err := repository.GetJSON[Snapshot](ctx, s.deps.Cache, consts.CheckoutSnapshotKeyPrefix+trackingNumber)
	if err == nil {
		return *cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		logger.CtxError(ctx, log_messages.ErrorCachingSnapshot, err, slog.String("trackingNumber", trackingNumber))
		return Snapshot{}, consts.ErrorStoreUnavailable.Wrap(err)
	}

	if _, err := s.loadApplication(ctx, trackingNumber); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{State: StateIdle}, nil
}

// Dismiss stops the session's polling loop and forgets it.
func (s *SessionService) Dismiss(ctx context.Context, trackingNumber string) error {
	s.mu.Lock()
	sess, ok := s.sessions[trackingNumber]
	delete(s.sessions, trackingNumber)
	s.mu.Unlock()

	if !ok {
		return consts.ErrorSessionNotFound
	}
	s.release(ctx, trackingNumber, sess)
	logger.CtxInfo(ctx, "checkout session dismissed", slog.String("trackingNumber", trackingNumber))
	return nil
}

// Shutdown stops every active polling loop.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	sessions := make(map[string]*session, len(s.sessions))
	for tracking, sess := range s.sessions {
		sessions[tracking] = sess
		delete(s.sessions, tracking)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	for tracking, sess := range sessions {
		s.release(ctx, tracking, sess)
	}
	logger.Info("checkout sessions stopped", slog.Int("count", len(sessions)))
}

// release dismisses the controller, which rewrites the cached snapshot when
// a loop was running, and frees the tracking number for other instances.
func (s *SessionService) release(ctx context.Context, trackingNumber string, sess *session) {
	sess.ctrl.Dismiss(ctx)
	if err := s.deps.Cache.Delete(ctx, consts.CheckoutOwnerKeyPrefix+trackingNumber); err != nil {
		logger.CtxWarn(ctx, "failed to release checkout owner", slog.String("trackingNumber", trackingNumber), slog.Any("error", err))
	}
}

func (s *SessionService) session(trackingNumber string, create bool) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[trackingNumber]; ok {
		return sess
	}
	if !create {
		return nil
	}

	sess := &session{}
	sess.ctrl = NewController(s.deps.Gateway, s.deps.Clock, s.cfg.Payment, Hooks{
		OnTransition: func(ctx context.Context, snap Snapshot) {
			s.onTransition(ctx, trackingNumber, snap)
		},
		OnSuccess: func(ctx context.Context, conf models.Confirmation) error {
			return s.onSuccess(ctx, sess.application(), conf)
		},
	})
	s.sessions[trackingNumber] = sess
	return sess
}

func (s *SessionService) loadApplication(ctx context.Context, trackingNumber string) (*models.LoanApplication, error) {
	app, err := repository.GetJSON[models.LoanApplication](ctx, s.deps.Cache, consts.LoanApplicationKeyPrefix+trackingNumber)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, consts.ErrorSessionNotFound
		}
		logger.CtxError(ctx, log_messages.ErrorLoadingApplication, err, slog.String("trackingNumber", trackingNumber))
		return nil, consts.ErrorStoreUnavailable.Wrap(err)
	}
	return app, nil
}

func (s *SessionService) onTransition(ctx context.Context, trackingNumber string, snap Snapshot) {
	if err := repository.SetJSON(ctx, s.deps.Cache, consts.CheckoutSnapshotKeyPrefix+trackingNumber, snap, s.cfg.SessionTTL); err != nil {
		logger.CtxError(ctx, log_messages.ErrorCachingSnapshot, err, slog.String("trackingNumber", trackingNumber))
	}

	tx := snap.Transaction
	// a dismissed Polling snapshot repeats a transaction that is already stored
	if tx != nil && !(snap.State == StatePolling && snap.StopReason == StopDismissed) {
		s.persistTransaction(ctx, snap.State, tx)
	}

	if snap.State == StateSending {
		return
	}
	event := models.PaymentStatusEvent{
		EventID:        uuid.NewString(),
		TrackingNumber: trackingNumber,
		State:          string(snap.State),
		Message:        snap.Message,
		StopReason:     string(snap.StopReason),
		OccurredAt:     s.deps.Clock.Now().UTC(),
	}
	if tx != nil {
		event.Reference = tx.Reference
		event.PhoneNumber = tx.PhoneNumber
		event.Amount = tx.Amount
		event.Status = tx.Status
	}
	s.submit(ctx, "payment status event", func(ctx context.Context) error {
		return s.deps.Events.PublishJSON(ctx, trackingNumber, event)
	}, log_messages.ErrorPublishingPaymentEvent)
}

// persistTransaction inserts the QUEUED row and moves it forward once.
func (s *SessionService) persistTransaction(ctx context.Context, state State, tx *models.LoanFeeTransaction) {
	var err error
	switch state {
	case StatePolling:
		err = s.deps.Store.InsertFeeTransaction(ctx, &storemodels.FeeTransaction{
			Reference:       tx.Reference,
			ClientReference: tx.ClientReference,
			TrackingNumber:  tx.TrackingNumber,
			PhoneNumber:     tx.PhoneNumber,
			Amount:          tx.Amount,
			Status:          string(tx.Status),
			CreatedAt:       tx.CreatedAt.UTC(),
		})
	case StateConfirmed, StateRejected:
		var updated bool
		updated, err = s.deps.Store.UpdateFeeTransactionStatus(ctx, tx.Reference, tx.Status)
		if err == nil && !updated {
			logger.CtxWarn(ctx, "fee transaction was not in QUEUED state", slog.String("reference", tx.Reference))
		}
	}
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorPersistingFeeTransaction, err,
			slog.String("reference", tx.Reference),
			slog.String("state", string(state)),
		)
	}
}

func (s *SessionService) onSuccess(ctx context.Context, app *models.LoanApplication, conf models.Confirmation) error {
	guardKey := consts.ConfirmedLoanKeyPrefix + conf.TrackingNumber
	first, err := s.deps.Cache.SetNX(ctx, guardKey, conf.Reference, confirmationGuardTTL)
	if err != nil {
		logger.CtxWarn(ctx, "confirmation guard unavailable", slog.String("reference", conf.Reference), slog.Any("error", err))
	} else if !first {
		logger.CtxInfo(ctx, log_messages.ConfirmationAlreadyHandled,
			slog.String("reference", conf.Reference),
			slog.String("trackingNumber", conf.TrackingNumber),
		)
		return nil
	}

	loan := &storemodels.Loan{
		PhoneNumber:    conf.DisbursementTarget,
		NationalID:     conf.NationalID,
		Amount:         conf.LoanAmount,
		Status:         consts.LoanStatusPendingDisbursement,
		RepaymentDue:   conf.ConfirmedAt.AddDate(0, 0, s.cfg.RepaymentDays).UTC(),
		TrackingNumber: conf.TrackingNumber,
		FeeReference:   conf.Reference,
		ServiceFee:     conf.ServiceFee,
	}
	if app != nil {
		loan.PhoneNumber = app.PhoneNumber
	}
	if err := s.deps.Store.InsertLoan(ctx, loan); err != nil {
		logger.CtxError(ctx, log_messages.ErrorCreatingLoan, err, slog.String("reference", conf.Reference))
		if delErr := s.deps.Cache.Delete(ctx, guardKey); delErr != nil {
			logger.CtxWarn(ctx, "failed to release confirmation guard", slog.Any("error", delErr))
		}
		return err
	}

	sms := models.SmsNotificationRequest{
		Msisdn:         conf.DisbursementTarget,
		SmsDbEventName: consts.SmsEventLoanFeeConfirmed,
		NotifParameters: []models.SmsNotificationParameter{
			{Name: "trackingNumber", Value: conf.TrackingNumber},
			{Name: "loanAmount", Value: strconv.FormatInt(conf.LoanAmount, 10)},
			{Name: "disbursableAmount", Value: strconv.FormatInt(conf.DisbursableAmount, 10)},
			{Name: "reference", Value: conf.Reference},
		},
	}
	s.submit(ctx, "sms notification", func(ctx context.Context) error {
		_, err := s.deps.Notifier.PublishMessage(ctx, sms, map[string]string{"event": consts.SmsEventLoanFeeConfirmed})
		return err
	}, log_messages.ErrorSendingNotification)

	receipt := conf
	s.submit(ctx, "fee receipt", func(ctx context.Context) error {
		return s.deps.Receipts.UploadReceipt(ctx, &receipt)
	}, log_messages.ErrorUploadingReceipt)

	return nil
}

// submit runs fn on the worker pool with a context detached from the caller.
func (s *SessionService) submit(ctx context.Context, name string, fn func(context.Context) error, failMsg string) {
	traceID := logger.GetTraceID(ctx)
	ok := s.deps.Pool.Submit(func() {
		taskCtx, cancel := context.WithTimeout(logger.WithTraceID(context.Background(), traceID), sideEffectTimeout)
		defer cancel()
		if err := fn(taskCtx); err != nil {
			logger.CtxError(taskCtx, failMsg, err)
		}
	})
	if !ok {
		logger.CtxWarn(ctx, "worker pool stopped, dropping task", slog.String("task", name))
	}
}
