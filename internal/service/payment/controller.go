package payment

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/downstream"
	errs "github.com/KelluuhShit/loan-mpesa/internal/pkg/downstream/error_handling"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/models"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/utils"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle         State = "IDLE"
	StateSending      State = "SENDING"
	StateFailedToSend State = "FAILED_TO_SEND"
	StatePolling      State = "POLLING"
	StateConfirmed    State = "CONFIRMED"
	StateRejected     State = "REJECTED"
	StateTimeout      State = "TIMEOUT"
)

// IsTerminal reports whether the polling loop has ended for the current attempt.
func (s State) IsTerminal() bool {
	return s == StateConfirmed || s == StateRejected || s == StateTimeout
}

type StopReason string

const (
	StopTerminal   StopReason = "terminal"
	StopTimeout    StopReason = "timeout"
	StopDismissed  StopReason = "dismissed"
	StopSuperseded StopReason = "superseded"
)

type Config struct {
	PollInterval            time.Duration
	MaxDuration             time.Duration
	TransientErrorThreshold int
}

func ConfigFrom(cfg config.PaymentConfig) Config {
	return Config{
		PollInterval:            cfg.PollInterval,
		MaxDuration:             cfg.MaxPollDuration,
		TransientErrorThreshold: cfg.TransientErrorThreshold,
	}
}

// Hooks are invoked outside the controller lock. They must not call Stop.
type Hooks struct {
	OnTransition func(ctx context.Context, snap Snapshot)
	OnSuccess    func(ctx context.Context, conf models.Confirmation) error
}

type Snapshot struct {
	State             State                      `json:"state"`
	Transaction       *models.LoanFeeTransaction `json:"transaction,omitempty"`
	Message           string                     `json:"message,omitempty"`
	Warning           string                     `json:"warning,omitempty"`
	Polls             int                        `json:"polls"`
	ConsecutiveErrors int                        `json:"consecutiveErrors"`
	Confirmation      *models.Confirmation       `json:"confirmation,omitempty"`
	StopReason        StopReason                 `json:"stopReason,omitempty"`
}

// Controller drives one loan's service fee payment from STK push to a
// terminal outcome. At most one polling loop runs at a time.
type Controller struct {
	gateway downstream.PaymentGatewayAPI
	clock   Clock
	cfg     Config
	hooks   Hooks

	mu                sync.Mutex
	state             State
	application       *models.LoanApplication
	tx                *models.LoanFeeTransaction
	message           string
	warning           string
	polls             int
	consecutiveErrors int
	confirmation      *models.Confirmation
	stopReason        StopReason
	dismissed         bool
	notified          map[string]bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewController(gateway downstream.PaymentGatewayAPI, clock Clock, cfg Config, hooks Hooks) *Controller {
	if clock == nil {
		clock = RealClock()
	}
	return &Controller{
		gateway:  gateway,
		clock:    clock,
		cfg:      cfg,
		hooks:    hooks,
		state:    StateIdle,
		notified: make(map[string]bool),
	}
}

// Confirm starts a payment attempt. It is accepted from Idle and from any
// state that ended the previous attempt without a confirmed payment.
func (c *Controller) Confirm(ctx context.Context, req models.PaymentRequest) (Snapshot, error) {
	req, err := c.validate(req)
	if err != nil {
		return c.Snapshot(), err
	}

	if err := c.claim(func(s State) error {
		switch s {
		case StateSending, StatePolling:
			return consts.ErrorPaymentInProgress
		case StateConfirmed:
			return consts.ErrorPaymentAlreadyConfirmed
		}
		return nil
	}); err != nil {
		return c.Snapshot(), err
	}

	c.waitLoop()
	return c.send(ctx, req)
}

// Retry abandons the current attempt, waits for its loop to exit and sends
// again under a new reference.
func (c *Controller) Retry(ctx context.Context, req models.PaymentRequest) (Snapshot, error) {
	req, err := c.validate(req)
	if err != nil {
		return c.Snapshot(), err
	}

	if err := c.claim(func(s State) error {
		switch s {
		case StateIdle:
			return consts.ErrorNothingToRetry
		case StateSending:
			return consts.ErrorPaymentInProgress
		case StateConfirmed:
			return consts.ErrorPaymentAlreadyConfirmed
		}
		return nil
	}); err != nil {
		return c.Snapshot(), err
	}

	c.Stop(StopSuperseded)

	req.Reference = ""
	return c.send(ctx, req)
}

// Stop cancels the polling loop and waits for it to exit. Safe to call
// repeatedly and from any goroutine other than a hook.
func (c *Controller) Stop(reason StopReason) {
	c.halt(reason)
}

// Dismiss stops polling for good. When a loop was running, the final
// snapshot is emitted so observers stop reporting the attempt as live.
func (c *Controller) Dismiss(ctx context.Context) Snapshot {
	if !c.halt(StopDismissed) {
		return c.Snapshot()
	}
	snap := c.Snapshot()
	if snap.State == StatePolling {
		c.emit(ctx, snap)
	}
	return snap
}

// halt reports whether it cancelled a running loop.
func (c *Controller) halt(reason StopReason) bool {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	if reason == StopDismissed {
		c.dismissed = true
	}
	if cancel != nil && c.stopReason == "" {
		c.stopReason = reason
	}
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		logger.Info(log_messages.PaymentPollingStopped, slog.String("reason", string(reason)))
	}
	if done != nil {
		<-done
	}
	return cancel != nil
}

// Done is closed when the current polling loop exits.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.done
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:             c.state,
		Message:           c.message,
		Warning:           c.warning,
		Polls:             c.polls,
		ConsecutiveErrors: c.consecutiveErrors,
		StopReason:        c.stopReason,
	}
	if c.tx != nil {
		tx := *c.tx
		snap.Transaction = &tx
	}
	if c.confirmation != nil {
		conf := *c.confirmation
		snap.Confirmation = &conf
	}
	return snap
}

func (c *Controller) validate(req models.PaymentRequest) (models.PaymentRequest, error) {
	phone := req.PhoneNumber
	if phone == "" && req.Application != nil {
		phone = req.Application.DisbursementPhone()
	}
	msisdn, err := utils.NormalizeMSISDN(phone)
	if err != nil {
		return req, err
	}
	req.PhoneNumber = msisdn

	if req.Amount == 0 && req.Application != nil {
		req.Amount = req.Application.ServiceFee
	}
	if req.Amount <= 0 {
		return req, consts.ErrorFeeAmountNotValid
	}
	return req, nil
}

// claim moves the controller into Sending when allow accepts the current state.
func (c *Controller) claim(allow func(State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := allow(c.state); err != nil {
		return err
	}
	c.state = StateSending
	return nil
}

// waitLoop blocks until a loop that already reached a terminal state has exited.
func (c *Controller) waitLoop() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Controller) send(ctx context.Context, req models.PaymentRequest) (Snapshot, error) {
	reference := req.Reference
	if reference == "" {
		reference = consts.ReferencePrefix + uuid.NewString()
	}

	c.mu.Lock()
	c.application = req.Application
	c.tx = nil
	c.message = ""
	c.warning = ""
	c.polls = 0
	c.consecutiveErrors = 0
	c.confirmation = nil
	c.stopReason = ""
	c.done = nil
	sending := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(ctx, sending)

	logger.CtxInfo(ctx, log_messages.PaymentSending,
		slog.String("reference", reference),
		slog.String("phoneNumber", req.PhoneNumber),
		slog.Int64("amount", req.Amount),
	)

	res, err := c.gateway.Initiate(ctx, &models.GatewayInitiateRequest{
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		Reference:   reference,
	})
	if err != nil || !res.Accepted {
		return c.failToSend(ctx, reference, res, err)
	}

	tx := &models.LoanFeeTransaction{
		Reference:       res.GatewayReference,
		ClientReference: reference,
		PhoneNumber:     req.PhoneNumber,
		Amount:          req.Amount,
		Status:          models.StatusQueued,
		CreatedAt:       c.clock.Now(),
	}
	if req.Application != nil {
		tx.TrackingNumber = req.Application.TrackingNumber
	}

	c.mu.Lock()
	c.state = StatePolling
	c.tx = tx
	polling := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(ctx, polling)

	logger.CtxInfo(ctx, log_messages.PaymentPollingStarted,
		slog.String("reference", tx.Reference),
		slog.String("clientReference", reference),
	)

	if stopped, ok := c.startLoop(ctx, tx); ok {
		c.emit(ctx, stopped)
	}
	return c.Snapshot(), nil
}

func (c *Controller) failToSend(
	ctx context.Context,
	reference string,
	res *models.InitiateResult,
	cause error,
) (Snapshot, error) {

	msg := consts.ErrorGatewayInitiateFailed.Message
	var gwErr *errs.PaymentGatewayError
	switch {
	case errors.As(cause, &gwErr) && gwErr.GatewayMessage() != "":
		msg = gwErr.GatewayMessage()
	case res != nil && res.Error != "":
		msg = res.Error
	}

	logger.CtxWarn(ctx, log_messages.PaymentFailedToSend,
		slog.String("reference", reference),
		slog.String("message", msg),
	)

	c.mu.Lock()
	c.state = StateFailedToSend
	c.message = msg
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(ctx, snap)

	failure := consts.ErrorGatewayInitiateFailed.WithMessage(msg)
	if cause != nil {
		failure = failure.Wrap(cause)
	}
	return snap, failure
}

// startLoop returns the snapshot to emit when the session was dismissed
// before the loop could start.
func (c *Controller) startLoop(parent context.Context, tx *models.LoanFeeTransaction) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// superseded while the polling transition was being emitted
	if c.tx != tx || c.state != StatePolling {
		return Snapshot{}, false
	}
	if c.dismissed {
		c.stopReason = StopDismissed
		return c.snapshotLocked(), true
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	ticker := c.clock.NewTicker(c.cfg.PollInterval)
	go c.run(ctx, ticker, tx.Reference, done)
	return Snapshot{}, false
}

func (c *Controller) run(ctx context.Context, ticker Ticker, reference string, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C():
			if !c.poll(ctx, reference, now) {
				return
			}
		}
	}
}

// poll runs one status check and reports whether the loop should continue.
func (c *Controller) poll(ctx context.Context, reference string, now time.Time) bool {
	c.mu.Lock()
	if ctx.Err() != nil || c.state != StatePolling || c.tx == nil || c.tx.Reference != reference {
		c.mu.Unlock()
		return false
	}
	if now.Sub(c.tx.CreatedAt) > c.cfg.MaxDuration {
		c.state = StateTimeout
		c.message = consts.ErrorPaymentTimeout.Message
		c.finishLocked(StopTimeout)
		snap := c.snapshotLocked()
		c.mu.Unlock()

		logger.CtxWarn(ctx, log_messages.PaymentTimedOut, slog.String("reference", reference))
		c.emit(ctx, snap)
		return false
	}
	c.mu.Unlock()

	res := c.gateway.CheckStatus(ctx, reference)
	if ctx.Err() != nil {
		return false
	}
	return c.apply(ctx, reference, res)
}

// apply folds one status result into the controller state and reports
// whether polling should continue.
func (c *Controller) apply(ctx context.Context, reference string, res models.StatusResult) bool {
	c.mu.Lock()
	if c.tx == nil || c.tx.Reference != reference {
		c.mu.Unlock()
		return false
	}
	if c.state != StatePolling {
		if c.state == StateConfirmed {
			logger.CtxDebug(ctx, log_messages.PaymentDuplicateSuccess, slog.String("reference", reference))
		}
		c.mu.Unlock()
		return false
	}

	c.polls++
	prev := c.state
	var fire *models.Confirmation

	switch r := res.(type) {
	case models.StatusOK:
		c.consecutiveErrors = 0
		c.warning = ""
		c.tx.Status = r.Status
		switch r.Status {
		case models.StatusSuccess:
			c.state = StateConfirmed
			c.message = ""
			c.confirmation = c.confirmationLocked()
			c.finishLocked(StopTerminal)
			if !c.notified[reference] {
				c.notified[reference] = true
				conf := *c.confirmation
				fire = &conf
			}
		case models.StatusFailed, models.StatusCancelled:
			c.state = StateRejected
			c.message = consts.ErrorPaymentFailed.Message
			c.finishLocked(StopTerminal)
		}
	case models.StatusNotFound:
		c.consecutiveErrors = 0
		c.warning = ""
	case models.StatusTransientError:
		c.consecutiveErrors++
		if c.consecutiveErrors >= c.cfg.TransientErrorThreshold {
			c.warning = retryWarning(r.Err)
		}
		logger.CtxWarn(ctx, log_messages.PaymentTransientError,
			slog.String("reference", reference),
			slog.Int("consecutiveErrors", c.consecutiveErrors),
			slog.Any("error", r.Err),
		)
	case models.StatusRejected:
		c.consecutiveErrors++
		if c.consecutiveErrors >= c.cfg.TransientErrorThreshold {
			c.warning = r.Message
		}
	}

	snap := c.snapshotLocked()
	c.mu.Unlock()

	logger.CtxDebug(ctx, log_messages.PaymentStatusPolled,
		slog.String("reference", reference),
		slog.String("state", string(snap.State)),
		slog.Int("polls", snap.Polls),
	)

	if snap.State != prev {
		switch snap.State {
		case StateConfirmed:
			logger.CtxInfo(ctx, log_messages.PaymentConfirmed, slog.String("reference", reference))
		case StateRejected:
			logger.CtxWarn(ctx, log_messages.PaymentRejected,
				slog.String("reference", reference),
				slog.String("status", string(snap.Transaction.Status)),
			)
		}
		c.emit(ctx, snap)
	}

	if fire != nil && c.hooks.OnSuccess != nil {
		if err := c.hooks.OnSuccess(ctx, *fire); err != nil {
			logger.CtxError(ctx, log_messages.PaymentSuccessHookFailed, err, slog.String("reference", reference))
		}
	}

	return !snap.State.IsTerminal()
}

// finishLocked releases the loop context after a terminal transition.
func (c *Controller) finishLocked(reason StopReason) {
	if c.stopReason == "" {
		c.stopReason = reason
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) confirmationLocked() *models.Confirmation {
	conf := &models.Confirmation{
		Reference:          c.tx.Reference,
		TrackingNumber:     c.tx.TrackingNumber,
		ServiceFee:         c.tx.Amount,
		DisbursementTarget: c.tx.PhoneNumber,
		ConfirmedAt:        c.clock.Now(),
	}
	if c.application != nil {
		conf.NationalID = c.application.NationalID
		conf.LoanAmount = c.application.LoanAmount
		conf.ServiceFee = c.application.ServiceFee
	}
	conf.DisbursableAmount = conf.LoanAmount - conf.ServiceFee
	return conf
}

func (c *Controller) emit(ctx context.Context, snap Snapshot) {
	if c.hooks.OnTransition != nil {
		c.hooks.OnTransition(ctx, snap)
	}
}

func retryWarning(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return consts.ErrorStatusCheckTimedOut.Message
	}
	return consts.ErrorStatusCheckRetrying.Message
}
