package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comicverse/comicverse-backend/internal/cart"
	"github.com/comicverse/comicverse-backend/internal/events"
	"github.com/comicverse/comicverse-backend/internal/orders"
	"github.com/comicverse/comicverse-backend/pkg/enums"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
	"github.com/comicverse/comicverse-backend/pkg/mercadopago"
	"github.com/comicverse/comicverse-backend/pkg/metrics"
	"github.com/comicverse/comicverse-backend/pkg/outbox"
)

type preferenceGateway interface {
	CreatePreference(ctx context.Context, params mercadopago.PreferenceParams) (*mercadopago.Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
	CurrencyID() string
}

type attemptLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutLockKey(userID string) string
}

type clientNotifier interface {
	Publish(ctx context.Context, userID uuid.UUID, event events.Event) error
}

// Options tune checkout behavior.
type Options struct {
	AttemptLockTTL    time.Duration
	PreferenceTimeout time.Duration
}

// Service orchestrates the two checkout paths. The direct path settles the
// order synchronously; the redirect path parks it PENDING behind a payment
// preference and resolves it from the gateway callback.
type Service struct {
	orders   orders.Service
	carts    cart.Service
	gateway  preferenceGateway
	locks    attemptLocker
	notifier clientNotifier
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	opts     Options
}

// NewService wires the checkout orchestrator. The gateway may be nil when
// the redirect path is disabled; everything else is required.
func NewService(
	orderSvc orders.Service,
	cartSvc cart.Service,
	gateway preferenceGateway,
	locks attemptLocker,
	notifier clientNotifier,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	opts Options,
) (*Service, error) {
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if locks == nil {
		return nil, fmt.Errorf("attempt locker required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("client notifier required")
	}
	if opts.AttemptLockTTL <= 0 {
		opts.AttemptLockTTL = 45 * time.Second
	}
	return &Service{
		orders:   orderSvc,
		carts:    cartSvc,
		gateway:  gateway,
		locks:    locks,
		notifier: notifier,
		metrics:  checkoutMetrics,
		logg:     logg,
		opts:     opts,
	}, nil
}

// Direct settles the cart synchronously. The order is created CONFIRMED and
// the cart is drained in the same transaction.
func (s *Service) Direct(ctx context.Context, userID uuid.UUID, actor *outbox.ActorRef) (*DirectResult, error) {
	start := time.Now()
	method := enums.PaymentMethodDirect.String()
	s.metrics.IncAttempt(method)

	release, err := s.acquireLock(ctx, userID)
	if err != nil {
		s.metrics.IncFailure(method, "lock_held")
		return nil, err
	}
	defer release()

	order, err := s.orders.CreateFromCart(ctx, orders.CreateParams{
		UserID:        userID,
		PaymentMethod: enums.PaymentMethodDirect,
		Status:        enums.OrderStatusConfirmed,
		ClearCart:     true,
		Actor:         actor,
	})
	if err != nil {
		s.metrics.IncFailure(method, failureReason(err))
		return nil, err
	}

	s.notify(ctx, userID, events.Event{
		Type:    events.TypePaymentResult,
		OrderID: order.ID.String(),
		Outcome: enums.PaymentOutcomeSuccess.String(),
	})
	s.metrics.ObserveDuration(method, time.Since(start))
	s.logOrder(ctx, "direct checkout settled", order)
	return &DirectResult{Order: order}, nil
}

// BeginRedirect creates a PENDING order and a payment preference for it. The
// attempt lock is left in place until the callback resolves the order or the
// TTL runs out, so a second checkout cannot race the redirect.
func (s *Service) BeginRedirect(ctx context.Context, userID uuid.UUID, actor *outbox.ActorRef) (*RedirectResult, error) {
	start := time.Now()
	method := enums.PaymentMethodMercadoPago.String()
	s.metrics.IncAttempt(method)

	if s.gateway == nil {
		s.metrics.IncFailure(method, "gateway_disabled")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redirect checkout is not configured")
	}

	release, err := s.acquireLock(ctx, userID)
	if err != nil {
		s.metrics.IncFailure(method, "lock_held")
		return nil, err
	}

	ref := uuid.NewString()
	order, err := s.orders.CreateFromCart(ctx, orders.CreateParams{
		UserID:            userID,
		PaymentMethod:     enums.PaymentMethodMercadoPago,
		Status:            enums.OrderStatusPending,
		ExternalReference: &ref,
		Actor:             actor,
	})
	if err != nil {
		release()
		s.metrics.IncFailure(method, failureReason(err))
		return nil, err
	}

	prefCtx := ctx
	if s.opts.PreferenceTimeout > 0 {
		var cancel context.CancelFunc
		prefCtx, cancel = context.WithTimeout(ctx, s.opts.PreferenceTimeout)
		defer cancel()
	}

	items := make([]mercadopago.PreferenceItem, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, mercadopago.PreferenceItem{
			Title:      line.Title,
			Quantity:   line.Quantity,
			UnitPrice:  mercadopago.AmountFromCents(line.UnitPriceCents),
			CurrencyID: s.gateway.CurrencyID(),
		})
	}
	items = append(items, mercadopago.PreferenceItem{
		Title:      "Shipping",
		Quantity:   1,
		UnitPrice:  mercadopago.AmountFromCents(order.ShippingFeeCents),
		CurrencyID: s.gateway.CurrencyID(),
	})

	preference, err := s.gateway.CreatePreference(prefCtx, mercadopago.PreferenceParams{
		ExternalReference: ref,
		Items:             items,
	})
	if err != nil {
		// The reserved stock goes back; the user can retry immediately.
		if _, cancelErr := s.orders.CancelByExternalReference(ctx, ref); cancelErr != nil {
			s.logError(ctx, "cancel after preference failure", cancelErr)
		}
		release()
		s.metrics.IncFailure(method, "preference")
		return nil, err
	}

	s.metrics.ObserveDuration(method, time.Since(start))
	s.logOrder(ctx, "redirect checkout started", order)
	return &RedirectResult{
		Order:             order,
		ExternalReference: ref,
		InitPoint:         preference.InitPoint,
	}, nil
}

// HandleCallback resolves a redirect checkout from the gateway's back URL.
// Success confirms the order and drains the cart, failure cancels and
// restocks, pending leaves the order untouched. All three notify the client
// and release the attempt lock. A pending outcome that carries a payment id
// is first reconciled against the gateway, since the payment may have
// settled after the buyer was redirected.
func (s *Service) HandleCallback(ctx context.Context, outcome enums.PaymentOutcome, externalRef, paymentID string) (*CallbackResult, error) {
	if !outcome.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment outcome")
	}
	if externalRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external reference is required")
	}
	outcome = s.reconcileOutcome(ctx, outcome, paymentID)
	s.metrics.IncCallback(outcome.String())

	var (
		order *orders.OrderDTO
		err   error
	)
	switch outcome {
	case enums.PaymentOutcomeSuccess:
		order, err = s.orders.ConfirmByExternalReference(ctx, externalRef)
		if err == nil {
			if clearErr := s.carts.Clear(ctx, order.UserID); clearErr != nil {
				s.logError(ctx, "clear cart after payment", clearErr)
			}
		}
	case enums.PaymentOutcomeFailure:
		order, err = s.orders.CancelByExternalReference(ctx, externalRef)
	case enums.PaymentOutcomePending:
		order, err = s.orders.GetByExternalReference(ctx, externalRef)
	}
	if err != nil {
		return nil, err
	}

	if releaseErr := s.locks.Del(ctx, s.locks.CheckoutLockKey(order.UserID.String())); releaseErr != nil {
		s.logError(ctx, "release checkout lock", releaseErr)
	}

	s.notify(ctx, order.UserID, events.Event{
		Type:    events.TypePaymentResult,
		OrderID: order.ID.String(),
		Outcome: outcome.String(),
	})
	s.logOrder(ctx, "payment callback resolved", order)
	return &CallbackResult{Order: order, Outcome: outcome}, nil
}

// reconcileOutcome resolves a pending back-URL outcome by asking the gateway
// for the payment's current status. Lookup failures keep the reported
// outcome; the order just stays PENDING until the next callback.
func (s *Service) reconcileOutcome(ctx context.Context, outcome enums.PaymentOutcome, paymentID string) enums.PaymentOutcome {
	if outcome != enums.PaymentOutcomePending || s.gateway == nil || strings.TrimSpace(paymentID) == "" {
		return outcome
	}

	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		s.logError(ctx, "reconcile pending payment", err)
		return outcome
	}

	switch payment.Status {
	case mercadopago.PaymentStatusApproved:
		return enums.PaymentOutcomeSuccess
	case mercadopago.PaymentStatusRejected, mercadopago.PaymentStatusCancelled:
		return enums.PaymentOutcomeFailure
	}
	return outcome
}

func (s *Service) acquireLock(ctx context.Context, userID uuid.UUID) (func(), error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	key := s.locks.CheckoutLockKey(userID.String())
	acquired, err := s.locks.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), s.opts.AttemptLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a checkout is already in progress")
	}
	return func() {
		if err := s.locks.Del(ctx, key); err != nil {
			s.logError(ctx, "release checkout lock", err)
		}
	}, nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, event events.Event) {
	if err := s.notifier.Publish(ctx, userID, event); err != nil {
		s.logError(ctx, "publish client event", err)
	}
}

func (s *Service) logOrder(ctx context.Context, msg string, order *orders.OrderDTO) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":    order.ID.String(),
		"user_id":     order.UserID.String(),
		"status":      order.Status.String(),
		"total_cents": order.TotalCents,
	})
	s.logg.Info(logCtx, msg)
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, msg, err)
}

func failureReason(err error) string {
	if domainErr := pkgerrors.As(err); domainErr != nil {
		return string(domainErr.Code())
	}
	return "internal"
}
