package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/internal/cart"
	"github.com/comicverse/comicverse-backend/internal/catalog"
	"github.com/comicverse/comicverse-backend/pkg/db/models"
	"github.com/comicverse/comicverse-backend/pkg/enums"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/outbox"
	"github.com/comicverse/comicverse-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateParams controls how an order is built from the user's cart.
type CreateParams struct {
	UserID            uuid.UUID
	PaymentMethod     enums.PaymentMethod
	Status            enums.OrderStatus
	ExternalReference *string
	ClearCart         bool
	Actor             *outbox.ActorRef
}

// Service builds orders from carts and drives the order status machine.
type Service interface {
	CreateFromCart(ctx context.Context, params CreateParams) (*OrderDTO, error)
	GetByID(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	GetByExternalReference(ctx context.Context, ref string) (*OrderDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actor *outbox.ActorRef) (*OrderDTO, error)
	ConfirmByExternalReference(ctx context.Context, ref string) (*OrderDTO, error)
	CancelByExternalReference(ctx context.Context, ref string) (*OrderDTO, error)
}

type service struct {
	repo             Repository
	tx               txRunner
	carts            cart.Store
	mangas           catalog.Repository
	events           eventEmitter
	shippingFeeCents int64
}

// NewService wires the order builder. Every dependency is required.
func NewService(repo Repository, tx txRunner, carts cart.Store, mangas catalog.Repository, events eventEmitter, shippingFeeCents int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if mangas == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if shippingFeeCents < 0 {
		return nil, fmt.Errorf("shipping fee must not be negative")
	}
	return &service{
		repo:             repo,
		tx:               tx,
		carts:            carts,
		mangas:           mangas,
		events:           events,
		shippingFeeCents: shippingFeeCents,
	}, nil
}

type orderCreatedPayload struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	TotalCents    int64  `json:"total_cents"`
	LineCount     int    `json:"line_count"`
}

type orderStatusPayload struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// CreateFromCart snapshots the cart into an immutable order inside one
// transaction. Stock is decremented atomically per line, so a concurrent
// checkout that drains stock rolls the whole order back.
func (s *service) CreateFromCart(ctx context.Context, params CreateParams) (*OrderDTO, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !params.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	status := params.Status
	if status == "" {
		status = enums.OrderStatusPending
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		mangas := s.mangas.WithTx(tx)
		repo := s.repo.WithTx(tx)

		lines, err := carts.Lines(ctx, params.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		order := &models.Order{
			UserID:            params.UserID,
			Status:            status,
			PaymentMethod:     params.PaymentMethod,
			ShippingFeeCents:  s.shippingFeeCents,
			ExternalReference: params.ExternalReference,
			Lines:             make([]models.OrderLine, 0, len(lines)),
		}

		for _, line := range lines {
			manga, err := mangas.FindByID(ctx, line.MangaID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "cart references a removed manga")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manga")
			}
			if !manga.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is no longer available", manga.Title))
			}

			if err := mangas.DecrementStock(ctx, manga.ID, line.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeStockExceeded, fmt.Sprintf("insufficient stock for %s", manga.Title))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}

			unit := manga.EffectivePriceCents()
			lineSubtotal := unit * int64(line.Quantity)
			order.Lines = append(order.Lines, models.OrderLine{
				MangaID:           manga.ID,
				Title:             manga.Title,
				Quantity:          line.Quantity,
				UnitPriceCents:    unit,
				LineSubtotalCents: lineSubtotal,
			})
			order.SubtotalCents += lineSubtotal
		}
		order.TotalCents = order.SubtotalCents + order.ShippingFeeCents

		if created, err = repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if params.ClearCart {
			if err := carts.Clear(ctx, params.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
			}
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Actor:         params.Actor,
			Data: orderCreatedPayload{
				OrderID:       created.ID.String(),
				UserID:        created.UserID.String(),
				Status:        created.Status.String(),
				PaymentMethod: created.PaymentMethod.String(),
				TotalCents:    created.TotalCents,
				LineCount:     len(created.Lines),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(created)
	return &dto, nil
}

// GetByID returns the order only to its owner.
func (s *service) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if userID != uuid.Nil && order.UserID != userID {
		// Hide existence of other users' orders.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := toDTO(order)
	return &dto, nil
}

func (s *service) GetByExternalReference(ctx context.Context, ref string) (*OrderDTO, error) {
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external reference is required")
	}
	order, err := s.repo.FindByExternalReference(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := toDTO(order)
	return &dto, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	rows, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &ListResult{Items: make([]OrderDTO, 0, len(rows))}
	for i := range rows {
		if len(result.Items) == limit {
			break
		}
		result.Items = append(result.Items, toDTO(&rows[i]))
	}
	if len(rows) > limit && len(result.Items) > 0 {
		last := result.Items[len(result.Items)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// UpdateStatus applies an admin-driven transition. A move the status machine
// does not allow fails with a state conflict. Cancelling restocks every line.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actor *outbox.ActorRef) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		updated, err = s.transition(ctx, tx, func(repo Repository) (*models.Order, error) {
			return repo.FindByID(ctx, orderID)
		}, target, enums.EventOrderStatus, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(updated)
	return &dto, nil
}

// ConfirmByExternalReference moves a redirect-checkout order from PENDING to
// CONFIRMED. Confirming an already confirmed order is a no-op so duplicate
// payment callbacks stay harmless.
func (s *service) ConfirmByExternalReference(ctx context.Context, ref string) (*OrderDTO, error) {
	return s.resolveByExternalReference(ctx, ref, enums.OrderStatusConfirmed, enums.EventOrderConfirmed)
}

// CancelByExternalReference cancels a redirect-checkout order and restocks
// its lines. Cancelling an already cancelled order is a no-op.
func (s *service) CancelByExternalReference(ctx context.Context, ref string) (*OrderDTO, error) {
	return s.resolveByExternalReference(ctx, ref, enums.OrderStatusCancelled, enums.EventOrderCanceled)
}

func (s *service) resolveByExternalReference(ctx context.Context, ref string, target enums.OrderStatus, eventType enums.OutboxEventType) (*OrderDTO, error) {
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external reference is required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		updated, err = s.transition(ctx, tx, func(repo Repository) (*models.Order, error) {
			return repo.FindByExternalReference(ctx, ref)
		}, target, eventType, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(updated)
	return &dto, nil
}

type orderFinder func(repo Repository) (*models.Order, error)

func (s *service) transition(ctx context.Context, tx *gorm.DB, find orderFinder, target enums.OrderStatus, eventType enums.OutboxEventType, actor *outbox.ActorRef) (*models.Order, error) {
	repo := s.repo.WithTx(tx)

	order, err := find(repo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.Status == target {
		return order, nil
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
	}

	if target == enums.OrderStatusCancelled {
		mangas := s.mangas.WithTx(tx)
		for _, line := range order.Lines {
			if err := mangas.IncrementStock(ctx, line.MangaID, line.Quantity); err != nil {
				// Restocking a deleted manga is skipped, not fatal.
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock line")
			}
		}
	}

	from := order.Status
	if err := repo.UpdateStatus(ctx, order.ID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = target

	err = s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: orderStatusPayload{
			OrderID:    order.ID.String(),
			UserID:     order.UserID.String(),
			FromStatus: from.String(),
			ToStatus:   target.String(),
		},
		Version: 1,
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
