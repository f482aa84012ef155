package usecase

import (
	"context"
	"errors"
	"fmt"
	"proshop/internal/clients"
	"proshop/internal/domain"
	"time"

	"github.com/sirupsen/logrus"
)

var _ domain.OrderUseCase = (*orderUseCase)(nil)

type orderUseCase struct {
	orderRepo domain.OrderRepository
	catalog   clients.CatalogClient
	log       *logrus.Logger
	now       func() time.Time
}

func NewOrderUseCase(repo domain.OrderRepository, catalog clients.CatalogClient, logger *logrus.Logger) domain.OrderUseCase {
	return &orderUseCase{
		orderRepo: repo,
		catalog:   catalog,
		log:       logger,
		now:       time.Now,
	}
}

// stockLookup returns a lookup over the live catalog. When the catalog cannot
// be reached every product counts as in stock.
func (uc *orderUseCase) stockLookup(ctx context.Context) domain.StockLookup {
	products, err := uc.catalog.ListProducts(ctx)
	if err != nil {
		uc.log.Warnf("Use Case: Catalog unavailable, classifying without stock data: %v", err)
		return nil
	}
	return domain.NewStockIndex(clients.StockSnapshot(products))
}

func (uc *orderUseCase) GetOrderView(ctx context.Context, id int) (*domain.OrderView, error) {
	if id <= 0 {
		return nil, errors.New("invalid order ID")
	}
	uc.log.Infof("Use Case: Attempting to get order with ID %d", id)

	order, err := uc.orderRepo.GetOrderByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get order ID %d: %v", id, err)
		return nil, err
	}

	view := domain.NewOrderView(*order, uc.stockLookup(ctx), uc.now())
	uc.log.Infof("Use Case: Order %d classified as '%s'", id, view.Label)
	return &view, nil
}

func (uc *orderUseCase) ListUserOrders(ctx context.Context, userID int) (*domain.OrderHistory, error) {
	if userID <= 0 {
		return nil, errors.New("invalid user ID")
	}
	uc.log.Infof("Use Case: Attempting to list orders for user %d", userID)

	orders, err := uc.orderRepo.ListOrdersByUserID(userID)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list orders for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve orders for user %d: %w", userID, err)
	}

	history := domain.PartitionOrders(orders, uc.stockLookup(ctx), uc.now())
	uc.log.Infof("Use Case: User %d has %d open and %d closed orders", userID, len(history.Open), len(history.Closed))
	return &history, nil
}

// MarkAsPaid records a cash payment collected on delivery.
func (uc *orderUseCase) MarkAsPaid(ctx context.Context, id int) (*domain.Order, error) {
	view, err := uc.GetOrderView(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.Order.IsPaid {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrAlreadyPaid)
	}
	if !view.Actions.MarkAsPaid {
		uc.log.Warnf("Use Case: Refusing to mark order %d as paid in status '%s'", id, view.Label)
		return nil, fmt.Errorf("mark as paid on '%s' order %d: %w", view.Label, id, domain.ErrActionNotAllowed)
	}

	updated, err := uc.orderRepo.MarkOrderPaid(id, uc.now())
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to mark order %d as paid: %v", id, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Order %d marked as paid", id)
	return updated, nil
}

func (uc *orderUseCase) MarkAsDelivered(ctx context.Context, id int) (*domain.Order, error) {
	view, err := uc.GetOrderView(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.Order.IsDelivered {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrAlreadyDelivered)
	}
	if !view.Actions.MarkAsDelivered {
		uc.log.Warnf("Use Case: Refusing to mark order %d as delivered in status '%s'", id, view.Label)
		return nil, fmt.Errorf("mark as delivered on '%s' order %d: %w", view.Label, id, domain.ErrActionNotAllowed)
	}

	updated, err := uc.orderRepo.MarkOrderDelivered(id, uc.now())
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to mark order %d as delivered: %v", id, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Order %d marked as delivered", id)
	return updated, nil
}

// ApplyPaymentOutcome handles the payment gateway callback for a PayPal order.
// A declined payment leaves the order untouched; it will expire on its own.
func (uc *orderUseCase) ApplyPaymentOutcome(ctx context.Context, id int, outcome domain.PaymentOutcome) (*domain.Order, error) {
	view, err := uc.GetOrderView(ctx, id)
	if err != nil {
		return nil, err
	}
	order := view.Order

	if order.IsPaid {
		uc.log.Warnf("Use Case: Payment callback for already paid order %d (transaction %s)", id, outcome.TransactionID)
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrAlreadyPaid)
	}
	if !view.Actions.Pay {
		uc.log.Warnf("Use Case: Payment callback for order %d in status '%s' ignored", id, view.Label)
		return nil, fmt.Errorf("pay '%s' order %d: %w", view.Label, id, domain.ErrActionNotAllowed)
	}
	if !outcome.Approved {
		uc.log.Infof("Use Case: Payment for order %d was declined (transaction %s)", id, outcome.TransactionID)
		return &order, nil
	}
	if !outcome.Amount.Equal(order.TotalPrice) {
		uc.log.Warnf("Use Case: Payment amount %s for order %d does not match total %s", outcome.Amount, id, order.TotalPrice)
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrPaymentAmountMismatch)
	}

	updated, err := uc.orderRepo.MarkOrderPaid(id, uc.now())
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to record payment for order %d: %v", id, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Payment %s recorded for order %d", outcome.TransactionID, id)
	return updated, nil
}
