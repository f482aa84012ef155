package usecase

import (
	"context"
	"errors"
	"fmt"
	"proshop/internal/clients"
	"proshop/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.CartUseCase = (*cartUseCase)(nil)

type cartUseCase struct {
	cartRepo  domain.CartRepository
	orderRepo domain.OrderRepository
	catalog   clients.CatalogClient
	locks     *sessionLocks
	log       *logrus.Logger
}

func NewCartUseCase(cartRepo domain.CartRepository, orderRepo domain.OrderRepository, catalog clients.CatalogClient, logger *logrus.Logger) domain.CartUseCase {
	return &cartUseCase{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		catalog:   catalog,
		locks:     newSessionLocks(),
		log:       logger,
	}
}

// mutate loads the session's cart, applies fn and saves the result. Nothing is
// saved when fn fails.
func (uc *cartUseCase) mutate(ctx context.Context, session domain.SessionID, op string, fn func(domain.Cart) (domain.Cart, error)) (*domain.CartSummary, error) {
	unlock := uc.locks.lock(session)
	defer unlock()

	cart, err := uc.cartRepo.LoadCart(ctx, session)
	if err != nil {
		uc.log.Errorf("Use Case: %s: failed to load cart for session %s: %v", op, session, err)
		return nil, err
	}

	next, err := fn(cart)
	if err != nil {
		uc.log.Warnf("Use Case: %s rejected for session %s: %v", op, session, err)
		return nil, err
	}

	if err := uc.cartRepo.SaveCart(ctx, session, next); err != nil {
		uc.log.Errorf("Use Case: %s: failed to save cart for session %s: %v", op, session, err)
		return nil, err
	}

	uc.log.Infof("Use Case: %s applied for session %s (%d lines, %d units)", op, session, next.Len(), next.TotalQuantity())
	return domain.NewCartSummary(next), nil
}

func (uc *cartUseCase) GetCart(ctx context.Context, session domain.SessionID) (*domain.CartSummary, error) {
	cart, err := uc.cartRepo.LoadCart(ctx, session)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load cart for session %s: %v", session, err)
		return nil, err
	}
	return domain.NewCartSummary(cart), nil
}

// AddItem fetches the product so the line carries the current price and
// stock ceiling, then writes it with the requested quantity.
func (uc *cartUseCase) AddItem(ctx context.Context, session domain.SessionID, productID, quantity int) (*domain.CartSummary, error) {
	if productID <= 0 {
		return nil, errors.New("invalid product ID")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("product %d: %w", productID, domain.ErrInvalidQuantity)
	}

	product, err := uc.catalog.GetProduct(ctx, productID)
	if err != nil {
		uc.log.Warnf("Use Case: Catalog lookup failed for Product ID %d: %v", productID, err)
		return nil, fmt.Errorf("catalog lookup failed for product %d: %w", productID, err)
	}

	return uc.mutate(ctx, session, "add item", func(c domain.Cart) (domain.Cart, error) {
		return c.Add(product.CartItem(quantity))
	})
}

func (uc *cartUseCase) IncrementItem(ctx context.Context, session domain.SessionID, productID int) (*domain.CartSummary, error) {
	return uc.mutate(ctx, session, "increment", func(c domain.Cart) (domain.Cart, error) {
		return c.Increment(productID)
	})
}

func (uc *cartUseCase) DecrementItem(ctx context.Context, session domain.SessionID, productID int) (*domain.CartSummary, error) {
	return uc.mutate(ctx, session, "decrement", func(c domain.Cart) (domain.Cart, error) {
		return c.Decrement(productID)
	})
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, session domain.SessionID, productID int) (*domain.CartSummary, error) {
	return uc.mutate(ctx, session, "remove", func(c domain.Cart) (domain.Cart, error) {
		return c.Remove(productID), nil
	})
}

func (uc *cartUseCase) ClearCart(ctx context.Context, session domain.SessionID) error {
	_, err := uc.mutate(ctx, session, "clear", func(c domain.Cart) (domain.Cart, error) {
		return c.Clear(), nil
	})
	return err
}

// RefreshStock re-reads the stock of every cart line and reconciles the cart.
// Products the catalog no longer knows keep their last ceiling.
func (uc *cartUseCase) RefreshStock(ctx context.Context, session domain.SessionID) (*domain.CartSummary, []domain.CartAdjustment, error) {
	var adjustments []domain.CartAdjustment
	summary, err := uc.mutate(ctx, session, "refresh stock", func(c domain.Cart) (domain.Cart, error) {
		stock := make([]domain.ProductStock, 0, c.Len())
		for _, item := range c.Items {
			product, err := uc.catalog.GetProduct(ctx, item.ProductID)
			if errors.Is(err, clients.ErrProductNotFound) {
				uc.log.Warnf("Use Case: Product %d no longer in catalog, keeping cart line", item.ProductID)
				continue
			}
			if err != nil {
				return c, fmt.Errorf("catalog lookup failed for product %d: %w", item.ProductID, err)
			}
			stock = append(stock, product.Stock())
		}
		next, adj := c.Reconcile(stock)
		adjustments = adj
		return next, nil
	})
	if err != nil {
		return nil, nil, err
	}
	for _, a := range adjustments {
		uc.log.Infof("Use Case: Cart line for product %d adjusted (%s): %d -> %d", a.ProductID, a.Reason, a.OldQuantity, a.NewQuantity)
	}
	return summary, adjustments, nil
}

// PlaceOrder turns the session's cart into an order. Lines are frozen as they
// are in the cart, stock is checked once more against the catalog, and the
// cart is cleared only after the order is stored.
func (uc *cartUseCase) PlaceOrder(ctx context.Context, session domain.SessionID, userID int, method domain.PaymentMethod, address domain.ShippingAddress) (*domain.Order, error) {
	if userID <= 0 {
		return nil, errors.New("invalid user ID")
	}
	if !domain.IsValidPaymentMethod(method) {
		return nil, fmt.Errorf("%q: %w", method, domain.ErrInvalidPaymentMethod)
	}

	unlock := uc.locks.lock(session)
	defer unlock()

	cart, err := uc.cartRepo.LoadCart(ctx, session)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load cart for session %s: %v", session, err)
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	uc.log.Infof("Use Case: Starting stock check for checkout of session %s (user %d)", session, userID)
	for _, item := range cart.Items {
		product, err := uc.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			uc.log.Warnf("Use Case: Inventory check failed for Product ID %d: %v", item.ProductID, err)
			return nil, fmt.Errorf("inventory check failed for product %d: %w", item.ProductID, err)
		}
		if product.CountInStock < item.Quantity {
			uc.log.Warnf("Use Case: Insufficient stock for Product ID %d (Requested: %d, Available: %d)", item.ProductID, item.Quantity, product.CountInStock)
			return nil, fmt.Errorf("product %d (requested %d, available %d): %w", item.ProductID, item.Quantity, product.CountInStock, domain.ErrOutOfStock)
		}
	}

	prices := domain.NewPriceSummary(cart)
	order := &domain.Order{
		UserID:          userID,
		Items:           domain.OrderItemsFromCart(cart),
		ShippingAddress: address,
		PaymentMethod:   method,
		ItemsPrice:      prices.ItemsPrice,
		ShippingPrice:   prices.ShippingPrice,
		TaxPrice:        prices.TaxPrice,
		TotalPrice:      prices.TotalPrice,
	}

	created, err := uc.orderRepo.CreateOrder(order)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create order for user %d: %v", userID, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if err := uc.cartRepo.DeleteCart(ctx, session); err != nil {
		uc.log.Errorf("Use Case: Order %d created but cart for session %s was not cleared: %v", created.ID, session, err)
	}

	uc.log.Infof("Use Case: Order created successfully with ID %d for user %d (total %s)", created.ID, userID, created.TotalPrice.StringFixed(2))
	return created, nil
}
