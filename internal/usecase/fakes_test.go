package usecase

import (
	"context"
	"errors"
	"io"
	"proshop/internal/clients"
	"proshop/internal/domain"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[int]*domain.Order
	nextID    int
	createErr error
	created   []domain.Order
}

func newFakeOrderRepo(orders ...domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[int]*domain.Order{}, nextID: 100}
	for i := range orders {
		o := orders[i]
		r.orders[o.ID] = &o
	}
	return r
}

func (r *fakeOrderRepo) CreateOrder(order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	stored := *order
	r.orders[order.ID] = &stored
	r.created = append(r.created, stored)
	return order, nil
}

func (r *fakeOrderRepo) GetOrderByID(id int) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) ListOrdersByUserID(userID int) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	// Newest first, like the Postgres repository.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *fakeOrderRepo) MarkOrderPaid(id int, at time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if err := o.MarkPaid(at); err != nil {
		return nil, err
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) MarkOrderDelivered(id int, at time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if err := o.MarkDelivered(at); err != nil {
		return nil, err
	}
	cp := *o
	return &cp, nil
}

type fakeReviewRepo struct {
	reviews []domain.Review
}

func (r *fakeReviewRepo) CreateReview(review *domain.Review) (*domain.Review, error) {
	review.ID = len(r.reviews) + 1
	r.reviews = append(r.reviews, *review)
	return review, nil
}

func (r *fakeReviewRepo) ListReviewsByUserID(userID int) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range r.reviews {
		if rv.UserID == userID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type fakeCartRepo struct {
	mu      sync.Mutex
	carts   map[domain.SessionID]domain.Cart
	saves   int
	loadErr error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[domain.SessionID]domain.Cart{}}
}

func (r *fakeCartRepo) LoadCart(ctx context.Context, session domain.SessionID) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return domain.Cart{}, r.loadErr
	}
	return r.carts[session], nil
}

func (r *fakeCartRepo) SaveCart(ctx context.Context, session domain.SessionID, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.carts[session] = cart
	return nil
}

func (r *fakeCartRepo) DeleteCart(ctx context.Context, session domain.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, session)
	return nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int]clients.Product
	listErr  error
}

func newFakeCatalog(products ...clients.Product) *fakeCatalog {
	c := &fakeCatalog{products: map[int]clients.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) setStock(productID, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.products[productID]
	p.CountInStock = count
	c.products[productID] = p
}

func (c *fakeCatalog) GetProduct(ctx context.Context, productID int) (*clients.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, clients.ErrProductNotFound
	}
	return &p, nil
}

func (c *fakeCatalog) ListProducts(ctx context.Context) ([]clients.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	out := make([]clients.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	return out, nil
}

var errCatalogDown = errors.New("catalog down")
