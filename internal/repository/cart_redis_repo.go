package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"proshop/internal/domain"
	"proshop/pkg/cache"
	"time"

	"github.com/sirupsen/logrus"
)

type redisCartRepository struct {
	store cache.Store
	ttl   time.Duration
	log   *logrus.Logger
}

// NewRedisCartRepository stores each session's cart as one JSON snapshot that
// expires ttl after the last save.
func NewRedisCartRepository(store cache.Store, ttl time.Duration, logger *logrus.Logger) domain.CartRepository {
	return &redisCartRepository{
		store: store,
		ttl:   ttl,
		log:   logger,
	}
}

func cartKey(session domain.SessionID) string {
	return "cart:" + session.String()
}

func (r *redisCartRepository) LoadCart(ctx context.Context, session domain.SessionID) (domain.Cart, error) {
	raw, err := r.store.Get(ctx, cartKey(session)).Bytes()
	if cache.IsMiss(err) {
		r.log.Debugf("No cart stored for session %s", session)
		return domain.Cart{Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		r.log.Errorf("Failed to load cart for session %s: %v", session, err)
		return domain.Cart{}, fmt.Errorf("could not load cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		r.log.Errorf("Failed to decode cart for session %s: %v", session, err)
		return domain.Cart{}, fmt.Errorf("could not decode cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

func (r *redisCartRepository) SaveCart(ctx context.Context, session domain.SessionID, cart domain.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("could not encode cart: %w", err)
	}
	if err := r.store.Set(ctx, cartKey(session), payload, r.ttl).Err(); err != nil {
		r.log.Errorf("Failed to save cart for session %s: %v", session, err)
		return fmt.Errorf("could not save cart: %w", err)
	}
	r.log.Debugf("Saved cart for session %s with %d lines", session, cart.Len())
	return nil
}

func (r *redisCartRepository) DeleteCart(ctx context.Context, session domain.SessionID) error {
	if err := r.store.Del(ctx, cartKey(session)).Err(); err != nil {
		r.log.Errorf("Failed to delete cart for session %s: %v", session, err)
		return fmt.Errorf("could not delete cart: %w", err)
	}
	return nil
}
