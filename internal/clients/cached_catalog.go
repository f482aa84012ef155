package clients

import (
	"context"
	"encoding/json"
	"proshop/pkg/cache"
	"time"

	"github.com/sirupsen/logrus"
)

const productListKey = "catalog:products"

// cachedCatalogClient keeps the product list in redis for ttl. Single product
// lookups always go to the catalog because they feed cart stock ceilings.
type cachedCatalogClient struct {
	next  CatalogClient
	store cache.Store
	ttl   time.Duration
	log   *logrus.Logger
}

func NewCachedCatalogClient(next CatalogClient, store cache.Store, ttl time.Duration, logger *logrus.Logger) CatalogClient {
	return &cachedCatalogClient{
		next:  next,
		store: store,
		ttl:   ttl,
		log:   logger,
	}
}

func (c *cachedCatalogClient) GetProduct(ctx context.Context, productID int) (*Product, error) {
	return c.next.GetProduct(ctx, productID)
}

func (c *cachedCatalogClient) ListProducts(ctx context.Context) ([]Product, error) {
	raw, err := c.store.Get(ctx, productListKey).Bytes()
	switch {
	case err == nil:
		var products []Product
		jsonErr := json.Unmarshal(raw, &products)
		if jsonErr == nil {
			c.log.Debugf("CatalogCache: Served %d products from cache", len(products))
			return products, nil
		}
		c.log.Warnf("CatalogCache: Discarding unreadable cache entry: %v", jsonErr)
	case cache.IsMiss(err):
		c.log.Debug("CatalogCache: Cache miss for product list")
	default:
		c.log.Warnf("CatalogCache: Cache read failed, falling back to catalog: %v", err)
	}

	products, err := c.next.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(products)
	if err != nil {
		c.log.Warnf("CatalogCache: Failed to encode product list: %v", err)
		return products, nil
	}
	if err := c.store.Set(ctx, productListKey, payload, c.ttl).Err(); err != nil {
		c.log.Warnf("CatalogCache: Failed to store product list: %v", err)
	}
	return products, nil
}
