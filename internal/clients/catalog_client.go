package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"proshop/internal/domain"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrProductNotFound = errors.New("product not found in catalog")

type Product struct {
	ID           int             `json:"_id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
}

func (p Product) Stock() domain.ProductStock {
	return domain.ProductStock{ProductID: p.ID, CountInStock: p.CountInStock}
}

// CartItem snapshots the product into a cart line with the given quantity.
func (p Product) CartItem(quantity int) domain.CartItem {
	return domain.CartItem{
		ProductID:    p.ID,
		Name:         p.Name,
		Image:        p.Image,
		Price:        p.Price,
		CountInStock: p.CountInStock,
		Quantity:     quantity,
	}
}

func StockSnapshot(products []Product) []domain.ProductStock {
	stock := make([]domain.ProductStock, 0, len(products))
	for _, p := range products {
		stock = append(stock, p.Stock())
	}
	return stock
}

type CatalogClient interface {
	GetProduct(ctx context.Context, productID int) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
}

type catalogHTTPClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

func NewCatalogHTTPClient(baseURL string, timeout time.Duration, logger *logrus.Logger) CatalogClient {
	return &catalogHTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

func (c *catalogHTTPClient) GetProduct(ctx context.Context, productID int) (*Product, error) {
	url := fmt.Sprintf("%s/api/products/%d/", c.baseURL, productID)
	c.log.Infof("CatalogClient: Requesting product info from URL: %s", url)

	var product Product
	if err := c.getJSON(ctx, url, &product); err != nil {
		c.log.Warnf("CatalogClient: GetProduct failed for ID %d: %v", productID, err)
		return nil, fmt.Errorf("catalog lookup failed for product %d: %w", productID, err)
	}

	if product.ID != productID {
		c.log.Warnf("CatalogClient: Mismatched product ID in response. Requested %d, got %d", productID, product.ID)
	}
	c.log.Debugf("CatalogClient: Parsed product %d: Name='%s', Stock=%d, Price=%s",
		product.ID, product.Name, product.CountInStock, product.Price)
	return &product, nil
}

func (c *catalogHTTPClient) ListProducts(ctx context.Context) ([]Product, error) {
	url := fmt.Sprintf("%s/api/products/", c.baseURL)
	c.log.Infof("CatalogClient: Requesting product list from URL: %s", url)

	var products []Product
	if err := c.getJSON(ctx, url, &products); err != nil {
		c.log.Errorf("CatalogClient: ListProducts failed: %v", err)
		return nil, fmt.Errorf("catalog listing failed: %w", err)
	}

	c.log.Infof("CatalogClient: Retrieved %d products", len(products))
	return products, nil
}

func (c *catalogHTTPClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to communicate with catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("catalog returned 404: %w", ErrProductNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("catalog service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}
