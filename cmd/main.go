package main

import (
	"context"
	"os"
	"os/signal"
	"proshop/config"
	"proshop/internal/clients"
	"proshop/internal/domain"
	"proshop/internal/repository"
	"proshop/internal/usecase"
	"proshop/pkg/cache"
	"proshop/pkg/db"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting storefront core...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("FATAL: Failed to connect to database: %v", err)
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	logger.Info("Database connection established.")

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("FATAL: Failed to connect to redis at %s: %v", cfg.RedisAddr, err)
	}
	defer redisClient.Close()
	logger.Info("Redis connection established.")

	catalog := clients.NewCachedCatalogClient(
		clients.NewCatalogHTTPClient(cfg.CatalogServiceURL, cfg.CatalogTimeout, logger),
		redisClient,
		cfg.CatalogCacheTTL,
		logger,
	)
	logger.Infof("Catalog client initialized for target: %s", cfg.CatalogServiceURL)

	// --- Dependency Injection ---
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	reviewRepo := repository.NewPostgresReviewRepository(database, logger)
	cartRepo := repository.NewRedisCartRepository(redisClient, cfg.CartTTL, logger)
	logger.Info("Repositories initialized.")

	orderUseCase := usecase.NewOrderUseCase(orderRepo, catalog, logger)
	reviewUseCase := usecase.NewReviewUseCase(orderRepo, reviewRepo, logger)
	cartUseCase := usecase.NewCartUseCase(cartRepo, orderRepo, catalog, logger)
	logger.Info("Use cases initialized.")

	if cfg.ReportSessionID != "" {
		session, err := uuid.Parse(cfg.ReportSessionID)
		if err != nil {
			logger.Fatalf("FATAL: Invalid REPORT_SESSION_ID '%s': %v", cfg.ReportSessionID, err)
		}
		if err := reportCart(ctx, logger, session, cartUseCase); err != nil {
			logger.Errorf("Cart report for session %s failed: %v", session, err)
			os.Exit(1)
		}
	}

	if cfg.ReportUserID <= 0 {
		logger.Info("REPORT_USER_ID not set, nothing to report.")
		return
	}
	if err := report(ctx, logger, cfg.ReportUserID, orderUseCase, reviewUseCase); err != nil {
		logger.Errorf("Report for user %d failed: %v", cfg.ReportUserID, err)
		os.Exit(1)
	}
}

// reportCart reconciles a session's cart with live stock and logs the result.
func reportCart(ctx context.Context, logger *logrus.Logger, session domain.SessionID, carts domain.CartUseCase) error {
	summary, adjustments, err := carts.RefreshStock(ctx, session)
	if err != nil {
		return err
	}
	for _, a := range adjustments {
		logger.WithFields(logrus.Fields{
			"product_id": a.ProductID,
			"reason":     a.Reason,
			"from":       a.OldQuantity,
			"to":         a.NewQuantity,
		}).Warn("Cart line adjusted")
	}
	prices := domain.NewPriceSummary(summary.Cart)
	logger.WithFields(logrus.Fields{
		"session":  session.String(),
		"lines":    summary.Cart.Len(),
		"quantity": summary.TotalQuantity,
		"subtotal": summary.Subtotal,
		"shipping": prices.ShippingPrice.StringFixed(2),
		"tax":      prices.TaxPrice.StringFixed(2),
		"total":    prices.TotalPrice.StringFixed(2),
	}).Info("Cart")
	return nil
}

type orderTab struct {
	name  string
	views []domain.OrderView
}

// orderTabs lists the history tabs in display order.
func orderTabs(history *domain.OrderHistory) []orderTab {
	return []orderTab{
		{"open", history.Open},
		{"closed", history.Closed},
	}
}

// report logs one shopper's order history and pending reviews.
func report(ctx context.Context, logger *logrus.Logger, userID int, orders domain.OrderUseCase, reviews domain.ReviewUseCase) error {
	history, err := orders.ListUserOrders(ctx, userID)
	if err != nil {
		return err
	}
	for _, tab := range orderTabs(history) {
		for _, v := range tab.views {
			logger.WithFields(logrus.Fields{
				"tab":      tab.name,
				"order_id": v.Order.ID,
				"items":    v.Order.ItemCount(),
				"status":   v.Label.String(),
				"total":    v.Order.TotalPrice.StringFixed(2),
				"actions":  v.Actions,
			}).Info("Order")
		}
	}

	pending, err := reviews.PendingReviews(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range pending {
		logger.WithFields(logrus.Fields{
			"product_id": p.ProductID,
			"name":       p.Name,
			"order_id":   p.OrderID,
		}).Info("Pending review")
	}
	return nil
}
