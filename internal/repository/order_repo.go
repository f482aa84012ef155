package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"proshop/internal/domain"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const orderColumns = `
        id, user_id, payment_method, address, city, postal_code, country,
        items_price, shipping_price, tax_price, total_price,
        is_paid, paid_at, is_delivered, delivered_at, created_at
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

func scanOrder(row rowScanner, order *domain.Order) error {
	return row.Scan(
		&order.ID,
		&order.UserID,
		&order.PaymentMethod,
		&order.ShippingAddress.Address,
		&order.ShippingAddress.City,
		&order.ShippingAddress.PostalCode,
		&order.ShippingAddress.Country,
		&order.ItemsPrice,
		&order.ShippingPrice,
		&order.TaxPrice,
		&order.TotalPrice,
		&order.IsPaid,
		&order.PaidAt,
		&order.IsDelivered,
		&order.DeliveredAt,
		&order.CreatedAt,
	)
}

func (r *postgresOrderRepository) CreateOrder(order *domain.Order) (created *domain.Order, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Rolling back transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			r.log.Errorf("Failed to commit transaction: %v", cErr)
			created = nil
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	orderQuery := `
        INSERT INTO orders (user_id, payment_method, address, city, postal_code, country,
                            items_price, shipping_price, tax_price, total_price)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, is_paid, is_delivered, created_at
    `
	addr := order.ShippingAddress
	err = tx.QueryRow(orderQuery,
		order.UserID, order.PaymentMethod, addr.Address, addr.City, addr.PostalCode, addr.Country,
		order.ItemsPrice, order.ShippingPrice, order.TaxPrice, order.TotalPrice,
	).Scan(
		&order.ID,
		&order.IsPaid,
		&order.IsDelivered,
		&order.CreatedAt,
	)
	if err != nil {
		r.log.Errorf("Failed to insert order for user %d: %v", order.UserID, err)
		return nil, fmt.Errorf("could not create order entry: %w", err)
	}
	r.log.Infof("Order entry created with ID: %d for user: %d", order.ID, order.UserID)

	itemQuery := `
        INSERT INTO order_items (order_id, product_id, name, image, qty, price)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	stmt, err := tx.Prepare(itemQuery)
	if err != nil {
		r.log.Errorf("Failed to prepare order item statement: %v", err)
		return nil, fmt.Errorf("could not prepare item statement: %w", err)
	}
	defer stmt.Close()

	for i := range order.Items {
		item := &order.Items[i]
		_, err = stmt.Exec(order.ID, item.ProductID, item.Name, item.Image, item.Quantity, item.Price)
		if err != nil {
			r.log.Errorf("Failed to insert order item (product_id: %d, quantity: %d) for order %d: %v", item.ProductID, item.Quantity, order.ID, err)

			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23514" {
				return nil, fmt.Errorf("invalid item data (product_id: %d): %s", item.ProductID, pqErr.Message)
			}
			return nil, fmt.Errorf("could not create order item (product_id: %d): %w", item.ProductID, err)
		}
	}

	r.log.Infof("Order %d created successfully with %d items.", order.ID, len(order.Items))
	return order, nil
}

func (r *postgresOrderRepository) GetOrderByID(id int) (*domain.Order, error) {
	order := &domain.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	if err := scanOrder(r.db.QueryRow(query, id), order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found", id)
			return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrOrderNotFound)
		}
		r.log.Errorf("Failed to get order by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	if err := r.attachItems([]*domain.Order{order}); err != nil {
		return nil, err
	}

	r.log.Infof("Order %d retrieved successfully with %d items.", order.ID, len(order.Items))
	return order, nil
}

func (r *postgresOrderRepository) ListOrdersByUserID(userID int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.log.Errorf("Failed to list orders for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			r.log.Errorf("Failed to scan order row for user ID %d: %v", userID, err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during orders iteration for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		r.log.Infof("No orders found for user ID %d", userID)
		return orders, nil
	}

	ptrs := make([]*domain.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := r.attachItems(ptrs); err != nil {
		return nil, err
	}

	r.log.Infof("Retrieved %d orders for user ID %d", len(orders), userID)
	return orders, nil
}

func (r *postgresOrderRepository) attachItems(orders []*domain.Order) error {
	ids := make([]int, 0, len(orders))
	byID := make(map[int]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Items = []domain.OrderItem{}
	}

	itemsQuery := `
        SELECT order_id, product_id, name, image, qty, price
        FROM order_items
        WHERE order_id = ANY($1::int[])
        ORDER BY order_id, id
    `
	rows, err := r.db.Query(itemsQuery, pq.Array(ids))
	if err != nil {
		r.log.Errorf("Failed to query items for orders %v: %v", ids, err)
		return fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var orderID int
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Image, &item.Quantity, &item.Price); err != nil {
			r.log.Errorf("Failed to scan order item row: %v", err)
			return fmt.Errorf("error scanning order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error during order items iteration: %v", err)
		return fmt.Errorf("error iterating order items: %w", err)
	}

	r.log.Debugf("Attached items for %d orders", len(orders))
	return nil
}

func (r *postgresOrderRepository) MarkOrderPaid(id int, at time.Time) (*domain.Order, error) {
	query := `
        UPDATE orders SET is_paid = TRUE, paid_at = $2
        WHERE id = $1 AND is_paid = FALSE
        RETURNING ` + orderColumns
	return r.flipOnce(id, query, at, domain.ErrAlreadyPaid)
}

func (r *postgresOrderRepository) MarkOrderDelivered(id int, at time.Time) (*domain.Order, error) {
	query := `
        UPDATE orders SET is_delivered = TRUE, delivered_at = $2
        WHERE id = $1 AND is_delivered = FALSE
        RETURNING ` + orderColumns
	return r.flipOnce(id, query, at, domain.ErrAlreadyDelivered)
}

// flipOnce runs a conditional update. No row back means the order is missing
// or the flag was already set; the two are told apart with a second lookup.
func (r *postgresOrderRepository) flipOnce(id int, query string, at time.Time, alreadySet error) (*domain.Order, error) {
	order := &domain.Order{}
	err := scanOrder(r.db.QueryRow(query, id, at), order)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			r.log.Errorf("Failed to check existence of order %d: %v", id, err)
			return nil, fmt.Errorf("could not check order: %w", err)
		}
		if !exists {
			r.log.Warnf("Order with ID %d not found for update", id)
			return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrOrderNotFound)
		}
		r.log.Warnf("Order %d: %v", id, alreadySet)
		return nil, fmt.Errorf("order with id %d: %w", id, alreadySet)
	}
	if err != nil {
		r.log.Errorf("Failed to update order %d: %v", id, err)
		return nil, fmt.Errorf("could not update order: %w", err)
	}

	if err := r.attachItems([]*domain.Order{order}); err != nil {
		return nil, err
	}
	r.log.Infof("Order %d updated (paid=%v, delivered=%v)", order.ID, order.IsPaid, order.IsDelivered)
	return order, nil
}
