package domain

// ProductStock is the catalog's current count for one product.
type ProductStock struct {
	ProductID    int `json:"product_id"`
	CountInStock int `json:"count_in_stock"`
}

// StockLookup reports the current count in stock for a product.
// ok is false when the catalog has no entry for it.
type StockLookup interface {
	CountInStock(productID int) (count int, ok bool)
}

type StockLookupFunc func(productID int) (int, bool)

func (f StockLookupFunc) CountInStock(productID int) (int, bool) {
	return f(productID)
}

// StockIndex is a StockLookup over a catalog snapshot.
type StockIndex map[int]int

func NewStockIndex(products []ProductStock) StockIndex {
	idx := make(StockIndex, len(products))
	for _, p := range products {
		idx[p.ProductID] = p.CountInStock
	}
	return idx
}

func (idx StockIndex) CountInStock(productID int) (int, bool) {
	count, ok := idx[productID]
	return count, ok
}

// ItemInStock is true when the product has stock left or when the catalog does
// not know the product at all. A nil lookup knows nothing.
func ItemInStock(productID int, stock StockLookup) bool {
	if stock == nil {
		return true
	}
	count, ok := stock.CountInStock(productID)
	if !ok {
		return true
	}
	return count > 0
}

func AllItemsInStock(items []OrderItem, stock StockLookup) bool {
	for _, item := range items {
		if !ItemInStock(item.ProductID, stock) {
			return false
		}
	}
	return true
}
