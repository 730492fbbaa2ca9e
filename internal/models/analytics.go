package models

import "time"

// DateRange bounds an analytics query on order creation time. Nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Interval is the bucket width of a sales time series.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalMonth Interval = "month"
)

// Layout is the period label format for the interval.
func (i Interval) Layout() string {
	if i == IntervalMonth {
		return "2006-01"
	}
	return "2006-01-02"
}

// CategoryStats aggregates the active products of one category.
type CategoryStats struct {
	Category      Category `json:"category"`
	TotalProducts int64    `json:"total_products"`
	AveragePrice  float64  `json:"average_price"`
	TotalStock    int64    `json:"total_stock"`
	TotalSold     int64    `json:"total_sold"`
	AverageRating float64  `json:"average_rating"`
}

// RankedProduct is a product together with its weighted rating score.
type RankedProduct struct {
	Product
	Score float64 `json:"score"`
}

// SalesSummary covers all non-cancelled orders in a range.
type SalesSummary struct {
	TotalOrders       int64   `json:"total_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// ProductSales is the per-product breakdown of the sales report.
type ProductSales struct {
	ProductID     string   `json:"product_id"`
	ProductName   string   `json:"product_name"`
	Category      Category `json:"category"`
	TotalQuantity int64    `json:"total_quantity"`
	TotalRevenue  float64  `json:"total_revenue"`
	OrderCount    int64    `json:"order_count"`
	AveragePrice  float64  `json:"average_price"`
}

// SalesReport is returned by the sales analytics endpoint.
type SalesReport struct {
	Summary     SalesSummary   `json:"summary"`
	TopProducts []ProductSales `json:"top_products"`
}

// OrderTotal is the raw input of the sales time series.
type OrderTotal struct {
	CreatedAt time.Time
	Total     float64
}

// SalesPoint is one bucket of the sales time series.
type SalesPoint struct {
	Period       string  `json:"period"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  int64   `json:"total_orders"`
}

// StatusCount is one row of the order status histogram.
type StatusCount struct {
	Status OrderStatus `json:"status"`
	Count  int64       `json:"count"`
}

// UserOrderStats summarises a user's non-cancelled orders.
type UserOrderStats struct {
	TotalOrders       int64   `json:"total_orders"`
	TotalSpent        float64 `json:"total_spent"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// UserOrderHistory is a user's orders, newest first, plus their statistics.
type UserOrderHistory struct {
	Statistics UserOrderStats `json:"statistics"`
	Orders     []Order        `json:"orders"`
}

// RatingCount is the number of reviews with a given star rating.
type RatingCount struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

// ReviewStats is the store-wide review distribution.
type ReviewStats struct {
	TotalReviews  int64         `json:"total_reviews"`
	AverageRating float64       `json:"average_rating"`
	Distribution  []RatingCount `json:"distribution"`
}
