package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"ShopCore/internal/catalog"
	"ShopCore/internal/order"
	"ShopCore/internal/user"
)

const latestTransactionCount = 6

// Narrow read ports: the aggregator works on raw collections and derives
// everything in-process.
type ProductSource interface {
	All(ctx context.Context) ([]catalog.Product, error)
}

type OrderSource interface {
	All(ctx context.Context) ([]order.Order, error)
}

type UserSource interface {
	All(ctx context.Context) ([]user.User, error)
}

type Counts struct {
	Revenue float64 `json:"revenue"`
	Product int     `json:"product"`
	User    int     `json:"user"`
	Order   int     `json:"order"`
}

// ChangePercent holds month-over-month deltas in whole percent.
type ChangePercent struct {
	Revenue int `json:"revenue"`
	Product int `json:"product"`
	User    int `json:"user"`
	Order   int `json:"order"`
}

type GenderRatio struct {
	Male   int `json:"male"`
	Female int `json:"female"`
}

type LatestTransaction struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Discount float64 `json:"discount"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
}

type CategoryShare struct {
	Category string `json:"category"`
	Percent  int    `json:"percent"`
}

type DashboardStats struct {
	Count              Counts              `json:"count"`
	ChangePercent      ChangePercent       `json:"change_percent"`
	GenderRatio        GenderRatio         `json:"gender_ratio"`
	LatestTransactions []LatestTransaction `json:"latest_transactions"`
	CategoryShares     []CategoryShare     `json:"category_shares"`
}

type OrderFulfillment struct {
	Processing int `json:"processing"`
	Shipped    int `json:"shipped"`
	Delivered  int `json:"delivered"`
}

type StockAvailability struct {
	InStock    int `json:"in_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// RevenueDistribution reproduces the original report's buckets verbatim:
// three field sums plus a remainder that may go negative on inconsistent
// order rows.
type RevenueDistribution struct {
	Subtotal        float64 `json:"subtotal"`
	Discount        float64 `json:"discount"`
	ShippingCharges float64 `json:"shipping_charges"`
	Marketing       float64 `json:"marketing"`
}

type AgeGroups struct {
	Teen  int `json:"teen"`
	Adult int `json:"adult"`
	Old   int `json:"old"`
}

type PieCharts struct {
	OrderFulfillment    OrderFulfillment    `json:"order_fulfillment"`
	StockAvailability   StockAvailability   `json:"stock_availability"`
	RevenueDistribution RevenueDistribution `json:"revenue_distribution"`
	AgeGroups           AgeGroups           `json:"age_groups"`
}

type BarCharts struct {
	Orders   []int `json:"orders"`
	Products []int `json:"products"`
	Users    []int `json:"users"`
}

type LineCharts struct {
	Users    []int     `json:"users"`
	Products []int     `json:"products"`
	Discount []float64 `json:"discount"`
	Revenue  []float64 `json:"revenue"`
}

// Aggregator computes the dashboard read models.
type Aggregator struct {
	Products ProductSource
	Orders   OrderSource
	Users    UserSource

	// Now is the clock; nil means time.Now. Injected in tests to pin the
	// calendar month.
	Now func() time.Time
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *Aggregator) Dashboard(ctx context.Context) (DashboardStats, error) {
	products, orders, users, err := a.load(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	today := a.now()
	thisMonth, lastMonth := thisAndLastMonth(today)

	var s DashboardStats

	s.Count = Counts{
		Product: len(products),
		User:    len(users),
		Order:   len(orders),
	}
	for _, o := range orders {
		s.Count.Revenue += o.Total
	}

	var thisRevenue, lastRevenue float64
	for _, o := range orders {
		if thisMonth.contains(o.CreatedAt) {
			thisRevenue += o.Total
		}
		if lastMonth.contains(o.CreatedAt) {
			lastRevenue += o.Total
		}
	}

	s.ChangePercent = ChangePercent{
		Revenue: CalculatePercentage(thisRevenue, lastRevenue),
		Product: CalculatePercentage(
			countCreated(productTimes(products), thisMonth),
			countCreated(productTimes(products), lastMonth)),
		User: CalculatePercentage(
			countCreated(userTimes(users), thisMonth),
			countCreated(userTimes(users), lastMonth)),
		Order: CalculatePercentage(
			countCreated(orderTimes(orders), thisMonth),
			countCreated(orderTimes(orders), lastMonth)),
	}

	for _, u := range users {
		switch u.Gender {
		case "male":
			s.GenderRatio.Male++
		case "female":
			s.GenderRatio.Female++
		}
	}

	sorted := make([]order.Order, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if len(sorted) > latestTransactionCount {
		sorted = sorted[:latestTransactionCount]
	}
	s.LatestTransactions = make([]LatestTransaction, 0, len(sorted))
	for _, o := range sorted {
		s.LatestTransactions = append(s.LatestTransactions, LatestTransaction{
			ID:       o.ID,
			Quantity: len(o.Items),
			Discount: o.Discount,
			Amount:   o.Total,
			Status:   o.Status,
		})
	}

	s.CategoryShares = categoryShares(products)

	return s, nil
}

func (a *Aggregator) Pie(ctx context.Context) (PieCharts, error) {
	products, orders, users, err := a.load(ctx)
	if err != nil {
		return PieCharts{}, err
	}

	var p PieCharts

	for _, o := range orders {
		switch o.Status {
		case order.StatusProcessing:
			p.OrderFulfillment.Processing++
		case order.StatusShipped:
			p.OrderFulfillment.Shipped++
		case order.StatusDelivered:
			p.OrderFulfillment.Delivered++
		}
	}

	for _, pr := range products {
		if pr.Stock > 0 {
			p.StockAvailability.InStock++
		} else {
			p.StockAvailability.OutOfStock++
		}
	}

	var total, subtotal, tax, discount, shipping float64
	for _, o := range orders {
		total += o.Total
		subtotal += o.Subtotal
		tax += o.Tax
		discount += o.Discount
		shipping += o.ShippingCharges
	}
	p.RevenueDistribution = RevenueDistribution{
		Subtotal:        subtotal,
		Discount:        discount,
		ShippingCharges: shipping,
		Marketing:       total - (subtotal + tax + discount + shipping),
	}

	today := a.now()
	for _, u := range users {
		switch age := u.AgeAt(today); {
		case age < 20:
			p.AgeGroups.Teen++
		case age <= 40:
			p.AgeGroups.Adult++
		default:
			p.AgeGroups.Old++
		}
	}

	return p, nil
}

func (a *Aggregator) Bar(ctx context.Context) (BarCharts, error) {
	products, orders, users, err := a.load(ctx)
	if err != nil {
		return BarCharts{}, err
	}

	today := a.now()
	return BarCharts{
		Orders:   CountByMonth(6, today, orderTimes(orders)),
		Products: CountByMonth(6, today, productTimes(products)),
		Users:    CountByMonth(12, today, userTimes(users)),
	}, nil
}

func (a *Aggregator) Line(ctx context.Context) (LineCharts, error) {
	products, orders, users, err := a.load(ctx)
	if err != nil {
		return LineCharts{}, err
	}

	today := a.now()

	discounts := make([]TimedValue, len(orders))
	revenue := make([]TimedValue, len(orders))
	for i, o := range orders {
		discounts[i] = TimedValue{At: o.CreatedAt, Value: o.Discount}
		revenue[i] = TimedValue{At: o.CreatedAt, Value: o.Total}
	}

	return LineCharts{
		Users:    CountByMonth(12, today, userTimes(users)),
		Products: CountByMonth(12, today, productTimes(products)),
		Discount: SumByMonth(12, today, discounts),
		Revenue:  SumByMonth(12, today, revenue),
	}, nil
}

func (a *Aggregator) load(ctx context.Context) ([]catalog.Product, []order.Order, []user.User, error) {
	products, err := a.Products.All(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	orders, err := a.Orders.All(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	users, err := a.Users.All(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return products, orders, users, nil
}

func categoryShares(products []catalog.Product) []CategoryShare {
	if len(products) == 0 {
		return []CategoryShare{}
	}

	counts := map[string]int{}
	for _, p := range products {
		counts[p.Category]++
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	out := make([]CategoryShare, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryShare{
			Category: c,
			Percent:  int(math.Round(float64(counts[c]) / float64(len(products)) * 100)),
		})
	}
	return out
}

func countCreated(times []time.Time, r monthRange) float64 {
	var n float64
	for _, t := range times {
		if r.contains(t) {
			n++
		}
	}
	return n
}

func productTimes(products []catalog.Product) []time.Time {
	out := make([]time.Time, len(products))
	for i, p := range products {
		out[i] = p.CreatedAt
	}
	return out
}

func orderTimes(orders []order.Order) []time.Time {
	out := make([]time.Time, len(orders))
	for i, o := range orders {
		out[i] = o.CreatedAt
	}
	return out
}

func userTimes(users []user.User) []time.Time {
	out := make([]time.Time, len(users))
	for i, u := range users {
		out[i] = u.CreatedAt
	}
	return out
}
