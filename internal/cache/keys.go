package cache

// Key is a cache key. Building keys only through the constructors below keeps
// the writer and the invalidator on the same namespace.
type Key string

const (
	LatestProducts  Key = "latest-products"
	Categories      Key = "categories"
	AllProducts     Key = "all-products"
	AllOrders       Key = "all-orders"
	AdminStats      Key = "admin-stats"
	AdminPieCharts  Key = "admin-pie-charts"
	AdminBarCharts  Key = "admin-bar-charts"
	AdminLineCharts Key = "admin-line-charts"
)

func ProductKey(id string) Key { return Key("product-" + id) }

func OrderKey(id string) Key { return Key("order-" + id) }

func MyOrders(userID string) Key { return Key("my-order-" + userID) }
