package models

// Relation names used in include lists.
const (
	RelBrand      = "brand"
	RelCategory   = "category"
	RelProducts   = "products"
	RelReviews    = "reviews"
	RelOrderItems = "orderItems"
	RelItems      = "items"
	RelUser       = "user"
	RelOrder      = "order"
	RelProduct    = "product"
	RelProfile    = "profile"
	RelRole       = "role"
	RelOrders     = "orders"
)

// Include lists the relations a read loads alongside the primary rows.
// Anything not listed is left nil.
type Include []string

// Has reports whether rel is requested.
func (in Include) Has(rel string) bool {
	for _, r := range in {
		if r == rel {
			return true
		}
	}
	return false
}
