package transport

import "github.com/Skotchmaster/pharmacy_shop/services/order/internal/models"

type OrderLine struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []OrderLine `json:"items"`
	models.Shipping
}

type CheckoutRequest struct {
	models.Shipping
}

type StatusRequest struct {
	Status string `json:"status"`
}

type CartItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// OrderView is an order as admins see it, with the buyer's email and name when the
// user is known.
type OrderView struct {
	models.Order
	UserEmail string `json:"userEmail,omitempty"`
	UserName  string `json:"userName,omitempty"`
}

func WithCustomer(o models.Order, customers map[uint]models.Customer) OrderView {
	v := OrderView{Order: o}
	if c, ok := customers[o.UserID]; ok {
		v.UserEmail = c.Email
		v.UserName = c.FullName
	}
	return v
}
