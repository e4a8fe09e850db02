package entity

// OrderLine is one product inside a submitted order. Only the product id and
// the chosen quantity are part of the persisted shape; name, price and stock
// stay behind on the draft.
type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderInput is the creation payload sent to the API.
type OrderInput struct {
	CustomerID string      `json:"customerId"`
	Total      float64     `json:"total"`
	Lines      []OrderLine `json:"lines"`
}

// Order as returned by the API. List queries hydrate the customer; the
// creation mutation returns only id and sellerId.
type Order struct {
	ID       string      `json:"id"`
	SellerID string      `json:"sellerId"`
	Customer *Customer   `json:"customer,omitempty"`
	Lines    []OrderLine `json:"lines,omitempty"`
	Total    float64     `json:"total"`
	Status   string      `json:"status,omitempty"`
}
