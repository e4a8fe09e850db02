package entity

// Customer is a buyer scoped to the authenticated seller. Customers are
// fetched from the remote API and never modified locally; an order draft keeps
// a reference to the selected one rather than a copy.
type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// CustomerInput is the payload for creating or updating a customer.
type CustomerInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Company   string `json:"company" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}
