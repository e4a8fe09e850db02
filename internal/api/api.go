package api

import (
	"errors"
	"strings"

	"github.com/dpperalta/crmclient/internal/entity"
	"github.com/dpperalta/crmclient/internal/graphql"
	"github.com/dpperalta/crmclient/internal/repository"
	"github.com/dpperalta/crmclient/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SessionClaims is the shape of the bearer tokens issued by the CRM API. The
// gateway verifies them at the edge with the shared session secret.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Handler carries every route of the gateway.
type Handler struct {
	customers *repository.Customers
	products  *repository.Products
	orders    *repository.Orders
	account   *repository.Account
	drafts    *service.DraftService
	events    service.EventPublisher
	validate  *validator.Validate
}

// NewHandler wires the handler. events may be nil.
func NewHandler(
	customers *repository.Customers,
	products *repository.Products,
	orders *repository.Orders,
	account *repository.Account,
	drafts *service.DraftService,
	events service.EventPublisher,
) *Handler {
	return &Handler{
		customers: customers,
		products:  products,
		orders:    orders,
		account:   account,
		drafts:    drafts,
		events:    events,
		validate:  validator.New(),
	}
}

// Register attaches all routes to the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/session/signup", h.Signup)
	e.POST("/session/login", h.Login)
	e.GET("/session", h.CurrentSeller)

	e.GET("/customers", h.ListCustomers)
	e.POST("/customers", h.CreateCustomer)
	e.GET("/customers/:id", h.GetCustomer)
	e.PUT("/customers/:id", h.UpdateCustomer)
	e.DELETE("/customers/:id", h.DeleteCustomer)

	e.GET("/products", h.ListProducts)
	e.POST("/products", h.CreateProduct)
	e.GET("/products/:id", h.GetProduct)
	e.PUT("/products/:id", h.UpdateProduct)
	e.DELETE("/products/:id", h.DeleteProduct)

	e.GET("/orders", h.ListOrders)

	e.POST("/drafts", h.OpenDraft)
	e.GET("/drafts/:id", h.GetDraft)
	e.PUT("/drafts/:id/customer", h.AssignCustomer)
	e.PUT("/drafts/:id/products", h.AssignProducts)
	e.PUT("/drafts/:id/lines/:productId", h.SetLineQuantity)
	e.POST("/drafts/:id/submit", h.SubmitDraft)
	e.DELETE("/drafts/:id", h.DiscardDraft)
}

// bearerToken extracts the raw token that gets forwarded to the remote API.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimPrefix(auth, "Bearer ")
}

// remoteStatus maps a repository error to a response. Remote rejections come
// back as a displayable message; everything else is a plain failure.
func remoteStatus(c echo.Context, err error) error {
	var remote *graphql.RemoteError
	if errors.As(err, &remote) {
		return c.JSON(422, map[string]string{"error": remote.Message})
	}
	return c.JSON(500, map[string]string{"error": err.Error()})
}

// Signup registers a new seller account --> /session/signup
func (h *Handler) Signup(c echo.Context) error {
	input := entity.SignupInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := h.validate.Struct(input); err != nil {
		return c.JSON(400, map[string]any{"fields": fieldErrors(err)})
	}

	seller, err := h.account.Signup(c.Request().Context(), input)
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(201, seller)
}

// Login exchanges credentials for a bearer token --> /session/login
func (h *Handler) Login(c echo.Context) error {
	input := entity.LoginInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := h.validate.Struct(input); err != nil {
		return c.JSON(400, map[string]any{"fields": fieldErrors(err)})
	}

	token, err := h.account.Login(c.Request().Context(), input)
	if err != nil {
		return c.JSON(401, map[string]string{"error": graphql.CleanMessage(err.Error())})
	}
	return c.JSON(200, map[string]string{"token": token})
}

// CurrentSeller resolves the session --> /session. A failure means the client
// should drop its token and go back to login.
func (h *Handler) CurrentSeller(c echo.Context) error {
	seller, err := h.account.Current(c.Request().Context(), bearerToken(c))
	if err != nil {
		return c.JSON(401, map[string]string{"error": "Session expired", "location": "/login"})
	}
	return c.JSON(200, seller)
}

// ListCustomers returns the seller's customers --> /customers
func (h *Handler) ListCustomers(c echo.Context) error {
	customers, err := h.customers.List(c.Request().Context(), bearerToken(c))
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(200, customers)
}

// GetCustomer returns one customer --> /customers/:id
func (h *Handler) GetCustomer(c echo.Context) error {
	customer, err := h.customers.Get(c.Request().Context(), bearerToken(c), c.Param("id"))
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(200, customer)
}

// CreateCustomer registers a new customer --> /customers
func (h *Handler) CreateCustomer(c echo.Context) error {
	input := entity.CustomerInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := h.validate.Struct(input); err != nil {
		return c.JSON(400, map[string]any{"fields": fieldErrors(err)})
	}

	customer, err := h.customers.Create(c.Request().Context(), bearerToken(c), input)
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(201, customer)
}

// UpdateCustomer modifies a customer --> /customers/:id
func (h *Handler) UpdateCustomer(c echo.Context) error {
	input := entity.CustomerInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := h.validate.Struct(input); err != nil {
		return c.JSON(400, map[string]any{"fields": fieldErrors(err)})
	}

	customer, err := h.customers.Update(c.Request().Context(), bearerToken(c), c.Param("id"), input)
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(200, customer)
}

// DeleteCustomer removes a customer --> /customers/:id
func (h *Handler) DeleteCustomer(c echo.Context) error {
	id := c.Param("id")
	if err := h.customers.Delete(c.Request().Context(), bearerToken(c), id); err != nil {
		return remoteStatus(c, err)
	}
	if h.events != nil {
		h.events.Publish(c.Request().Context(), "customer-deleted", id, map[string]string{"id": id})
	}
	return c.JSON(200, map[string]string{"message": "Customer deleted"})
}

// ListProducts returns the catalog --> /products
func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.products.List(c.Request().Context(), bearerToken(c))
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(200, products)
}

// GetProduct returns one product --> /products/:id
func (h *Handler) GetProduct(c echo.Context) error {
	product, err := h.products.Get(c.Request().Context(), bearerToken(c), c.Param("id"))
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(200, product)
}

// CreateProduct adds a product --> /products
func (h *Handler) CreateProduct(c echo.Context) error {
	input := entity.ProductInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := h.validate.Struct(input); err != nil {
		return c.JSON(400, map[string]any{"fields": fieldErrors(err)})
	}

	product, err := h.products.Create(c.Request().Context(), bearerToken(c), input)
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(201, product)
}

// UpdateProduct modifies a product --> /products/:id
func (h *Handler) UpdateProduct(c echo.Context) error {
	input := entity.ProductInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if err := h.validate.Struct(input); err != nil {
		return c.JSON(400, map[string]any{"fields": fieldErrors(err)})
	}

	product, err := h.products.Update(c.Request().Context(), bearerToken(c), c.Param("id"), input)
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(200, product)
}

// DeleteProduct removes a product --> /products/:id
func (h *Handler) DeleteProduct(c echo.Context) error {
	id := c.Param("id")
	if err := h.products.Delete(c.Request().Context(), bearerToken(c), id); err != nil {
		return remoteStatus(c, err)
	}
	if h.events != nil {
		h.events.Publish(c.Request().Context(), "product-deleted", id, map[string]string{"id": id})
	}
	return c.JSON(200, map[string]string{"message": "Product deleted"})
}

// ListOrders returns the seller's orders --> /orders
func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.orders.List(c.Request().Context(), bearerToken(c))
	if err != nil {
		return remoteStatus(c, err)
	}
	return c.JSON(200, orders)
}
