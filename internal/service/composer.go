package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dpperalta/crmclient/internal/entity"
	"github.com/dpperalta/crmclient/internal/graphql"
)

// Draft statuses, in the order the workflow moves through them.
const (
	StatusEmpty      = "empty"
	StatusComposing  = "composing"
	StatusSubmitting = "submitting"
	StatusSucceeded  = "succeeded"
)

// noticeTTL is how long a rejection message stays visible before it clears.
const noticeTTL = 3 * time.Second

var (
	// ErrNotSubmittable means the draft fails the validity predicate: no
	// customer, a non-positive quantity, or a zero total.
	ErrNotSubmittable = errors.New("draft is not ready to submit")
	// ErrSubmitInFlight blocks a second submit while one is outstanding.
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrDraftSubmitted rejects edits and resubmits after success.
	ErrDraftSubmitted = errors.New("draft was already submitted")
)

// DraftLine is one selected product plus the quantity entered for it. Name and
// price stay on the draft for display and total computation; they are stripped
// from the submitted payload.
type DraftLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Draft is a read-only snapshot of a composition session.
type Draft struct {
	ID       string           `json:"id"`
	Customer *entity.Customer `json:"customer,omitempty"`
	Lines    []DraftLine      `json:"lines"`
	Total    float64          `json:"total"`
	Status   string           `json:"status"`
	Valid    bool             `json:"valid"`
	Notice   string           `json:"notice,omitempty"`
}

// OrderCreator is the slice of the order repository the composer needs.
type OrderCreator interface {
	Create(ctx context.Context, token string, input entity.OrderInput) (*entity.Order, error)
}

// OrderTotal derives the total over a set of lines. It is the only way a
// draft's total is ever produced.
func OrderTotal(lines []DraftLine) float64 {
	var total float64
	for _, line := range lines {
		total += float64(line.Quantity) * line.Price
	}
	return total
}

// Composer owns a single order draft. Every mutation goes through a named
// operation and recomputes the total synchronously before returning.
type Composer struct {
	mu          sync.Mutex
	id          string
	customer    *entity.Customer
	lines       []DraftLine
	total       float64
	submitting  bool
	submitted   bool
	notice      string
	noticeUntil time.Time
	now         func() time.Time
}

func newComposer(id string) *Composer {
	return &Composer{id: id, now: time.Now}
}

// editable reports whether mutations may apply. While a submission is in
// flight the draft is frozen; editing resumes only if the attempt fails.
// Callers hold the lock.
func (c *Composer) editable() bool {
	return !c.submitting && !c.submitted
}

// SetCustomer selects the customer for the draft.
func (c *Composer) SetCustomer(customer entity.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editable() {
		return
	}
	c.customer = &customer
}

// SetProducts replaces the whole line list with the given selection, seeding
// every quantity with zero. Quantities previously entered for products no
// longer selected are gone with the old list.
func (c *Composer) SetProducts(products []entity.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editable() {
		return
	}
	lines := make([]DraftLine, 0, len(products))
	for _, p := range products {
		lines = append(lines, DraftLine{ProductID: p.ID, Name: p.Name, Price: p.Price})
	}
	c.lines = lines
	c.total = OrderTotal(c.lines)
}

// SetLineQuantity coerces raw editor text to a number, treating anything
// unparseable as zero. Negative input is kept as entered; it blocks submission
// later but is not an error here. Unknown product ids are ignored.
func (c *Composer) SetLineQuantity(productID, raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editable() {
		return
	}
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		qty = 0
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = qty
			break
		}
	}
	c.total = OrderTotal(c.lines)
}

// valid is the submission predicate: customer set, every quantity positive,
// total above zero. Callers hold the lock.
func (c *Composer) valid() bool {
	if c.customer == nil || len(c.lines) == 0 {
		return false
	}
	for _, line := range c.lines {
		if line.Quantity <= 0 {
			return false
		}
	}
	return c.total > 0
}

func (c *Composer) status() string {
	switch {
	case c.submitting:
		return StatusSubmitting
	case c.submitted:
		return StatusSucceeded
	case c.customer == nil && len(c.lines) == 0:
		return StatusEmpty
	default:
		return StatusComposing
	}
}

// currentNotice returns the transient message, or empty once it has expired.
// Callers hold the lock.
func (c *Composer) currentNotice() string {
	if c.notice == "" || c.now().After(c.noticeUntil) {
		return ""
	}
	return c.notice
}

// Snapshot returns a copy of the draft. The line slice and customer are never
// shared with the composer's own state.
func (c *Composer) Snapshot() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]DraftLine, len(c.lines))
	copy(lines, c.lines)

	var customer *entity.Customer
	if c.customer != nil {
		cc := *c.customer
		customer = &cc
	}

	return Draft{
		ID:       c.id,
		Customer: customer,
		Lines:    lines,
		Total:    c.total,
		Status:   c.status(),
		Valid:    c.valid(),
		Notice:   c.currentNotice(),
	}
}

// Submit flattens the draft into the creation payload and issues exactly one
// request through orders. After a rejection the draft stays editable and the
// cleaned message is exposed as a transient notice.
func (c *Composer) Submit(ctx context.Context, token string, orders OrderCreator) (*entity.Order, error) {
	c.mu.Lock()
	if c.submitted {
		c.mu.Unlock()
		return nil, ErrDraftSubmitted
	}
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if !c.valid() {
		c.mu.Unlock()
		return nil, ErrNotSubmittable
	}

	input := entity.OrderInput{
		CustomerID: c.customer.ID,
		Total:      c.total,
		Lines:      make([]entity.OrderLine, 0, len(c.lines)),
	}
	for _, line := range c.lines {
		input.Lines = append(input.Lines, entity.OrderLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	c.submitting = true
	c.mu.Unlock()

	order, err := orders.Create(ctx, token, input)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		c.notice = graphql.CleanMessage(err.Error())
		c.noticeUntil = c.now().Add(noticeTTL)
		return nil, err
	}
	c.submitted = true
	return order, nil
}
