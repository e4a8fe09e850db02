package service

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/dpperalta/crmclient/internal/entity"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ErrDraftNotFound means the draft id is unknown, usually because the session
// was discarded or already submitted.
var ErrDraftNotFound = errors.New("draft not found")

// EventPublisher emits lifecycle events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, action, id string, payload any)
}

// DraftService hosts one composer per open composition session.
type DraftService struct {
	mu     sync.RWMutex
	drafts map[string]*Composer
	orders OrderCreator
	events EventPublisher
}

// NewDraftService creates the draft registry. events may be nil.
func NewDraftService(orders OrderCreator, events EventPublisher) *DraftService {
	return &DraftService{
		drafts: make(map[string]*Composer),
		orders: orders,
		events: events,
	}
}

// Open starts an empty draft and returns its first snapshot.
func (s *DraftService) Open() Draft {
	c := newComposer(uuid.NewString())

	s.mu.Lock()
	s.drafts[c.id] = c
	s.mu.Unlock()

	return c.Snapshot()
}

func (s *DraftService) get(id string) (*Composer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return c, nil
}

// Snapshot returns the current state of a draft.
func (s *DraftService) Snapshot(id string) (Draft, error) {
	c, err := s.get(id)
	if err != nil {
		return Draft{}, err
	}
	return c.Snapshot(), nil
}

// SetCustomer selects the customer for a draft.
func (s *DraftService) SetCustomer(id string, customer entity.Customer) (Draft, error) {
	c, err := s.get(id)
	if err != nil {
		return Draft{}, err
	}
	c.SetCustomer(customer)
	return c.Snapshot(), nil
}

// SetProducts replaces a draft's product selection.
func (s *DraftService) SetProducts(id string, products []entity.Product) (Draft, error) {
	c, err := s.get(id)
	if err != nil {
		return Draft{}, err
	}
	c.SetProducts(products)
	return c.Snapshot(), nil
}

// SetLineQuantity updates one line's quantity from raw editor text.
func (s *DraftService) SetLineQuantity(id, productID, raw string) (Draft, error) {
	c, err := s.get(id)
	if err != nil {
		return Draft{}, err
	}
	c.SetLineQuantity(productID, raw)
	return c.Snapshot(), nil
}

// Discard drops a draft outright. An abandoned draft needs no other cleanup.
func (s *DraftService) Discard(id string) {
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
}

// Submit sends a draft to the API. On success the draft is discarded and an
// order-created event is published; on failure the draft stays registered and
// editable.
func (s *DraftService) Submit(ctx context.Context, id, token string) (*entity.Order, error) {
	c, err := s.get(id)
	if err != nil {
		return nil, err
	}

	order, err := c.Submit(ctx, token, s.orders)
	if err != nil {
		logger.Error().Err(err).Msgf("Error submitting draft %s", id)
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(ctx, "order-created", order.ID, order)
	}
	s.Discard(id)
	return order, nil
}
