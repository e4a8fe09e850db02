package service

import (
	"context"
	"testing"

	"github.com/dpperalta/crmclient/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvents struct {
	actions []string
	ids     []string
}

func (f *fakeEvents) Publish(ctx context.Context, action, id string, payload any) {
	f.actions = append(f.actions, action)
	f.ids = append(f.ids, id)
}

func TestDraftLifecycle(t *testing.T) {
	s := NewDraftService(&fakeOrders{}, nil)

	draft := s.Open()
	require.NotEmpty(t, draft.ID)
	assert.Equal(t, StatusEmpty, draft.Status)

	draft, err := s.SetCustomer(draft.ID, testCustomer())
	require.NoError(t, err)
	assert.Equal(t, "c1", draft.Customer.ID)

	draft, err = s.SetProducts(draft.ID, testProducts())
	require.NoError(t, err)
	assert.Len(t, draft.Lines, 2)

	draft, err = s.SetLineQuantity(draft.ID, "p1", "2")
	require.NoError(t, err)
	assert.Equal(t, 20.0, draft.Total)

	s.Discard(draft.ID)
	_, err = s.Snapshot(draft.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDraftOperationsOnUnknownID(t *testing.T) {
	s := NewDraftService(&fakeOrders{}, nil)

	_, err := s.SetCustomer("missing", testCustomer())
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = s.SetProducts("missing", testProducts())
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = s.SetLineQuantity("missing", "p1", "1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = s.Submit(context.Background(), "missing", "token")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestSubmitDiscardsDraftAndPublishesEvent(t *testing.T) {
	orders := &fakeOrders{order: &entity.Order{ID: "o7", SellerID: "s1"}}
	events := &fakeEvents{}
	s := NewDraftService(orders, events)

	draft := s.Open()
	_, err := s.SetCustomer(draft.ID, testCustomer())
	require.NoError(t, err)
	_, err = s.SetProducts(draft.ID, testProducts())
	require.NoError(t, err)
	_, err = s.SetLineQuantity(draft.ID, "p1", "2")
	require.NoError(t, err)
	_, err = s.SetLineQuantity(draft.ID, "p2", "3")
	require.NoError(t, err)

	order, err := s.Submit(context.Background(), draft.ID, "token")
	require.NoError(t, err)
	assert.Equal(t, "o7", order.ID)

	assert.Equal(t, []string{"order-created"}, events.actions)
	assert.Equal(t, []string{"o7"}, events.ids)

	// a successful draft is gone; composing a new order starts fresh
	_, err = s.Snapshot(draft.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}
