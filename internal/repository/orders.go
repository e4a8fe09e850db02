package repository

import (
	"context"

	"github.com/dpperalta/crmclient/internal/cache"
	"github.com/dpperalta/crmclient/internal/entity"
)

const ordersKey = "sellerOrders"

const sellerOrdersQuery = `
    query sellerOrders {
        sellerOrders {
            id
            sellerId
            total
            status
            lines {
                productId
                quantity
            }
            customer {
                id
                firstName
                lastName
                email
                phone
            }
        }
    }
`

const createOrderMutation = `
    mutation createOrder($input: OrderInput) {
        createOrder(input: $input) {
            id
            sellerId
        }
    }
`

// Orders submits composed orders to the remote API and keeps the cached order
// list in step with every successful creation.
type Orders struct {
	gql   Doer
	cache cache.Store
}

// NewOrders creates an order repository.
func NewOrders(gql Doer, store cache.Store) *Orders {
	return &Orders{gql: gql, cache: store}
}

// List returns the seller's orders, serving the cached snapshot when one
// exists.
func (r *Orders) List(ctx context.Context, token string) ([]entity.Order, error) {
	if cached, ok, err := cache.ReadList[entity.Order](ctx, r.cache, ordersKey); err == nil && ok {
		return cached, nil
	}

	var out struct {
		Orders []entity.Order `json:"sellerOrders"`
	}
	if err := r.gql.Do(ctx, token, sellerOrdersQuery, nil, &out); err != nil {
		logger.Error().Err(err).Msg("Error listing orders")
		return nil, err
	}

	if err := cache.WriteList(ctx, r.cache, ordersKey, out.Orders); err != nil {
		logger.Warn().Err(err).Msg("Error priming order cache")
	}
	return out.Orders, nil
}

// Create issues exactly one creation request. On success the new record is
// appended to the cached order list; a miss there means no list has been
// fetched yet and nothing needs rewriting.
func (r *Orders) Create(ctx context.Context, token string, input entity.OrderInput) (*entity.Order, error) {
	var out struct {
		Order entity.Order `json:"createOrder"`
	}
	if err := r.gql.Do(ctx, token, createOrderMutation, map[string]any{"input": input}, &out); err != nil {
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	if err := cache.AppendToList(ctx, r.cache, ordersKey, out.Order); err != nil {
		logger.Warn().Err(err).Msg("Error rewriting order cache")
	}
	return &out.Order, nil
}
