package repository

import (
	"context"

	"github.com/dpperalta/crmclient/internal/cache"
	"github.com/dpperalta/crmclient/internal/entity"
)

const customersKey = "sellerCustomers"

const sellerCustomersQuery = `
    query sellerCustomers {
        sellerCustomers {
            id
            firstName
            lastName
            company
            email
            phone
        }
    }
`

const customerQuery = `
    query customer($id: ID!) {
        customer(id: $id) {
            id
            firstName
            lastName
            company
            email
            phone
        }
    }
`

const createCustomerMutation = `
    mutation createCustomer($input: CustomerInput) {
        createCustomer(input: $input) {
            id
            firstName
            lastName
            company
            email
            phone
        }
    }
`

const updateCustomerMutation = `
    mutation updateCustomer($id: ID!, $input: CustomerInput) {
        updateCustomer(id: $id, input: $input) {
            id
            firstName
            lastName
            company
            email
            phone
        }
    }
`

const deleteCustomerMutation = `
    mutation deleteCustomer($id: ID!) {
        deleteCustomer(id: $id)
    }
`

// Customers reads and writes the seller's customers through the remote API and
// keeps the local list snapshot consistent after every mutation.
type Customers struct {
	gql   Doer
	cache cache.Store
}

// NewCustomers creates a customer repository.
func NewCustomers(gql Doer, store cache.Store) *Customers {
	return &Customers{gql: gql, cache: store}
}

// List returns the seller's customers, serving the cached snapshot when one
// exists and priming it otherwise.
func (r *Customers) List(ctx context.Context, token string) ([]entity.Customer, error) {
	if cached, ok, err := cache.ReadList[entity.Customer](ctx, r.cache, customersKey); err == nil && ok {
		return cached, nil
	}

	var out struct {
		Customers []entity.Customer `json:"sellerCustomers"`
	}
	if err := r.gql.Do(ctx, token, sellerCustomersQuery, nil, &out); err != nil {
		logger.Error().Err(err).Msg("Error listing customers")
		return nil, err
	}

	if err := cache.WriteList(ctx, r.cache, customersKey, out.Customers); err != nil {
		logger.Warn().Err(err).Msg("Error priming customer cache")
	}
	return out.Customers, nil
}

// Get fetches one customer by id, bypassing the list cache.
func (r *Customers) Get(ctx context.Context, token, id string) (*entity.Customer, error) {
	var out struct {
		Customer entity.Customer `json:"customer"`
	}
	if err := r.gql.Do(ctx, token, customerQuery, map[string]any{"id": id}, &out); err != nil {
		logger.Error().Err(err).Msgf("Error getting customer %s", id)
		return nil, err
	}
	return &out.Customer, nil
}

// Create registers a new customer and appends it to the cached list.
func (r *Customers) Create(ctx context.Context, token string, input entity.CustomerInput) (*entity.Customer, error) {
	var out struct {
		Customer entity.Customer `json:"createCustomer"`
	}
	if err := r.gql.Do(ctx, token, createCustomerMutation, map[string]any{"input": input}, &out); err != nil {
		logger.Error().Err(err).Msg("Error creating customer")
		return nil, err
	}

	if err := cache.AppendToList(ctx, r.cache, customersKey, out.Customer); err != nil {
		logger.Warn().Err(err).Msg("Error rewriting customer cache")
	}
	return &out.Customer, nil
}

// Update modifies a customer. The list snapshot is dropped so the next List
// refetches it.
func (r *Customers) Update(ctx context.Context, token, id string, input entity.CustomerInput) (*entity.Customer, error) {
	var out struct {
		Customer entity.Customer `json:"updateCustomer"`
	}
	vars := map[string]any{"id": id, "input": input}
	if err := r.gql.Do(ctx, token, updateCustomerMutation, vars, &out); err != nil {
		logger.Error().Err(err).Msgf("Error updating customer %s", id)
		return nil, err
	}

	if err := r.cache.Delete(ctx, customersKey); err != nil {
		logger.Warn().Err(err).Msg("Error dropping customer cache")
	}
	return &out.Customer, nil
}

// Delete removes a customer and filters it out of the cached list.
func (r *Customers) Delete(ctx context.Context, token, id string) error {
	if err := r.gql.Do(ctx, token, deleteCustomerMutation, map[string]any{"id": id}, nil); err != nil {
		logger.Error().Err(err).Msgf("Error deleting customer %s", id)
		return err
	}

	err := cache.RemoveFromList(ctx, r.cache, customersKey, func(c entity.Customer) string { return c.ID }, id)
	if err != nil {
		logger.Warn().Err(err).Msg("Error rewriting customer cache")
	}
	return nil
}
