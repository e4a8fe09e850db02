package repository

import (
	"context"

	"github.com/dpperalta/crmclient/internal/cache"
	"github.com/dpperalta/crmclient/internal/entity"
)

const productsKey = "products"

const productsQuery = `
    query products {
        products {
            id
            name
            price
            stock
        }
    }
`

const productQuery = `
    query product($id: ID!) {
        product(id: $id) {
            id
            name
            price
            stock
        }
    }
`

const createProductMutation = `
    mutation createProduct($input: ProductInput) {
        createProduct(input: $input) {
            id
            name
            price
            stock
        }
    }
`

const updateProductMutation = `
    mutation updateProduct($id: ID!, $input: ProductInput) {
        updateProduct(id: $id, input: $input) {
            id
            name
            price
            stock
        }
    }
`

const deleteProductMutation = `
    mutation deleteProduct($id: ID!) {
        deleteProduct(id: $id)
    }
`

// Products mirrors the catalog through the remote API with the same cache
// rewrite rules as Customers.
type Products struct {
	gql   Doer
	cache cache.Store
}

// NewProducts creates a product repository.
func NewProducts(gql Doer, store cache.Store) *Products {
	return &Products{gql: gql, cache: store}
}

// List returns the catalog, serving the cached snapshot when one exists.
func (r *Products) List(ctx context.Context, token string) ([]entity.Product, error) {
	if cached, ok, err := cache.ReadList[entity.Product](ctx, r.cache, productsKey); err == nil && ok {
		return cached, nil
	}

	var out struct {
		Products []entity.Product `json:"products"`
	}
	if err := r.gql.Do(ctx, token, productsQuery, nil, &out); err != nil {
		logger.Error().Err(err).Msg("Error listing products")
		return nil, err
	}

	if err := cache.WriteList(ctx, r.cache, productsKey, out.Products); err != nil {
		logger.Warn().Err(err).Msg("Error priming product cache")
	}
	return out.Products, nil
}

// Get fetches one product by id.
func (r *Products) Get(ctx context.Context, token, id string) (*entity.Product, error) {
	var out struct {
		Product entity.Product `json:"product"`
	}
	if err := r.gql.Do(ctx, token, productQuery, map[string]any{"id": id}, &out); err != nil {
		logger.Error().Err(err).Msgf("Error getting product %s", id)
		return nil, err
	}
	return &out.Product, nil
}

// Create adds a product to the catalog and appends it to the cached list.
func (r *Products) Create(ctx context.Context, token string, input entity.ProductInput) (*entity.Product, error) {
	var out struct {
		Product entity.Product `json:"createProduct"`
	}
	if err := r.gql.Do(ctx, token, createProductMutation, map[string]any{"input": input}, &out); err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}

	if err := cache.AppendToList(ctx, r.cache, productsKey, out.Product); err != nil {
		logger.Warn().Err(err).Msg("Error rewriting product cache")
	}
	return &out.Product, nil
}

// Update modifies a product and drops the list snapshot.
func (r *Products) Update(ctx context.Context, token, id string, input entity.ProductInput) (*entity.Product, error) {
	var out struct {
		Product entity.Product `json:"updateProduct"`
	}
	vars := map[string]any{"id": id, "input": input}
	if err := r.gql.Do(ctx, token, updateProductMutation, vars, &out); err != nil {
		logger.Error().Err(err).Msgf("Error updating product %s", id)
		return nil, err
	}

	if err := r.cache.Delete(ctx, productsKey); err != nil {
		logger.Warn().Err(err).Msg("Error dropping product cache")
	}
	return &out.Product, nil
}

// Delete removes a product and filters it out of the cached list.
func (r *Products) Delete(ctx context.Context, token, id string) error {
	if err := r.gql.Do(ctx, token, deleteProductMutation, map[string]any{"id": id}, nil); err != nil {
		logger.Error().Err(err).Msgf("Error deleting product %s", id)
		return err
	}

	err := cache.RemoveFromList(ctx, r.cache, productsKey, func(p entity.Product) string { return p.ID }, id)
	if err != nil {
		logger.Warn().Err(err).Msg("Error rewriting product cache")
	}
	return nil
}
