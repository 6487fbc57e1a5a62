package inventory

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Collection is a kind-agnostic view over a Resource, used where the kind is
// only known at runtime (CLI arguments, route parameters).
type Collection interface {
	Page(ctx context.Context, q Query) (any, error)
	Fetch(ctx context.Context, id string) (any, error)
	CreateFromJSON(ctx context.Context, body []byte) (any, error)
	UpdateFromJSON(ctx context.Context, id string, body []byte) (any, error)
	Delete(ctx context.Context, id string) error
}

func (c *Client) Collection(kind Kind) (Collection, error) {
	switch kind {
	case Products:
		return c.Products, nil
	case Categories:
		return c.Categories, nil
	case Vendors:
		return c.Vendors, nil
	case Warehouses:
		return c.Warehouses, nil
	case Units:
		return c.Units, nil
	}
	return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
}

func (r *Resource[T]) Page(ctx context.Context, q Query) (any, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(items, q), nil
}

func (r *Resource[T]) Fetch(ctx context.Context, id string) (any, error) {
	return r.Get(ctx, id)
}

func (r *Resource[T]) CreateFromJSON(ctx context.Context, body []byte) (any, error) {
	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, &ValidationError{Field: "body", Reason: err.Error()}
	}
	return r.Create(ctx, item)
}

func (r *Resource[T]) UpdateFromJSON(ctx context.Context, id string, body []byte) (any, error) {
	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, &ValidationError{Field: "body", Reason: err.Error()}
	}
	return r.Update(ctx, id, item)
}
