package inventory

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/rm-hull/inventory-console/internal/gateway"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrUnknownKind = errors.New("unknown resource kind")

// Doer sends requests to the remote API; *gateway.Gateway is the production
// implementation.
type Doer interface {
	Do(ctx context.Context, req gateway.Request) (*gateway.Response, error)
}

type Record interface {
	Validate() error
	Listable
}

type apiResponse[T any] struct {
	Success *bool  `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Resource is the CRUD surface of one collection endpoint of the remote API.
type Resource[T Record] struct {
	doer Doer
	path string
}

func NewResource[T Record](doer Doer, kind Kind) *Resource[T] {
	return &Resource[T]{doer: doer, path: "/" + string(kind)}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	resp, err := r.doer.Do(ctx, gateway.Request{Method: http.MethodGet, Path: r.path})
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal response")
		}
		log.Printf("WARNING: API returned an array instead of the expected object for %s, treating as %d records", r.path, len(items))
		return items, nil
	}

	return decode[[]T](resp)
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	resp, err := r.doer.Do(ctx, gateway.Request{Method: http.MethodGet, Path: r.itemPath(id)})
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](resp)
}

func (r *Resource[T]) Create(ctx context.Context, item T) (T, error) {
	if err := item.Validate(); err != nil {
		var zero T
		return zero, err
	}

	resp, err := r.doer.Do(ctx, gateway.Request{Method: http.MethodPost, Path: r.path, Body: item})
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](resp)
}

func (r *Resource[T]) Update(ctx context.Context, id string, item T) (T, error) {
	if err := item.Validate(); err != nil {
		var zero T
		return zero, err
	}

	resp, err := r.doer.Do(ctx, gateway.Request{Method: http.MethodPut, Path: r.itemPath(id), Body: item})
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](resp)
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	resp, err := r.doer.Do(ctx, gateway.Request{Method: http.MethodDelete, Path: r.itemPath(id)})
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	var envelope apiResponse[jsoniter.RawMessage]
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		// A bare acknowledgement such as "Deleted" is fine.
		return nil
	}
	if envelope.Success != nil && !*envelope.Success {
		return errors.Newf("API error: %s", envelope.Message)
	}
	return nil
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func decode[T any](resp *gateway.Response) (T, error) {
	var envelope apiResponse[T]
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		var zero T
		return zero, errors.Wrap(err, "failed to unmarshal response")
	}
	if envelope.Success != nil && !*envelope.Success {
		var zero T
		return zero, errors.Newf("API error: %s", envelope.Message)
	}
	return envelope.Data, nil
}

// Client groups the resources exposed by the remote inventory API.
type Client struct {
	Products   *Resource[Product]
	Categories *Resource[Category]
	Vendors    *Resource[Vendor]
	Warehouses *Resource[Warehouse]
	Units      *Resource[Unit]
}

func NewClient(doer Doer) *Client {
	return &Client{
		Products:   NewResource[Product](doer, Products),
		Categories: NewResource[Category](doer, Categories),
		Vendors:    NewResource[Vendor](doer, Vendors),
		Warehouses: NewResource[Warehouse](doer, Warehouses),
		Units:      NewResource[Unit](doer, Units),
	}
}
