package client

import (
	"context"
	"net/http"
	"strconv"
)

type mutationResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Endpoint is the CRUD surface of one resource collection.
type Endpoint[T any] struct {
	client *Client
	path   string
}

func newEndpoint[T any](c *Client, path string) *Endpoint[T] {
	return &Endpoint[T]{client: c, path: path}
}

func (e *Endpoint[T]) itemPath(id int64) string {
	return e.path + "/" + strconv.FormatInt(id, 10)
}

func (e *Endpoint[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	if err := e.client.do(ctx, http.MethodGet, e.path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *Endpoint[T]) Get(ctx context.Context, id int64) (T, error) {
	var row T
	err := e.client.do(ctx, http.MethodGet, e.itemPath(id), nil, &row)
	return row, err
}

// Create stores row and returns it as persisted, including its new key.
func (e *Endpoint[T]) Create(ctx context.Context, row T) (T, error) {
	var out mutationResponse[T]
	err := e.client.do(ctx, http.MethodPost, e.path, row, &out)
	return out.Data, err
}

func (e *Endpoint[T]) Update(ctx context.Context, id int64, row T) (T, error) {
	var out mutationResponse[T]
	err := e.client.do(ctx, http.MethodPut, e.itemPath(id), row, &out)
	return out.Data, err
}

func (e *Endpoint[T]) Delete(ctx context.Context, id int64) error {
	return e.client.do(ctx, http.MethodDelete, e.itemPath(id), nil, nil)
}
