// Package bus routes read-only queries to the handler registered for their
// concrete type.
package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNoHandler        = errors.New("no query handler registered")
	ErrDuplicateHandler = errors.New("query handler already registered")
	ErrUnexpectedResult = errors.New("unexpected query result")
)

// Query is a read request. Validate runs before dispatch.
type Query interface {
	Validate() error
}

type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc adapts a function to QueryHandler
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// Middleware decorates every handler at registration time
type Middleware func(next QueryHandler) QueryHandler

type QueryBus struct {
	mu         sync.RWMutex
	handlers   map[reflect.Type]QueryHandler
	middleware []Middleware
}

// NewQueryBus builds a bus; the first middleware is the outermost.
func NewQueryBus(middleware ...Middleware) *QueryBus {
	return &QueryBus{
		handlers:   make(map[reflect.Type]QueryHandler),
		middleware: middleware,
	}
}

func (b *QueryBus) Register(query Query, handler QueryHandler) error {
	t := reflect.TypeOf(query)
	for i := len(b.middleware) - 1; i >= 0; i-- {
		handler = b.middleware[i](handler)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[t]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, t)
	}
	b.handlers[t] = handler
	return nil
}

// Ask validates query and hands it to its handler. Handler errors are
// wrapped, so callers match them with errors.As.
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("query validation failed: %w", err)
	}

	b.mu.RLock()
	handler, ok := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNoHandler, query)
	}

	result, err := handler.Handle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query handler failed: %w", err)
	}
	return result, nil
}

// Ask dispatches query on b and asserts the result type.
func Ask[R any](ctx context.Context, b *QueryBus, query Query) (R, error) {
	var zero R
	result, err := b.Ask(ctx, query)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrUnexpectedResult, result)
	}
	return typed, nil
}

// LoggingMiddleware logs failed queries at Warn and the rest at Debug
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			start := time.Now()
			result, err := next.Handle(ctx, query)
			fields := []zap.Field{
				zap.String("query", reflect.TypeOf(query).Name()),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("Query failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("Query answered", fields...)
			}
			return result, err
		})
	}
}
