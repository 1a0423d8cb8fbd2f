// Package bus routes state-changing commands to the handler registered for
// their concrete type.
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
	ErrNoHandler        = errors.New("no command handler registered")
	ErrDuplicateHandler = errors.New("command handler already registered")
)

// Command is a write request. Validate runs before dispatch.
type Command interface {
	Validate() error
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandHandlerFunc adapts a function to CommandHandler
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Middleware decorates every handler at registration time
type Middleware func(next CommandHandler) CommandHandler

type CommandBus struct {
	mu         sync.RWMutex
	handlers   map[reflect.Type]CommandHandler
	middleware []Middleware
}

// NewCommandBus builds a bus; the first middleware is the outermost.
func NewCommandBus(middleware ...Middleware) *CommandBus {
	return &CommandBus{
		handlers:   make(map[reflect.Type]CommandHandler),
		middleware: middleware,
	}
}

func (b *CommandBus) Register(cmd Command, handler CommandHandler) error {
	t := reflect.TypeOf(cmd)
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

// Send validates cmd and hands it to its handler.
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	b.mu.RLock()
	handler, ok := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %T", ErrNoHandler, cmd)
	}

	if err := handler.Handle(ctx, cmd); err != nil {
		return fmt.Errorf("command handler failed: %w", err)
	}
	return nil
}

// LoggingMiddleware logs failed commands at Warn and the rest at Debug
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)
			fields := []zap.Field{
				zap.String("command", reflect.TypeOf(cmd).Name()),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("Command failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("Command succeeded", fields...)
			}
			return err
		})
	}
}
