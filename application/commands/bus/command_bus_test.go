package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type writeCommand struct{ Key string }

func (c writeCommand) Validate() error {
	if c.Key == "" {
		return errors.New("key is required")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

func TestCommandBus_SendDispatchesByType(t *testing.T) {
	var got string
	b := NewCommandBus()
	require.NoError(t, b.Register(writeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		got = cmd.(writeCommand).Key
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), writeCommand{Key: "2024-06-01"}))

	assert.Equal(t, "2024-06-01", got)
}

func TestCommandBus_Errors(t *testing.T) {
	noop := CommandHandlerFunc(func(context.Context, Command) error { return nil })
	b := NewCommandBus()
	require.NoError(t, b.Register(writeCommand{}, noop))

	assert.ErrorIs(t, b.Send(context.Background(), otherCommand{}), ErrNoHandler)
	assert.ErrorContains(t, b.Send(context.Background(), writeCommand{}), "command validation failed")
	assert.ErrorIs(t, b.Register(writeCommand{}, noop), ErrDuplicateHandler)
}

func TestCommandBus_LoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sentinel := errors.New("conflict")
	b := NewCommandBus(LoggingMiddleware(zap.New(core)))
	require.NoError(t, b.Register(otherCommand{}, CommandHandlerFunc(func(context.Context, Command) error {
		return sentinel
	})))

	err := b.Send(context.Background(), otherCommand{})

	assert.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, logs.FilterMessage("Command failed").Len())
	assert.Equal(t, "otherCommand", logs.All()[0].ContextMap()["command"])
}
