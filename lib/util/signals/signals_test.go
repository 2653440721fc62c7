package signals

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// resetHandlers clears registrations for the duration of a test.
func resetHandlers(t *testing.T) {
	t.Helper()
	mu.Lock()
	savedReload, savedInterrupt := reloaders, interrupters
	reloaders, interrupters = nil, nil
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		reloaders, interrupters = savedReload, savedInterrupt
		mu.Unlock()
	})
}

func TestRegisterInterruptHandler(t *testing.T) {
	resetHandlers(t)

	called := false
	id := RegisterInterruptHandler(func() { called = true })
	assert.GreaterOrEqual(t, int(id), 0)

	handleInterrupted()
	assert.True(t, called)
}

func TestRegisterReloadHandler(t *testing.T) {
	resetHandlers(t)

	called := false
	RegisterReloadHandler(func() { called = true })

	handleInterrupted()
	assert.False(t, called, "interrupt must not run reload handlers")
	handleReload()
	assert.True(t, called)
}

func TestNilHandlersIgnored(t *testing.T) {
	resetHandlers(t)

	assert.Equal(t, HandlerID(-1), RegisterInterruptHandler(nil))
	assert.Equal(t, HandlerID(-1), RegisterReloadHandler(nil))
	assert.Empty(t, interrupters)
	assert.Empty(t, reloaders)
}

func TestHandlersCalledInOrder(t *testing.T) {
	resetHandlers(t)

	var order []int
	for i := 0; i < 3; i++ {
		idx := i
		RegisterInterruptHandler(func() { order = append(order, idx) })
	}
	handleInterrupted()
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestDeregisterInterruptHandler(t *testing.T) {
	resetHandlers(t)

	calls := 0
	id := RegisterInterruptHandler(func() { calls++ })
	RegisterInterruptHandler(func() { calls += 10 })

	DeregisterInterruptHandler(id)
	DeregisterInterruptHandler(HandlerID(9999))
	handleInterrupted()
	assert.Equal(t, 10, calls)
}

// TestHandlerPanicRecovery verifies a panicking handler does not stop the rest.
func TestHandlerPanicRecovery(t *testing.T) {
	resetHandlers(t)

	second := false
	RegisterInterruptHandler(func() { panic("boom") })
	RegisterInterruptHandler(func() { second = true })

	assert.NotPanics(t, handleInterrupted)
	assert.True(t, second)
}

func TestConcurrentRegistration(t *testing.T) {
	resetHandlers(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RegisterInterruptHandler(func() {})
			RegisterReloadHandler(func() {})
		}()
	}
	wg.Wait()

	mu.RLock()
	defer mu.RUnlock()
	assert.Len(t, interrupters, 50)
	assert.Len(t, reloaders, 50)
}

// TestWithInterrupt verifies the context is cancelled by an interrupt.
func TestWithInterrupt(t *testing.T) {
	resetHandlers(t)

	ctx, stop := WithInterrupt(context.Background())
	defer stop()

	assert.NoError(t, ctx.Err())
	handleInterrupted()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

// TestWithInterrupt_Stop verifies stop deregisters the handler.
func TestWithInterrupt_Stop(t *testing.T) {
	resetHandlers(t)

	ctx, stop := WithInterrupt(context.Background())
	stop()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Empty(t, interrupters)
}
