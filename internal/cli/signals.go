package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// SignalHandler cancels a review on SIGINT/SIGTERM or on an explicit
// Interrupt, then runs the registered shutdown callbacks once.
type SignalHandler struct {
	signals    chan os.Signal
	interrupts chan string
	shutdown   chan struct{}
	stopCh     chan struct{} // closed by Stop to signal goroutine to exit
	done       chan struct{} // closed when goroutine exits
	stopOnce   sync.Once
	cancel     context.CancelFunc
	onShutdown []func()
	mu         sync.Mutex
}

// NewSignalHandler creates a signal handler with the given context cancel
func NewSignalHandler(cancel context.CancelFunc) *SignalHandler {
	return &SignalHandler{
		signals:    make(chan os.Signal, 1),
		interrupts: make(chan string, 1),
		shutdown:   make(chan struct{}),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		cancel:     cancel,
		onShutdown: make([]func(), 0),
	}
}

// StartWithNotify begins listening, optionally registering with OS signal
// handling. Tests pass false and deliver on h.signals or via Interrupt.
func (h *SignalHandler) StartWithNotify(notify bool) {
	if notify {
		signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	}

	started := make(chan struct{})
	go func() {
		defer close(h.done)
		close(started)

		var reason string
		select {
		case sig := <-h.signals:
			reason = "received " + sig.String()
		case reason = <-h.interrupts:
		case <-h.stopCh:
			return
		}

		log.Printf("Shutting down: %s", reason)
		if h.cancel != nil {
			h.cancel()
		}

		// Callbacks run in registration order
		h.mu.Lock()
		callbacks := make([]func(), len(h.onShutdown))
		copy(callbacks, h.onShutdown)
		h.mu.Unlock()

		for _, fn := range callbacks {
			fn()
		}
		close(h.shutdown)
	}()

	<-started
}

// Interrupt triggers the same shutdown path as a signal. Only the first
// trigger has any effect.
func (h *SignalHandler) Interrupt(reason string) {
	select {
	case h.interrupts <- reason:
	default:
	}
}

// OnShutdown registers a callback to run on shutdown
func (h *SignalHandler) OnShutdown(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onShutdown = append(h.onShutdown, fn)
}

// Stop stops listening. If a shutdown is in progress it gets a short grace
// period to finish its callbacks.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
	select {
	case <-h.done:
	case <-time.After(100 * time.Millisecond):
	}
}
