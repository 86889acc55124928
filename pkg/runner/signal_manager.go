package runner

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalManager turns SIGINT and SIGTERM into an interrupt channel suitable
// for WithInterruptSource, so a long simulation stops between two steps
// instead of in the middle of one.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewSignalManager creates a new manager and immediately starts listening for signals.
func NewSignalManager() *SignalManager {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return &SignalManager{ctx: ctx, cancel: cancel}
}

// Interrupts is closed when a signal arrives or Stop is called.
func (sm *SignalManager) Interrupts() <-chan struct{} {
	return sm.ctx.Done()
}

// Interrupted reports whether a signal was received or Stop was called.
func (sm *SignalManager) Interrupted() bool {
	return sm.ctx.Err() != nil
}

// Stop permanently stops the signal listener.
func (sm *SignalManager) Stop() {
	sm.once.Do(sm.cancel)
}
