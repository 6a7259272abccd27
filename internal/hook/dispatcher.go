package hook

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Dispatcher fires events at the hooks subscribed to them. Each hook runs in its
// own goroutine so callers are never blocked by a slow hook.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over the hooks known to manager.
func NewDispatcher(manager *Manager, executor *Executor) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Fire starts every hook subscribed to req.Event and returns how many were started.
func (d *Dispatcher) Fire(req *Request) int {
	hooks := d.manager.For(req.Event)
	for _, h := range hooks {
		d.wg.Add(1)
		go func(h *Hook) {
			defer d.wg.Done()
			d.run(h, req)
		}(h)
	}
	return len(hooks)
}

func (d *Dispatcher) run(h *Hook, req *Request) {
	log := logrus.WithFields(logrus.Fields{
		"hook":    h.Manifest.Name,
		"event":   req.Event,
		"session": req.SessionID,
	})

	resp, err := d.executor.Execute(d.ctx, h, req)
	if err != nil {
		log.WithError(err).Warn("hook failed")
		return
	}
	if !resp.Success {
		log.WithField("error", resp.Error).Warn("hook reported failure")
		return
	}
	log.Debug("hook ran")
}

// Wait blocks until all started hooks have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close kills running hooks and waits for them to exit.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}
