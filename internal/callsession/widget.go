package callsession

import (
	"sync"
	"time"

	"github.com/aarambhveda/counselor/pkg/logger"
)

// ControllerFactory builds a fresh controller for a mount. onClose must be wired
// to the controller's OnClose so that hanging up closes the widget.
type ControllerFactory func(onClose func()) *Controller

// Widget hosts the call controller the way the floating call panel does:
// it mounts on open and unmounts a short delay after close, so a quick
// reopen keeps the same controller.
type Widget struct {
	factory ControllerFactory
	clock   Clock
	delay   time.Duration
	logger  *logger.Logger

	mu      sync.Mutex
	open    bool
	ctrl    *Controller
	pending Timer
	gen     uint64
}

// NewWidget creates a closed, unmounted widget
func NewWidget(factory ControllerFactory, clock Clock, unmountDelay time.Duration, logger *logger.Logger) *Widget {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Widget{
		factory: factory,
		clock:   clock,
		delay:   unmountDelay,
		logger:  logger.Named("widget"),
	}
}

// Open shows the widget, mounting a controller if none is mounted
func (w *Widget) Open() *Controller {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.open = true
	w.gen++
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	if w.ctrl == nil {
		w.ctrl = w.factory(w.Close)
		w.logger.Debug("Mounted call controller")
	}
	return w.ctrl
}

// Close hides the widget. The controller is unmounted after the delay unless
// the widget is reopened first.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return
	}
	w.open = false
	w.gen++
	gen := w.gen
	w.pending = w.clock.AfterFunc(w.delay, func() { w.unmount(gen) })
}

func (w *Widget) unmount(gen uint64) {
	w.mu.Lock()
	if w.gen != gen || w.open || w.ctrl == nil {
		w.mu.Unlock()
		return
	}
	ctrl := w.ctrl
	w.ctrl = nil
	w.pending = nil
	w.mu.Unlock()

	if err := ctrl.Close(); err != nil {
		w.logger.Warn("Error unmounting call controller", logger.Error(err))
	}
	w.logger.Debug("Unmounted call controller")
}

// Shutdown unmounts immediately, regardless of the delay
func (w *Widget) Shutdown() {
	w.mu.Lock()
	w.open = false
	w.gen++
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	ctrl := w.ctrl
	w.ctrl = nil
	w.mu.Unlock()

	if ctrl != nil {
		if err := ctrl.Close(); err != nil {
			w.logger.Warn("Error unmounting call controller", logger.Error(err))
		}
	}
}

// IsOpen reports whether the widget is visible
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// IsMounted reports whether a controller is mounted
func (w *Widget) IsMounted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl != nil
}

// Controller returns the mounted controller, or nil
func (w *Widget) Controller() *Controller {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl
}
