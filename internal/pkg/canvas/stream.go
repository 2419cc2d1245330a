package canvas

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// watchdog cancels a download attempt when a single wait for the server
// (headers or one body read) lasts longer than timeout
type watchdog struct {
	timeout time.Duration
	cancel  context.CancelFunc
	timer   *time.Timer
	expired atomic.Bool
}

func newWatchdog(timeout time.Duration, cancel context.CancelFunc) *watchdog {
	w := &watchdog{timeout: timeout, cancel: cancel}
	if timeout > 0 {
		w.timer = time.AfterFunc(timeout, w.fire)
		w.timer.Stop()
	}
	return w
}

func (w *watchdog) fire() {
	w.expired.Store(true)
	w.cancel()
}

func (w *watchdog) arm() {
	if w.timer != nil {
		w.timer.Reset(w.timeout)
	}
}

func (w *watchdog) disarm() {
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *watchdog) fired() bool {
	return w.expired.Load()
}

// stream is the body of a successful download attempt. It owns the gate
// ticket and the context of that attempt until Close.
type stream struct {
	body     io.ReadCloser
	url      string
	watchdog *watchdog
	cancel   context.CancelFunc
	release  func()
	once     sync.Once
}

func (s *stream) Read(p []byte) (int, error) {
	s.watchdog.arm()
	n, err := s.body.Read(p)
	s.watchdog.disarm()

	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}

	if s.watchdog.fired() {
		err = ErrStalled
	}

	return n, &APIError{Kind: KindTransientNetwork, URL: s.url, Err: err}
}

func (s *stream) Close() error {
	var err error
	s.once.Do(func() {
		s.watchdog.disarm()
		err = s.body.Close()
		s.cancel()
		s.release()
	})
	return err
}
