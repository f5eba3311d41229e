/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package draw

import (
	"sync"
	"time"
)

// Scheduler runs fn every d until the returned stop function is called.
// Stop must be safe to call more than once, including from inside fn.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
}

// TickerScheduler drives tasks from a time.Ticker. Each tick is handed to
// Dispatch, which lets the owner run callbacks on its own event loop; when
// Dispatch is nil the callback runs on the ticker goroutine.
type TickerScheduler struct {
	Dispatch func(func())
}

func (s TickerScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if s.Dispatch != nil {
					s.Dispatch(fn)
				} else {
					fn()
				}
			}
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() { close(done) })
	}
}
