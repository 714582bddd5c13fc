// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Handle identifies a subscription on a Feed.
type Handle uint64

// Provider delivers samples to subscribed callbacks.
type Provider interface {
	Subscribe(fn func(Sample)) Handle
	Unsubscribe(h Handle)
}

// Feed is a Provider that fans every published sample out to its subscribers.
// Callbacks run on the publishing goroutine.
type Feed struct {
	mu   sync.RWMutex
	next Handle
	subs map[Handle]func(Sample)
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[Handle]func(Sample))}
}

// Subscribe registers fn and returns the handle that removes it.
func (f *Feed) Subscribe(fn func(Sample)) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.subs[f.next] = fn
	return f.next
}

// Unsubscribe removes a callback. Unknown handles are ignored.
func (f *Feed) Unsubscribe(h Handle) {
	f.mu.Lock()
	delete(f.subs, h)
	f.mu.Unlock()
}

// Publish sanitizes s and hands it to every subscriber.
func (f *Feed) Publish(s Sample) {
	s = s.Sanitize()

	f.mu.RLock()
	fns := make([]func(Sample), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.RUnlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Pump polls src every interval and publishes each sample to f until ctx is
// done. Read errors are logged and the tick is skipped.
func Pump(ctx context.Context, src Source, interval time.Duration, f *Feed) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, err := src.Next()
			if err != nil {
				log.Printf("motion: read error: %v", err)
				continue
			}
			f.Publish(s)
		}
	}
}
