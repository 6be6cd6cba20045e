// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package page

import "sync"

// Ready signals that a document has finished loading. It fires at most once.
type Ready struct {
	lock    sync.Mutex
	fired   bool
	done    chan struct{}
	waiting []func()
}

func NewReady() *Ready {
	return &Ready{
		done: make(chan struct{}),
	}
}

// Fire marks the document as loaded and runs the queued callbacks in
// registration order. Calls after the first do nothing.
func (r *Ready) Fire() {
	r.lock.Lock()
	if r.fired {
		r.lock.Unlock()
		return
	}
	r.fired = true
	close(r.done)
	waiting := r.waiting
	r.waiting = nil
	r.lock.Unlock()

	for _, fn := range waiting {
		fn()
	}
}

// Fired reports whether Fire has been called.
func (r *Ready) Fired() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.fired
}

// OnReady runs fn once the document is loaded. If it already is, fn runs
// before OnReady returns.
func (r *Ready) OnReady(fn func()) {
	r.lock.Lock()
	if !r.fired {
		r.waiting = append(r.waiting, fn)
		r.lock.Unlock()
		return
	}
	r.lock.Unlock()
	fn()
}

// Done is closed when the document is loaded.
func (r *Ready) Done() <-chan struct{} {
	return r.done
}
