// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package page

import (
	"sync"
	"sync/atomic"
)

// Trigger runs a task once per document, when the document is loaded. The
// task receives the value of the most recent Arm that happened before it ran.
type Trigger[T any] struct {
	ready  *Ready
	task   func(T)
	latest atomic.Pointer[T]
	armed  sync.Once
	ran    sync.Once
}

func NewTrigger[T any](ready *Ready, task func(T)) *Trigger[T] {
	return &Trigger[T]{
		ready: ready,
		task:  task,
	}
}

// Arm stores v as the task context and schedules the task. Re-arming
// replaces the context of a task that has not run yet; it never schedules a
// second run.
func (t *Trigger[T]) Arm(v T) {
	t.latest.Store(&v)
	t.armed.Do(func() {
		if t.ready.Fired() {
			t.fire()
		}
		t.ready.OnReady(t.fire)
	})
}

func (t *Trigger[T]) fire() {
	t.ran.Do(func() {
		t.task(*t.latest.Load())
	})
}
