// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Jar is the cookie storage of a single HTTP exchange. Reads are served from
// the request cookies and from values set during the exchange; writes are
// queued as Set-Cookie headers for the response.
type Jar struct {
	lock    sync.Mutex
	values  map[string]string
	pending []*http.Cookie
	now     func() time.Time
}

// NewJar returns a Jar seeded with the cookies of r.
func NewJar(r *http.Request) *Jar {
	j := &Jar{
		values: map[string]string{},
		now:    time.Now,
	}
	if r != nil {
		// the browser sends the most specific cookie first
		for _, c := range r.Cookies() {
			if _, ok := j.values[c.Name]; !ok {
				j.values[c.Name] = c.Value
			}
		}
	}
	return j
}

func (j *Jar) GetCookie(_ context.Context, name string) (string, bool) {
	j.lock.Lock()
	defer j.lock.Unlock()
	v, ok := j.values[name]
	return v, ok && len(v) > 0
}

func (j *Jar) SetCookie(_ context.Context, c Cookie) error {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		SameSite: c.SameSite,
	}
	if err := hc.Valid(); err != nil {
		return fmt.Errorf("invalid cookie %s: %w", c.Name, err)
	}

	j.lock.Lock()
	defer j.lock.Unlock()
	if !c.Expires.IsZero() && !c.Expires.After(j.now()) {
		delete(j.values, c.Name)
	} else {
		j.values[c.Name] = c.Value
	}
	j.pending = append(j.pending, hc)
	return nil
}

// Cookies returns the cookies written through the Jar, in write order.
func (j *Jar) Cookies() []*http.Cookie {
	j.lock.Lock()
	defer j.lock.Unlock()
	return append([]*http.Cookie(nil), j.pending...)
}
