// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package userid

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
)

var (
	ErrDuplicateSubmodule = errors.New("submodule already registered")
	ErrInvalidSubmodule   = errors.New("submodule must be non-nil and named")
)

// NotFoundErr is returned when no submodule is registered under a name.
type NotFoundErr struct {
	Category string
	Name     string
}

func (e NotFoundErr) Error() string {
	return fmt.Sprintf("no %s submodule named %q", e.Category, e.Name)
}

func (e NotFoundErr) StatusCode() int {
	return http.StatusNotFound
}

// Registry holds submodules by category and name.
type Registry struct {
	lock       sync.RWMutex
	submodules map[string]map[string]Submodule
}

func NewRegistry() *Registry {
	return &Registry{
		submodules: map[string]map[string]Submodule{},
	}
}

func (r *Registry) Register(category string, s Submodule) error {
	if s == nil || len(s.Name()) == 0 || len(category) == 0 {
		return ErrInvalidSubmodule
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	named, ok := r.submodules[category]
	if !ok {
		named = map[string]Submodule{}
		r.submodules[category] = named
	}
	if _, exists := named[s.Name()]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateSubmodule, category, s.Name())
	}
	named[s.Name()] = s
	return nil
}

func (r *Registry) Get(category, name string) (Submodule, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if s, ok := r.submodules[category][name]; ok {
		return s, nil
	}
	return nil, NotFoundErr{Category: category, Name: name}
}

// Names returns the sorted names registered under category.
func (r *Registry) Names(category string) []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	names := make([]string, 0, len(r.submodules[category]))
	for name := range r.submodules[category] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
