// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package storage provides the cookie storage a document reads and writes
// its first party values through.
package storage

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrUnavailable is returned by writes when cookies are disabled or no
// backing store exists for the client.
var ErrUnavailable = errors.New("cookie storage unavailable")

// Cookie is a single value written through a Storage.
type Cookie struct {
	Name     string
	Value    string
	Expires  time.Time
	Path     string
	Domain   string
	SameSite http.SameSite
}

// Storage is the best-effort cookie store available to a document.
type Storage interface {
	// GetCookie returns the live value stored under name. Empty values are
	// reported as absent.
	GetCookie(ctx context.Context, name string) (string, bool)

	// SetCookie writes c. A cookie whose expiry is not in the future removes
	// the current value.
	SetCookie(ctx context.Context, c Cookie) error
}

type unavailable struct{}

func (unavailable) GetCookie(context.Context, string) (string, bool) {
	return "", false
}

func (unavailable) SetCookie(context.Context, Cookie) error {
	return ErrUnavailable
}

// Unavailable is the Storage of a document with cookies disabled.
var Unavailable Storage = unavailable{}
