// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xmidt-org/quantcastid/model"
)

// ErrItemNotFound is matched by every not found error returned by a backend.
var ErrItemNotFound = errors.New("item not found")

// KeyNotFoundError reports a key with no live item behind it. Expired
// items are reported the same way.
type KeyNotFoundError struct {
	Key model.Key
}

func (knf KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s: bucket '%s', id '%s'", ErrItemNotFound, knf.Key.Bucket, knf.Key.ID)
}

func (knf KeyNotFoundError) Unwrap() error {
	return ErrItemNotFound
}

func (knf KeyNotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// SanitizedError hides backend specific failure details from callers while
// keeping them available for logging.
type SanitizedError struct {
	Err     error
	ErrHTTP error
}

func (s SanitizedError) Error() string {
	return s.Err.Error()
}

func (s SanitizedError) Unwrap() error {
	return s.Err
}

func (s SanitizedError) StatusCode() int {
	var coder interface{ StatusCode() int }
	if errors.As(s.ErrHTTP, &coder) {
		return coder.StatusCode()
	}
	return http.StatusInternalServerError
}
