// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

// Key defines the field mapping to retrieve an item from storage.
type Key struct {
	// Bucket is a collection of items. For cookie storage it is the client
	// partition (i.e. the device or browser the cookies belong to).
	Bucket string `json:"bucket"`

	// ID is the unique ID for an item in a bucket. For cookie storage it is
	// the cookie name.
	ID string `json:"id"`
}

// Item defines the cookie-like value to be stored.
type Item struct {
	// ID is how the client refers to the object.
	ID string `json:"id"`

	// Value is the opaque stored value.
	Value string `json:"value"`

	// Domain and Path scope the value the same way a browser cookie is scoped.
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`

	// TTL is the time to live in storage in seconds. A nil TTL never expires.
	TTL *int64 `json:"ttl,omitempty"`
}
