// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package userid hosts identity submodules and serves them over HTTP.
package userid

import (
	"context"

	"github.com/xmidt-org/quantcastid/consent"
	"github.com/xmidt-org/quantcastid/page"
)

// Category is the registry category of identity submodules.
const Category = "userId"

// IDs maps a submodule name to the identifier it resolved.
type IDs map[string]string

// Response is the result of a GetID call. A nil ID means no identifier
// exists yet.
type Response struct {
	ID IDs `json:"id"`
}

// Config is the caller supplied configuration of one submodule.
type Config struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// Submodule is an identity provider.
type Submodule interface {
	// Name is the key the submodule registers and reports its id under.
	Name() string

	// Decode converts a stored value into its final form.
	Decode(value string) string

	// GetID returns the identifier currently stored for doc. It must not
	// block on the document loading.
	GetID(ctx context.Context, doc *page.Document, config Config, signal *consent.Signal) Response
}
