// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package beacon builds and dispatches the first party reporting pixel.
package beacon

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultEndpoint is the pixel collection endpoint.
	DefaultEndpoint = "https://pixel.quantserve.com/pixel"

	// DefaultPartnerCode identifies integrations without a dedicated account.
	DefaultPartnerCode = "p-prebid"

	// HashTypeMarker is sent as uht alongside a hashed user id.
	HashTypeMarker = "1"
)

// Params is the payload of one pixel.
type Params struct {
	// New is set when Identifier was created for this report.
	New bool

	Identifier string
	Domain     string

	// Time is the report time in the client time zone.
	Time time.Time

	// Screen is optional, formatted as WIDTHxHEIGHTxDEPTH.
	Screen string

	// HashedUserID is optional.
	HashedUserID string

	PartnerCode string
}

// TimezoneOffset returns the number of minutes t's zone is behind UTC, so
// UTC-5 is 300 and UTC+1 is -60.
func TimezoneOffset(t time.Time) int {
	_, offset := t.Zone()
	return -offset / 60
}

func (p Params) Values() url.Values {
	v := url.Values{}
	if p.New {
		v.Set("fpan", "1")
	} else {
		v.Set("fpan", "0")
	}
	v.Set("fpa", p.Identifier)
	v.Set("d", p.Domain)
	v.Set("et", strconv.FormatInt(p.Time.UnixMilli(), 10))
	v.Set("tzo", strconv.Itoa(TimezoneOffset(p.Time)))
	if len(p.Screen) > 0 {
		v.Set("sr", p.Screen)
	}
	if len(p.HashedUserID) > 0 {
		v.Set("uh", p.HashedUserID)
		v.Set("uht", HashTypeMarker)
	}

	partner := p.PartnerCode
	if len(partner) == 0 {
		partner = DefaultPartnerCode
	}
	v.Set("a", partner)
	return v
}

// URL returns the pixel URL on endpoint. Query parameters already present on
// endpoint are kept unless the payload sets them.
func (p Params) URL(endpoint string) (string, error) {
	if len(endpoint) == 0 {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid pixel endpoint %q: %w", endpoint, err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("pixel endpoint %q is not absolute", endpoint)
	}

	q := u.Query()
	for k, vs := range p.Values() {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
