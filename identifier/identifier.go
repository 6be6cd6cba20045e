// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package identifier manages the lifecycle of the first party Quantcast
// identifier: generation, lookup, and persistence under the __qca cookie.
package identifier

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// CookieName is the storage key of the identifier.
	CookieName = "__qca"

	// Prefix starts every generated identifier.
	Prefix = "B0"

	// DefaultExpiryDays is 13 months minus two days.
	DefaultExpiryDays = 392

	// DefaultExpiry is DefaultExpiryDays as a duration.
	DefaultExpiry = DefaultExpiryDays * 24 * time.Hour

	// MaxExpiryDays caps configured lifetimes well inside time.Duration.
	MaxExpiryDays = 36500

	maxRandom = 2147483647
)

var validPattern = regexp.MustCompile(`^B0-\d+-\d+$`)

// Generator produces new identifier values.
type Generator interface {
	Generate(now time.Time) string
}

// GeneratorFunc adapts a function to a Generator.
type GeneratorFunc func(time.Time) string

func (f GeneratorFunc) Generate(now time.Time) string {
	return f(now)
}

// NewGenerator returns the default Generator, which draws the random part
// uniformly from [0, 2147483647].
func NewGenerator() Generator {
	return GeneratorFunc(func(now time.Time) string {
		return Format(uint32(rand.Int64N(maxRandom+1)), now)
	})
}

// Format renders an identifier from its random part and creation time.
func Format(random uint32, created time.Time) string {
	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteByte('-')
	b.WriteString(strconv.FormatUint(uint64(random), 10))
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(created.UnixMilli(), 10))
	return b.String()
}

// Valid reports whether s has the shape of a generated identifier.
func Valid(s string) bool {
	return validPattern.MatchString(s)
}

// Timestamp returns the creation time embedded in a generated identifier.
func Timestamp(s string) (time.Time, bool) {
	if !Valid(s) {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s[strings.LastIndexByte(s, '-')+1:], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
