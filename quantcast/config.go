// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package quantcast

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/xmidt-org/quantcastid/beacon"
	"github.com/xmidt-org/quantcastid/consent"
	"github.com/xmidt-org/quantcastid/identifier"
)

// Config is the service wide configuration of the submodule.
type Config struct {
	// ExpiryDays is the default identifier lifetime. Zero selects 392 days.
	ExpiryDays int `validate:"gte=0,lte=36500"`

	PixelURL    string `validate:"omitempty,url"`
	PartnerCode string

	// ConsentRule is the purpose rule evaluated for GDPR signals. Empty
	// selects consent.RuleAny.
	ConsentRule string

	// SameSite is the SameSite attribute of the identifier cookie.
	SameSite string `validate:"omitempty,oneof=lax strict none default"`

	Sender beacon.SenderConfig
}

func (c Config) validate() (Config, error) {
	if err := validator.New().Struct(c); err != nil {
		return c, err
	}
	if c.ExpiryDays == 0 {
		c.ExpiryDays = identifier.DefaultExpiryDays
	}
	if len(c.PixelURL) == 0 {
		c.PixelURL = beacon.DefaultEndpoint
	}
	if len(c.PartnerCode) == 0 {
		c.PartnerCode = beacon.DefaultPartnerCode
	}
	if len(c.ConsentRule) == 0 {
		c.ConsentRule = consent.RuleAny
	}
	return c, nil
}

func (c Config) sameSite() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteLaxMode
	}
}

// reportingConfig is derived from the caller's params on every GetID.
type reportingConfig struct {
	ExpiryDays   int
	HashedUserID string
}

// Params keys
const (
	ExpiresParam      = "expires"
	HashedUserIDParam = "hashedUserId"
)

func newReportingConfig(params map[string]any, defaultDays int) reportingConfig {
	rc := reportingConfig{ExpiryDays: defaultDays}
	if days, err := cast.ToIntE(params[ExpiresParam]); err == nil && days > 0 {
		rc.ExpiryDays = min(days, identifier.MaxExpiryDays)
	}
	if v, ok := params[HashedUserIDParam]; ok && v != nil {
		rc.HashedUserID = strings.TrimSpace(cast.ToString(v))
	}
	return rc
}
