// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package consent

import (
	"encoding/json"
	"math"

	"github.com/spf13/cast"
)

// Signal is a pre-parsed consent management platform result.
type Signal struct {
	// GDPRApplies is nil unless the platform reported a strict boolean.
	GDPRApplies *bool `json:"gdprApplies,omitempty"`

	ConsentString string `json:"consentString,omitempty"`

	// APIVersion is zero when the platform did not report an integral version.
	APIVersion int `json:"apiVersion,omitempty"`

	VendorData map[string]any `json:"vendorData,omitempty"`
}

// Applies reports whether the platform signaled that consent is required.
func (s *Signal) Applies() bool {
	return s != nil && s.GDPRApplies != nil && *s.GDPRApplies
}

// UnmarshalJSON accepts any shape for the individual fields. Values that do
// not have the expected type are dropped rather than rejected.
func (s *Signal) UnmarshalJSON(data []byte) error {
	var raw struct {
		GDPRApplies   any `json:"gdprApplies"`
		ConsentString any `json:"consentString"`
		APIVersion    any `json:"apiVersion"`
		VendorData    any `json:"vendorData"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Signal{}
	if vd, err := cast.ToStringMapE(raw.VendorData); err == nil {
		s.VendorData = vd
	}
	if b, ok := raw.GDPRApplies.(bool); ok {
		s.GDPRApplies = &b
	}
	if f, ok := raw.APIVersion.(float64); ok && f == math.Trunc(f) {
		s.APIVersion = int(f)
	}
	switch v := raw.ConsentString.(type) {
	case nil:
	case bool:
		if v {
			s.ConsentString = "true"
		}
	default:
		s.ConsentString = cast.ToString(v)
	}
	return nil
}
