// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package page

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RootDomainResolver maps the host of a document to the domain first party
// cookies are written under.
type RootDomainResolver func(host string) string

// RootDomain returns the registrable domain of host, such as example.co.uk
// for www.shop.example.co.uk. Ports are removed. IP addresses, single label
// hosts and hosts that are themselves public suffixes are returned as is.
func RootDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")

	if len(host) == 0 || net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
