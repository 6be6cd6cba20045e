// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package consent decides whether a consent signal permits storage access
// and reporting.
package consent

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Rules over the variables purposeConsent (purpose 1 consent) and
// legitimateInterest (purpose 10 legitimate interest). Each variable is
// false only when the signal explicitly denies that basis.
const (
	RuleAny    = "purposeConsent || legitimateInterest"
	RuleStrict = "purposeConsent"
)

type purposePaths struct {
	consent            string
	legitimateInterest string
}

var versionPaths = map[int]purposePaths{
	1: {
		consent:            "vendorData.purposeConsents.1",
		legitimateInterest: "vendorData.purposeLegitimateInterests.10",
	},
	2: {
		consent:            "vendorData.purpose.consents.1",
		legitimateInterest: "vendorData.purpose.legitimateInterests.10",
	},
}

// Gate evaluates consent signals against a compiled purpose rule.
type Gate struct {
	rule    string
	program *vm.Program
	logger  *zap.Logger
}

// NewGate compiles rule. An empty rule selects RuleAny.
func NewGate(rule string, logger *zap.Logger) (*Gate, error) {
	rule = strings.TrimSpace(rule)
	if len(rule) == 0 {
		rule = RuleAny
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	program, err := expr.Compile(rule,
		expr.Env(environment(true, true)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid consent rule %q: %w", rule, err)
	}

	return &Gate{
		rule:    rule,
		program: program,
		logger:  logger,
	}, nil
}

// Rule returns the source of the compiled purpose rule.
func (g *Gate) Rule() string {
	return g.rule
}

func environment(purposeConsent, legitimateInterest bool) map[string]any {
	return map[string]any{
		"purposeConsent":     purposeConsent,
		"legitimateInterest": legitimateInterest,
	}
}

// Permits reports whether s allows the identifier to be stored and reported.
func (g *Gate) Permits(s *Signal) bool {
	if !s.Applies() {
		return true
	}
	if len(s.ConsentString) == 0 {
		return false
	}

	paths, ok := versionPaths[s.APIVersion]
	if !ok {
		return true
	}

	root := map[string]any{"vendorData": s.VendorData}
	env := environment(
		!explicitlyFalse(deepAccess(root, paths.consent)),
		!explicitlyFalse(deepAccess(root, paths.legitimateInterest)),
	)

	out, err := expr.Run(g.program, env)
	if err != nil {
		g.logger.Error("failed to evaluate consent rule", zap.String("rule", g.rule), zap.Error(err))
		return true
	}
	permit, _ := out.(bool)
	return permit
}

func explicitlyFalse(v any) bool {
	b, ok := v.(bool)
	return ok && !b
}

// deepAccess follows a dotted path through nested maps and returns nil when
// any segment is missing or not a map.
func deepAccess(root map[string]any, path string) any {
	var current any = root
	for _, segment := range strings.Split(path, ".") {
		m, err := cast.ToStringMapE(current)
		if err != nil {
			return nil
		}
		v, ok := m[segment]
		if !ok {
			return nil
		}
		current = v
	}
	return current
}
