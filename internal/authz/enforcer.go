// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package authz

import (
	"fmt"
	"os"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

// Actions derived from the HTTP method.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && r.act == p.act
`

// defaultPolicy is loaded when no policy file is configured.
var defaultPolicy = [][]string{
	{"viewer", "/api/v1/access/*", ActionRead},
	{"viewer", "/api/v1/import/stats", ActionRead},
	{"viewer", "/api/v1/import/history", ActionRead},
	{"viewer", "/api/v1/ws", ActionRead},
	{"admin", "/api/v1/import", ActionWrite},
}

var defaultGrouping = [][]string{
	{"admin", "viewer"},
}

// EnforcerConfig configures the enforcer.
type EnforcerConfig struct {
	// PolicyPath is a Casbin CSV policy file. Empty uses the built-in policy.
	PolicyPath string

	// CacheTTL bounds how long a decision is reused. Zero disables caching.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns the built-in policy with a one-minute cache.
func DefaultEnforcerConfig() EnforcerConfig {
	return EnforcerConfig{CacheTTL: time.Minute}
}

// Enforcer wraps a synced Casbin enforcer with a decision cache.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache
}

// NewEnforcer loads the model and policy.
func NewEnforcer(cfg EnforcerConfig) (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" {
		if _, statErr := os.Stat(cfg.PolicyPath); statErr != nil {
			return nil, fmt.Errorf("policy file: %w", statErr)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadDefaultPolicy(enforcer)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	e := &Enforcer{enforcer: enforcer}
	if cfg.CacheTTL > 0 {
		e.cache = newDecisionCache(cfg.CacheTTL)
	}
	rules, _ := enforcer.GetPolicy()
	grouping, _ := enforcer.GetGroupingPolicy()
	updatePolicyStats(len(rules), len(grouping))
	return e, nil
}

func loadDefaultPolicy(enforcer *casbin.SyncedEnforcer) error {
	if _, err := enforcer.AddPolicies(defaultPolicy); err != nil {
		return fmt.Errorf("add default policy: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicies(defaultGrouping); err != nil {
		return fmt.Errorf("add default grouping: %w", err)
	}
	return nil
}

// Enforce reports whether role may perform action on object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	start := time.Now()

	if e.cache != nil {
		if allowed, ok := e.cache.get(role, object, action); ok {
			recordDecision(role, action, allowed, time.Since(start), true)
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		recordError("enforce")
		return false, fmt.Errorf("enforce %s %s %s: %w", role, object, action, err)
	}

	if e.cache != nil {
		e.cache.set(role, object, action, allowed)
	}
	recordDecision(role, action, allowed, time.Since(start), false)
	return allowed, nil
}

// Policy returns the loaded permission rules.
func (e *Enforcer) Policy() [][]string {
	rules, _ := e.enforcer.GetPolicy()
	return rules
}

// Close drops the cache.
func (e *Enforcer) Close() {
	if e.cache != nil {
		e.cache.clear()
	}
}
