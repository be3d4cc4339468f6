// Package cedar ties the validator's pieces into the one concurrency-safe
// container a caller validating many policies against a changing schema
// actually needs: a named set of policies that can be read without
// locking while writers add or remove entries.
package cedar

import (
	"iter"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/cedar-policy/cedar-validate/ast"
	"github.com/cedar-policy/cedar-validate/schema"
	"github.com/cedar-policy/cedar-validate/validator"
)

// PolicyID names one policy within a PolicySet.
type PolicyID string

// PolicyMap is a map of policy IDs to policies.
type PolicyMap map[PolicyID]*ast.Policy

// All returns an iterator over the policy IDs and policies in the PolicyMap.
func (p PolicyMap) All() iter.Seq2[PolicyID, *ast.Policy] {
	return maps.All(p)
}

// policySnapshot is a point-in-time view of a PolicySet's data. The
// policies map is never modified after creation.
type policySnapshot struct {
	policies PolicyMap
}

var emptySnapshot = &policySnapshot{policies: PolicyMap{}}

// PolicySet is a named set of policies, intended to be validated as a
// whole against a schema. It is safe for concurrent use by multiple
// goroutines: reads are lock-free, writes use copy-on-write.
type PolicySet struct {
	snap atomic.Pointer[policySnapshot]
	mu   sync.Mutex // serializes writers only
}

func (p *PolicySet) loadSnapshot() *policySnapshot {
	if s := p.snap.Load(); s != nil {
		return s
	}
	return emptySnapshot
}

// NewPolicySet returns a new, empty PolicySet.
func NewPolicySet() *PolicySet {
	ps := &PolicySet{}
	ps.snap.Store(&policySnapshot{policies: PolicyMap{}})
	return ps
}

// NewPolicySetFromMap returns a PolicySet initialized with the given
// policies.
func NewPolicySetFromMap(policies PolicyMap) *PolicySet {
	ps := &PolicySet{}
	ps.snap.Store(&policySnapshot{policies: maps.Clone(policies)})
	return ps
}

// Get returns the policy with the given ID, or nil if none exists.
func (p *PolicySet) Get(id PolicyID) *ast.Policy {
	return p.loadSnapshot().policies[id]
}

// Add inserts or replaces the policy with the given ID. Returns true if a
// policy with that ID did not already exist in the set.
func (p *PolicySet) Add(id PolicyID, policy *ast.Policy) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.loadSnapshot()
	newPolicies := maps.Clone(old.policies)
	_, exists := newPolicies[id]
	newPolicies[id] = policy

	p.snap.Store(&policySnapshot{policies: newPolicies})
	return !exists
}

// Remove removes a policy from the set. Returns true if a policy with
// that ID existed.
func (p *PolicySet) Remove(id PolicyID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.loadSnapshot()
	if _, exists := old.policies[id]; !exists {
		return false
	}

	newPolicies := maps.Clone(old.policies)
	delete(newPolicies, id)

	p.snap.Store(&policySnapshot{policies: newPolicies})
	return true
}

// Map returns a new PolicyMap instance of the policies in the set.
func (p *PolicySet) Map() PolicyMap {
	return maps.Clone(p.loadSnapshot().policies)
}

// All returns an iterator over the (PolicyID, *ast.Policy) pairs in the set.
func (p *PolicySet) All() iter.Seq2[PolicyID, *ast.Policy] {
	s := p.loadSnapshot()
	return func(yield func(PolicyID, *ast.Policy) bool) {
		for k, v := range s.policies {
			if !yield(k, v) {
				break
			}
		}
	}
}

// Len returns the number of policies in the set.
func (p *PolicySet) Len() int {
	return len(p.loadSnapshot().policies)
}

// ValidateAll runs validator.Validate over every policy in the set
// against sch under mode, returning one Result per policy.
//
// This is a set-level convenience beyond the single-policy core: a
// schema or policy body can change between calls
// (the PolicySet is mutable), so nothing here is cached across calls.
func (p *PolicySet) ValidateAll(sch *schema.Schema, mode validator.Mode) map[PolicyID]validator.Result {
	s := p.loadSnapshot()
	out := make(map[PolicyID]validator.Result, len(s.policies))
	for id, pol := range s.policies {
		out[id] = validator.Validate(sch, pol, mode)
	}
	return out
}

// AllOK reports whether every policy in results is accepted (no errors
// under any of its request environments).
func AllOK(results map[PolicyID]validator.Result) bool {
	for _, r := range results {
		if !r.OK() {
			return false
		}
	}
	return true
}
