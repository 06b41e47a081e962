package authz

import (
	"sort"

	"solid-service/internal/auth"
	"solid-service/internal/identifier"
)

// AccessMode is an operational verb a request needs on a resource.
type AccessMode string

const (
	Read   AccessMode = "read"
	Append AccessMode = "append"
	Write  AccessMode = "write"
	Create AccessMode = "create"
	Delete AccessMode = "delete"

	// Control is the ACL-specific mode governing access to a resource's
	// ACL document. It rides alongside the operational modes in
	// permission maps but is never required by a plain HTTP operation.
	Control AccessMode = "control"
)

// ModeSet is a set of access modes.
type ModeSet map[AccessMode]struct{}

// NewModeSet builds a set from the given modes.
func NewModeSet(modes ...AccessMode) ModeSet {
	set := make(ModeSet, len(modes))
	for _, mode := range modes {
		set[mode] = struct{}{}
	}
	return set
}

func (s ModeSet) Has(mode AccessMode) bool {
	_, ok := s[mode]
	return ok
}

func (s ModeSet) Add(mode AccessMode) {
	s[mode] = struct{}{}
}

// Union returns a new set holding the modes of both operands.
func (s ModeSet) Union(other ModeSet) ModeSet {
	merged := make(ModeSet, len(s)+len(other))
	for mode := range s {
		merged[mode] = struct{}{}
	}
	for mode := range other {
		merged[mode] = struct{}{}
	}
	return merged
}

// Clone returns an independent copy.
func (s ModeSet) Clone() ModeSet {
	clone := make(ModeSet, len(s))
	for mode := range s {
		clone[mode] = struct{}{}
	}
	return clone
}

// Sorted returns the modes in lexical order for deterministic output.
func (s ModeSet) Sorted() []AccessMode {
	modes := make([]AccessMode, 0, len(s))
	for mode := range s {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// Verdict is the tri-state outcome for one mode. The zero value is
// Undecided: no source made a statement.
type Verdict uint8

const (
	Undecided Verdict = iota
	Allow
	Deny
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "undecided"
	}
}

// MergeVerdicts folds two verdicts. Deny absorbs, Allow wins over
// Undecided, and Undecided is the identity, making the fold commutative
// and associative.
func MergeVerdicts(a, b Verdict) Verdict {
	if a == Deny || b == Deny {
		return Deny
	}
	if a == Allow || b == Allow {
		return Allow
	}
	return Undecided
}

// Permission maps access modes to verdicts. A missing key is Undecided.
type Permission map[AccessMode]Verdict

// Get returns the verdict for mode, Undecided when absent.
func (p Permission) Get(mode AccessMode) Verdict {
	return p[mode]
}

// Allows reports whether mode is explicitly allowed.
func (p Permission) Allows(mode AccessMode) bool {
	return p[mode] == Allow
}

// Denies reports whether mode is explicitly denied.
func (p Permission) Denies(mode AccessMode) bool {
	return p[mode] == Deny
}

// Set records a verdict, dropping the key when it is Undecided so that
// map equality stays canonical.
func (p Permission) Set(mode AccessMode, v Verdict) {
	if v == Undecided {
		delete(p, mode)
		return
	}
	p[mode] = v
}

// Clone returns an independent copy.
func (p Permission) Clone() Permission {
	clone := make(Permission, len(p))
	for mode, v := range p {
		clone[mode] = v
	}
	return clone
}

// MergePermissions folds two permissions mode-wise with MergeVerdicts.
// Either operand may be nil.
func MergePermissions(a, b Permission) Permission {
	merged := make(Permission, len(a)+len(b))
	for mode, v := range a {
		merged[mode] = v
	}
	for mode, v := range b {
		merged.Set(mode, MergeVerdicts(merged[mode], v))
	}
	return merged
}

// PermissionSet holds the permission of every credential group that has
// a verdict for one resource.
type PermissionSet map[auth.CredentialGroup]Permission

// Clone copies the set one level deep: fresh outer map, fresh
// Permission maps.
func (s PermissionSet) Clone() PermissionSet {
	clone := make(PermissionSet, len(s))
	for group, permission := range s {
		clone[group] = permission.Clone()
	}
	return clone
}

// MergePermissionSets folds two sets group-wise. Groups unknown to this
// module are preserved verbatim: filtering here would drop verdicts
// produced by custom readers.
func MergePermissionSets(a, b PermissionSet) PermissionSet {
	merged := make(PermissionSet, len(a)+len(b))
	for group, permission := range a {
		merged[group] = permission.Clone()
	}
	for group, permission := range b {
		merged[group] = MergePermissions(merged[group], permission)
	}
	return merged
}

// AccessMap lists the modes a request requires per resource. An entry
// with an empty mode set still asks readers to report on the resource.
type AccessMap = identifier.Map[ModeSet]

// NewAccessMap returns an empty AccessMap.
func NewAccessMap() *AccessMap {
	return identifier.NewMap[ModeSet]()
}

// MergeModes adds modes to the entry for id, creating it if needed.
func MergeModes(m *AccessMap, id identifier.ResourceIdentifier, modes ModeSet) {
	if existing, ok := m.Get(id); ok {
		m.Set(id, existing.Union(modes))
		return
	}
	m.Set(id, modes.Clone())
}

// PermissionMap is the verdict of the readers: the granted permissions
// per resource per credential group.
type PermissionMap = identifier.Map[PermissionSet]

// NewPermissionMap returns an empty PermissionMap.
func NewPermissionMap() *PermissionMap {
	return identifier.NewMap[PermissionSet]()
}
