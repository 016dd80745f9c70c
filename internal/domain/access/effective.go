package access

// EffectiveSource says where a user's effective permission set comes from.
type EffectiveSource string

const (
	// SourceRoleDefault means the user follows their role's default table.
	SourceRoleDefault EffectiveSource = "role_default"
	// SourceCustomOverride means an explicit per-user list replaces the defaults.
	SourceCustomOverride EffectiveSource = "custom_override"
)

// Effective is a user's resolved permission set.
//
// The two cases are distinct: a user without an override follows the role
// table (and picks up future changes to it), while a user with an override
// holds exactly the listed permissions, even when the list is empty.
type Effective struct {
	Source      EffectiveSource
	Role        Role
	Permissions []Permission
}

// ResolveEffective computes the effective permission set for a role and an
// optional custom override. custom == nil means no override; an empty
// non-nil slice is a genuine "no permissions" override.
func ResolveEffective(role Role, custom []Permission) Effective {
	if custom == nil {
		return Effective{
			Source:      SourceRoleDefault,
			Role:        role,
			Permissions: DefaultsFor(role),
		}
	}
	out := make([]Permission, len(custom))
	copy(out, custom)
	return Effective{
		Source:      SourceCustomOverride,
		Role:        role,
		Permissions: out,
	}
}

// Has reports whether the effective set grants the permission.
// Owners pass every check regardless of source or list contents.
func (e Effective) Has(p Permission) bool {
	if e.Role == RoleOwner {
		return true
	}
	for _, held := range e.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// HasAny reports whether any of the given permissions is granted.
func (e Effective) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if e.Has(p) {
			return true
		}
	}
	return false
}

// Strings returns the permission list as plain strings, for JWT claims.
func (e Effective) Strings() []string {
	out := make([]string, len(e.Permissions))
	for i, p := range e.Permissions {
		out[i] = string(p)
	}
	return out
}

// FromStrings rebuilds an effective set from JWT claims. Claims carry the
// already-resolved list, so the source distinction is not preserved.
func FromStrings(role Role, perms []string) Effective {
	out := make([]Permission, len(perms))
	for i, p := range perms {
		out[i] = Permission(p)
	}
	return Effective{
		Source:      SourceCustomOverride,
		Role:        role,
		Permissions: out,
	}
}
