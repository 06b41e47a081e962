package authz

import "context"

// AllStaticReader answers every query with the same verdict for all
// modes, for paths whose access is fixed (public documents, blocked
// trees). The inner Permission is built once and shared across outputs;
// the PermissionSet wrapper is fresh per resource so callers can merge
// entries without aliasing.
type AllStaticReader struct {
	permission Permission
}

// NewAllStaticReader creates a reader granting (allow=true) or denying
// (allow=false) every mode.
func NewAllStaticReader(allow bool) *AllStaticReader {
	verdict := Deny
	if allow {
		verdict = Allow
	}
	permission := Permission{}
	for _, mode := range []AccessMode{Read, Append, Write, Create, Delete} {
		permission.Set(mode, verdict)
	}
	return &AllStaticReader{permission: permission}
}

func (r *AllStaticReader) CanHandle(context.Context, ReadInput) error {
	return nil
}

func (r *AllStaticReader) Handle(_ context.Context, input ReadInput) (*PermissionMap, error) {
	result := NewPermissionMap()
	for _, entry := range input.AccessMap.Entries() {
		set := make(PermissionSet, len(input.Credentials))
		for group := range input.Credentials {
			set[group] = r.permission
		}
		result.Set(entry.Identifier, set)
	}
	return result, nil
}
