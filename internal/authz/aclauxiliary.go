package authz

import (
	"context"

	"solid-service/internal/identifier"
)

// ACLAuxiliaryReader handles the self-protection of ACL resources:
// whoever controls a resource may read and write its ACL document. For
// each ACL identifier in the input the subject is queried for control,
// and the ACL resource's read/append/write/control all take the value
// of that control verdict.
type ACLAuxiliaryReader struct {
	source   PermissionReader
	strategy identifier.AuxiliaryStrategy
}

func NewACLAuxiliaryReader(source PermissionReader, strategy identifier.AuxiliaryStrategy) *ACLAuxiliaryReader {
	return &ACLAuxiliaryReader{source: source, strategy: strategy}
}

func (r *ACLAuxiliaryReader) CanHandle(ctx context.Context, input ReadInput) error {
	return r.source.CanHandle(ctx, ReadInput{Credentials: input.Credentials, AccessMap: r.rewrite(input.AccessMap)})
}

func (r *ACLAuxiliaryReader) Handle(ctx context.Context, input ReadInput) (*PermissionMap, error) {
	aclResources := r.findACLResources(input.AccessMap)
	if aclResources.Len() == 0 {
		return r.source.Handle(ctx, input)
	}

	result, err := r.source.Handle(ctx, ReadInput{Credentials: input.Credentials, AccessMap: r.rewrite(input.AccessMap)})
	if err != nil {
		return nil, err
	}

	for _, entry := range aclResources.Entries() {
		subject := entry.Value
		subjectSet, ok := result.Get(subject)
		if !ok {
			result.Set(entry.Identifier, PermissionSet{})
		} else {
			aclSet := make(PermissionSet, len(subjectSet))
			for group, permission := range subjectSet {
				control := permission.Get(Control)
				aclPermission := Permission{}
				for _, mode := range []AccessMode{Read, Append, Write, Control} {
					aclPermission.Set(mode, control)
				}
				aclSet[group] = aclPermission
			}
			result.Set(entry.Identifier, aclSet)
		}
		if !input.AccessMap.Has(subject) {
			result.Delete(subject)
		}
	}
	return result, nil
}

func (r *ACLAuxiliaryReader) findACLResources(accessMap *AccessMap) *identifier.Map[identifier.ResourceIdentifier] {
	aclResources := identifier.NewMap[identifier.ResourceIdentifier]()
	for _, id := range accessMap.Identifiers() {
		if r.strategy.IsAuxiliaryIdentifier(id) {
			aclResources.Set(id, r.strategy.GetSubjectIdentifier(id))
		}
	}
	return aclResources
}

// rewrite replaces every ACL entry with its subject requiring control.
func (r *ACLAuxiliaryReader) rewrite(accessMap *AccessMap) *AccessMap {
	rewritten := NewAccessMap()
	for _, entry := range accessMap.Entries() {
		if r.strategy.IsAuxiliaryIdentifier(entry.Identifier) {
			MergeModes(rewritten, r.strategy.GetSubjectIdentifier(entry.Identifier), NewModeSet(Control))
			continue
		}
		MergeModes(rewritten, entry.Identifier, entry.Value)
	}
	return rewritten
}
