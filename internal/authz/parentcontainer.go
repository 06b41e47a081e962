package authz

import (
	"context"

	"solid-service/internal/identifier"
)

// ParentContainerReader derives create and delete verdicts from the
// parent container: creating a child appends to the parent, deleting a
// child writes to it. Resources not asking for create or delete pass
// through untouched.
type ParentContainerReader struct {
	source   PermissionReader
	strategy identifier.Strategy
}

func NewParentContainerReader(source PermissionReader, strategy identifier.Strategy) *ParentContainerReader {
	return &ParentContainerReader{source: source, strategy: strategy}
}

func (r *ParentContainerReader) CanHandle(ctx context.Context, input ReadInput) error {
	rewritten, _, err := r.rewrite(input.AccessMap)
	if err != nil {
		return err
	}
	return r.source.CanHandle(ctx, ReadInput{Credentials: input.Credentials, AccessMap: rewritten})
}

func (r *ParentContainerReader) Handle(ctx context.Context, input ReadInput) (*PermissionMap, error) {
	rewritten, parents, err := r.rewrite(input.AccessMap)
	if err != nil {
		return nil, err
	}
	if parents.Len() == 0 {
		return r.source.Handle(ctx, input)
	}

	result, err := r.source.Handle(ctx, ReadInput{Credentials: input.Credentials, AccessMap: rewritten})
	if err != nil {
		return nil, err
	}

	for _, entry := range parents.Entries() {
		child := entry.Identifier
		parent := entry.Value

		childSet, _ := result.Get(child)
		parentSet, _ := result.Get(parent)
		result.Set(child, combineParentVerdicts(childSet, parentSet))
		if !input.AccessMap.Has(parent) {
			result.Delete(parent)
		}
	}
	return result, nil
}

// rewrite adds the parent requirements of every create/delete entry.
// Child entries are never removed. The returned map links each affected
// child to its parent.
func (r *ParentContainerReader) rewrite(accessMap *AccessMap) (*AccessMap, *identifier.Map[identifier.ResourceIdentifier], error) {
	rewritten := NewAccessMap()
	parents := identifier.NewMap[identifier.ResourceIdentifier]()

	for _, entry := range accessMap.Entries() {
		rewritten.Set(entry.Identifier, entry.Value)
	}
	for _, entry := range accessMap.Entries() {
		if !entry.Value.Has(Create) && !entry.Value.Has(Delete) {
			continue
		}
		parent, err := r.strategy.GetParentContainer(entry.Identifier)
		if err != nil {
			return nil, nil, err
		}

		parentModes := NewModeSet()
		if entry.Value.Has(Create) {
			parentModes.Add(Append)
		}
		if entry.Value.Has(Delete) {
			parentModes.Add(Write)
		}
		MergeModes(rewritten, parent, parentModes)
		parents.Set(entry.Identifier, parent)
	}
	return rewritten, parents, nil
}

// combineParentVerdicts derives the child's create/delete verdicts from
// its own permissions and the parent's, per credential group. An
// explicit deny at the child absorbs whatever the parent would grant.
func combineParentVerdicts(childSet, parentSet PermissionSet) PermissionSet {
	combined := childSet.Clone()
	for group, parentPermission := range parentSet {
		childPermission, ok := combined[group]
		if !ok {
			childPermission = Permission{}
			combined[group] = childPermission
		}

		if childPermission.Get(Create) != Deny && parentPermission.Allows(Append) {
			childPermission.Set(Create, Allow)
		}
		if childPermission.Get(Delete) != Deny && childPermission.Allows(Write) && parentPermission.Allows(Write) {
			childPermission.Set(Delete, Allow)
		}
	}
	return combined
}
