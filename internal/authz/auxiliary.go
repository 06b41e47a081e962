package authz

import (
	"context"

	"solid-service/internal/identifier"
)

// AuxiliaryReader resolves auxiliary resources that do not carry their
// own authorization by forwarding their required modes to the subject
// resource. The source reader then answers for the subject, and its
// verdict is copied back onto the auxiliary identifier.
type AuxiliaryReader struct {
	source   PermissionReader
	strategy identifier.AuxiliaryStrategy
}

func NewAuxiliaryReader(source PermissionReader, strategy identifier.AuxiliaryStrategy) *AuxiliaryReader {
	return &AuxiliaryReader{source: source, strategy: strategy}
}

func (r *AuxiliaryReader) CanHandle(ctx context.Context, input ReadInput) error {
	return r.source.CanHandle(ctx, ReadInput{Credentials: input.Credentials, AccessMap: r.rewrite(input.AccessMap)})
}

func (r *AuxiliaryReader) Handle(ctx context.Context, input ReadInput) (*PermissionMap, error) {
	auxiliaries := r.findAuxiliaries(input.AccessMap)
	if auxiliaries.Len() == 0 {
		return r.source.Handle(ctx, input)
	}

	result, err := r.source.Handle(ctx, ReadInput{Credentials: input.Credentials, AccessMap: r.rewrite(input.AccessMap)})
	if err != nil {
		return nil, err
	}

	for _, entry := range auxiliaries.Entries() {
		subject := entry.Value
		if set, ok := result.Get(subject); ok {
			result.Set(entry.Identifier, set.Clone())
		} else {
			result.Set(entry.Identifier, PermissionSet{})
		}
		// Subjects that were only queried on behalf of their auxiliary
		// get no entry of their own.
		if !input.AccessMap.Has(subject) {
			result.Delete(subject)
		}
	}
	return result, nil
}

// findAuxiliaries maps each forwarded auxiliary identifier in the input
// to its subject.
func (r *AuxiliaryReader) findAuxiliaries(accessMap *AccessMap) *identifier.Map[identifier.ResourceIdentifier] {
	auxiliaries := identifier.NewMap[identifier.ResourceIdentifier]()
	for _, id := range accessMap.Identifiers() {
		if r.strategy.IsAuxiliaryIdentifier(id) && !r.strategy.UsesOwnAuthorization(id) {
			auxiliaries.Set(id, r.strategy.GetSubjectIdentifier(id))
		}
	}
	return auxiliaries
}

// rewrite replaces forwarded auxiliary entries with their subject,
// merging mode sets when the subject is already present.
func (r *AuxiliaryReader) rewrite(accessMap *AccessMap) *AccessMap {
	rewritten := NewAccessMap()
	for _, entry := range accessMap.Entries() {
		target := entry.Identifier
		if r.strategy.IsAuxiliaryIdentifier(target) && !r.strategy.UsesOwnAuthorization(target) {
			target = r.strategy.GetSubjectIdentifier(target)
		}
		MergeModes(rewritten, target, entry.Value)
	}
	return rewritten
}
