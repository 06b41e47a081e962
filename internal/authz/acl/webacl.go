package acl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deiu/rdf2go"

	"solid-service/internal/auth"
	"solid-service/internal/authz"
	"solid-service/internal/identifier"
	"solid-service/internal/storage"
	apperrors "solid-service/pkg/errors"
)

// WebACLReader reads and interprets WebACL documents. Targets missing a
// direct ACL inherit the nearest ancestor's through acl:default;
// targets governed by the same document are evaluated together so each
// document is fetched and filtered once per request.
type WebACLReader struct {
	store       storage.ResourceStore
	aclStrategy identifier.AuxiliaryStrategy
	strategy    identifier.Strategy
	checker     AccessChecker
}

func NewWebACLReader(
	store storage.ResourceStore,
	aclStrategy identifier.AuxiliaryStrategy,
	strategy identifier.Strategy,
	checker AccessChecker,
) *WebACLReader {
	return &WebACLReader{
		store:       store,
		aclStrategy: aclStrategy,
		strategy:    strategy,
		checker:     checker,
	}
}

func (r *WebACLReader) CanHandle(context.Context, authz.ReadInput) error {
	return nil
}

// Handle produces verdicts for the public and agent credential groups
// per WebACL semantics.
func (r *WebACLReader) Handle(ctx context.Context, input authz.ReadInput) (*authz.PermissionMap, error) {
	result := authz.NewPermissionMap()
	unclaimed := input.AccessMap.Identifiers()

	// Per-call state so no ACL document is fetched twice: found graphs
	// keyed by the identifier whose ACL they are, plus the set of ACL
	// identifiers already known to be absent.
	graphs := make(map[string]*rdf2go.Graph)
	missing := make(map[string]struct{})

	for len(unclaimed) > 0 {
		longest := longestPath(unclaimed)
		graph, owner, err := r.findACLGraph(ctx, longest, graphs, missing)
		if err != nil {
			return nil, err
		}

		var claimed, rest []identifier.ResourceIdentifier
		for _, target := range unclaimed {
			if r.onLineage(target, longest) && len(target.Path) >= len(owner.Path) {
				claimed = append(claimed, target)
			} else {
				rest = append(rest, target)
			}
		}
		unclaimed = rest

		if err := r.evaluateGroup(ctx, graph, owner, claimed, input.Credentials, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// findACLGraph walks from target towards the root until an ACL document
// is found and returns its graph together with the identifier it
// belongs to.
func (r *WebACLReader) findACLGraph(
	ctx context.Context,
	target identifier.ResourceIdentifier,
	graphs map[string]*rdf2go.Graph,
	missing map[string]struct{},
) (*rdf2go.Graph, identifier.ResourceIdentifier, error) {
	current := target
	for {
		if graph, ok := graphs[current.Path]; ok {
			return graph, current, nil
		}

		aclID := r.aclStrategy.GetAuxiliaryIdentifier(current)
		if _, absent := missing[aclID.Path]; !absent {
			graph, err := r.fetchGraph(ctx, current, aclID)
			if err == nil {
				graphs[current.Path] = graph
				return graph, current, nil
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, identifier.ResourceIdentifier{}, err
			}
			missing[aclID.Path] = struct{}{}
		}

		if r.strategy.IsRootContainer(current) {
			return nil, identifier.ResourceIdentifier{}, apperrors.Forbidden("no ACL document found for root container")
		}
		parent, err := r.strategy.GetParentContainer(current)
		if err != nil {
			return nil, identifier.ResourceIdentifier{}, err
		}
		current = parent
	}
}

// fetchGraph retrieves and parses one ACL document. Nonexistence keeps
// the NotFound kind so the caller can keep walking up; everything else
// becomes an internal error wrapping the cause.
func (r *WebACLReader) fetchGraph(ctx context.Context, subject, aclID identifier.ResourceIdentifier) (*rdf2go.Graph, error) {
	representation, err := r.store.GetRepresentation(ctx, aclID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.InternalServer(fmt.Sprintf("error reading ACL for %s", subject.Path), err)
	}
	defer representation.Data.Close()

	contentType := representation.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeTurtle
	}
	graph := rdf2go.NewGraph(aclID.Path)
	if err := graph.Parse(representation.Data, contentType); err != nil {
		return nil, apperrors.InternalServer(fmt.Sprintf("error reading ACL for %s", subject.Path), err)
	}
	return graph, nil
}

// onLineage reports whether target lies on the ancestor chain of
// longest, itself included. This is a normalized path-prefix test, not
// the textual substring the predicate could be mistaken for: a
// non-container prefix such as /bar never claims /barbecue.
func (r *WebACLReader) onLineage(target, longest identifier.ResourceIdentifier) bool {
	if target.Path == longest.Path {
		return true
	}
	return target.IsContainer() && strings.HasPrefix(longest.Path, target.Path)
}

// evaluateGroup computes the permissions of all targets claimed by one
// ACL document. Targets equal to the document's subject match rules via
// acl:accessTo, descendants via acl:default. Each side is evaluated
// once, and every target on that side receives its own copy of the
// result.
func (r *WebACLReader) evaluateGroup(
	ctx context.Context,
	graph *rdf2go.Graph,
	owner identifier.ResourceIdentifier,
	targets []identifier.ResourceIdentifier,
	credentials auth.CredentialSet,
	result *authz.PermissionMap,
) error {
	var direct, indirect []identifier.ResourceIdentifier
	for _, target := range targets {
		if target.Path == owner.Path {
			direct = append(direct, target)
		} else {
			indirect = append(indirect, target)
		}
	}

	if len(direct) > 0 {
		set, err := r.evaluateRules(ctx, filterRules(graph, PredicateAccessTo, owner), credentials)
		if err != nil {
			return err
		}
		for _, target := range direct {
			result.Set(target, set.Clone())
		}
	}
	if len(indirect) > 0 {
		set, err := r.evaluateRules(ctx, filterRules(graph, PredicateDefault, owner), credentials)
		if err != nil {
			return err
		}
		for _, target := range indirect {
			result.Set(target, set.Clone())
		}
	}
	return nil
}

// filterRules builds a sub-graph holding all triples of the subjects
// that carry the given predicate pointing at the owner resource.
func filterRules(graph *rdf2go.Graph, predicate string, owner identifier.ResourceIdentifier) *rdf2go.Graph {
	filtered := rdf2go.NewGraph(owner.Path)
	for _, match := range graph.All(nil, rdf2go.NewResource(predicate), rdf2go.NewResource(owner.Path)) {
		for _, triple := range graph.All(match.Subject, nil, nil) {
			filtered.Add(triple)
		}
	}
	return filtered
}

// evaluateRules runs every acl:Authorization rule of the filtered graph
// against the applicable credentials. Modes accumulate monotonically to
// Allow; this reader never denies.
func (r *WebACLReader) evaluateRules(ctx context.Context, graph *rdf2go.Graph, credentials auth.CredentialSet) (authz.PermissionSet, error) {
	set := authz.PermissionSet{}
	for _, group := range []auth.CredentialGroup{auth.Public, auth.Agent} {
		credential, ok := credentials[group]
		if !ok {
			set[group] = authz.Permission{}
			continue
		}
		permission, err := r.credentialPermission(ctx, graph, credential)
		if err != nil {
			return nil, err
		}
		set[group] = permission
	}
	return set, nil
}

func (r *WebACLReader) credentialPermission(ctx context.Context, graph *rdf2go.Graph, credential *auth.Credential) (authz.Permission, error) {
	permission := authz.Permission{}
	seen := make(map[string]struct{})

	for _, typed := range graph.All(nil, rdf2go.NewResource(RDFType), rdf2go.NewResource(TypeAuthorization)) {
		rule := typed.Subject
		if _, dup := seen[rule.String()]; dup {
			continue
		}
		seen[rule.String()] = struct{}{}

		match, err := r.checker.Check(ctx, AccessCheckArgs{Graph: graph, Rule: rule, Credential: credential})
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		for _, modeTriple := range graph.All(rule, rdf2go.NewResource(PredicateMode), nil) {
			for _, mode := range operationalModes(modeTriple.Object.RawValue()) {
				permission.Set(mode, authz.Allow)
			}
		}
	}
	return permission, nil
}

// operationalModes maps a WebACL mode URI onto operational access
// modes. Unrecognized modes are ignored.
func operationalModes(uri string) []authz.AccessMode {
	switch uri {
	case ModeRead:
		return []authz.AccessMode{authz.Read}
	case ModeWrite:
		return []authz.AccessMode{authz.Append, authz.Write}
	case ModeAppend:
		return []authz.AccessMode{authz.Append}
	case ModeControl:
		return []authz.AccessMode{authz.Control}
	default:
		return nil
	}
}

func longestPath(ids []identifier.ResourceIdentifier) identifier.ResourceIdentifier {
	longest := ids[0]
	for _, id := range ids[1:] {
		if len(id.Path) > len(longest.Path) {
			longest = id
		}
	}
	return longest
}
