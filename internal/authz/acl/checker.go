package acl

import (
	"context"
	"fmt"

	"github.com/deiu/rdf2go"

	"solid-service/internal/auth"
)

// AccessCheckArgs is one authorization rule judged against one
// credential inside the ACL graph it came from.
type AccessCheckArgs struct {
	Graph      *rdf2go.Graph
	Rule       rdf2go.Term
	Credential *auth.Credential
}

// AccessChecker decides whether a rule applies to a credential. It must
// be pure given its inputs.
type AccessChecker interface {
	Check(ctx context.Context, args AccessCheckArgs) (bool, error)
}

// AnyAccessChecker matches when any of its checkers matches.
type AnyAccessChecker struct {
	checkers []AccessChecker
}

func NewAnyAccessChecker(checkers ...AccessChecker) *AnyAccessChecker {
	return &AnyAccessChecker{checkers: checkers}
}

func (c *AnyAccessChecker) Check(ctx context.Context, args AccessCheckArgs) (bool, error) {
	for _, checker := range c.checkers {
		match, err := checker.Check(ctx, args)
		if err != nil {
			return false, err
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// AgentAccessChecker matches rules naming the credential's WebID
// through acl:agent.
type AgentAccessChecker struct{}

func (AgentAccessChecker) Check(_ context.Context, args AccessCheckArgs) (bool, error) {
	if args.Credential.WebID == "" {
		return false, nil
	}
	for _, triple := range args.Graph.All(args.Rule, rdf2go.NewResource(PredicateAgent), nil) {
		if triple.Object.RawValue() == args.Credential.WebID {
			return true, nil
		}
	}
	return false, nil
}

// AgentClassAccessChecker matches rules granting access to an agent
// class: foaf:Agent covers everyone, acl:AuthenticatedAgent covers any
// credential with a WebID.
type AgentClassAccessChecker struct{}

func (AgentClassAccessChecker) Check(_ context.Context, args AccessCheckArgs) (bool, error) {
	for _, triple := range args.Graph.All(args.Rule, rdf2go.NewResource(PredicateAgentClass), nil) {
		switch triple.Object.RawValue() {
		case FoafAgent:
			return true, nil
		case ClassAuthenticatedAgent:
			if args.Credential.WebID != "" {
				return true, nil
			}
		}
	}
	return false, nil
}

// GroupLoader fetches the RDF document describing an agent group.
type GroupLoader func(uri string) (*rdf2go.Graph, error)

// AgentGroupAccessChecker matches rules whose acl:agentGroup lists a
// group with the credential's WebID as vcard member. Group documents
// are dereferenced through the loader, by default over HTTP.
type AgentGroupAccessChecker struct {
	load GroupLoader
}

func NewAgentGroupAccessChecker(load GroupLoader) *AgentGroupAccessChecker {
	if load == nil {
		load = loadGroupDocument
	}
	return &AgentGroupAccessChecker{load: load}
}

func (c *AgentGroupAccessChecker) Check(_ context.Context, args AccessCheckArgs) (bool, error) {
	if args.Credential.WebID == "" {
		return false, nil
	}
	for _, triple := range args.Graph.All(args.Rule, rdf2go.NewResource(PredicateAgentGroup), nil) {
		groupURI := triple.Object.RawValue()
		group, err := c.load(groupURI)
		if err != nil {
			return false, fmt.Errorf("loading agent group %s: %w", groupURI, err)
		}
		for _, member := range group.All(nil, rdf2go.NewResource(VcardHasMember), nil) {
			if member.Object.RawValue() == args.Credential.WebID {
				return true, nil
			}
		}
	}
	return false, nil
}

func loadGroupDocument(uri string) (*rdf2go.Graph, error) {
	graph := rdf2go.NewGraph(uri)
	if err := graph.LoadURI(uri); err != nil {
		return nil, err
	}
	return graph, nil
}
