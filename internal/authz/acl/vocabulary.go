// Package acl reads WebACL documents and turns them into permission
// verdicts for the authorization pipeline.
package acl

// WebACL vocabulary.
const (
	Namespace = "http://www.w3.org/ns/auth/acl#"

	TypeAuthorization = Namespace + "Authorization"

	PredicateAccessTo   = Namespace + "accessTo"
	PredicateDefault    = Namespace + "default"
	PredicateMode       = Namespace + "mode"
	PredicateAgent      = Namespace + "agent"
	PredicateAgentClass = Namespace + "agentClass"
	PredicateAgentGroup = Namespace + "agentGroup"

	ModeRead    = Namespace + "Read"
	ModeWrite   = Namespace + "Write"
	ModeAppend  = Namespace + "Append"
	ModeControl = Namespace + "Control"

	ClassAuthenticatedAgent = Namespace + "AuthenticatedAgent"
)

// Related vocabularies referenced by WebACL documents.
const (
	RDFType        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	FoafAgent      = "http://xmlns.com/foaf/0.1/Agent"
	VcardHasMember = "http://www.w3.org/2006/vcard/ns#hasMember"
)
