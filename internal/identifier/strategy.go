package identifier

import (
	"fmt"
	"strings"

	apperrors "solid-service/pkg/errors"
)

// Strategy answers structural questions about the identifier hierarchy.
// Implementations must be deterministic and safe for concurrent use.
type Strategy interface {
	// SupportsIdentifier reports whether the identifier falls inside the
	// hierarchy this strategy describes.
	SupportsIdentifier(id ResourceIdentifier) bool
	// GetParentContainer returns the container directly above id.
	GetParentContainer(id ResourceIdentifier) (ResourceIdentifier, error)
	// IsRootContainer reports whether id is the root of the hierarchy.
	IsRootContainer(id ResourceIdentifier) bool
	// Contains reports whether container holds id, directly or - when
	// transitive is set - anywhere below it.
	Contains(container, id ResourceIdentifier, transitive bool) bool
}

// SingleRootStrategy is a Strategy for a server with one base URL.
type SingleRootStrategy struct {
	baseURL string
}

// NewSingleRootStrategy creates a Strategy rooted at baseURL. A missing
// trailing slash is added since the root is always a container.
func NewSingleRootStrategy(baseURL string) *SingleRootStrategy {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &SingleRootStrategy{baseURL: baseURL}
}

func (s *SingleRootStrategy) SupportsIdentifier(id ResourceIdentifier) bool {
	return strings.HasPrefix(id.Path, s.baseURL)
}

func (s *SingleRootStrategy) IsRootContainer(id ResourceIdentifier) bool {
	return id.Path == s.baseURL
}

func (s *SingleRootStrategy) GetParentContainer(id ResourceIdentifier) (ResourceIdentifier, error) {
	if !s.SupportsIdentifier(id) {
		return ResourceIdentifier{}, apperrors.BadRequest(fmt.Sprintf("identifier %s is outside the scope of this server", id.Path))
	}
	if s.IsRootContainer(id) {
		return ResourceIdentifier{}, apperrors.BadRequest("the root container has no parent")
	}

	path := strings.TrimSuffix(id.Path, "/")
	slash := strings.LastIndex(path, "/")
	return FromPath(path[:slash+1]), nil
}

func (s *SingleRootStrategy) Contains(container, id ResourceIdentifier, transitive bool) bool {
	if !container.IsContainer() || container.Path == id.Path {
		return false
	}
	if !strings.HasPrefix(id.Path, container.Path) {
		return false
	}
	if transitive {
		return true
	}
	parent, err := s.GetParentContainer(id)
	return err == nil && parent.Path == container.Path
}
