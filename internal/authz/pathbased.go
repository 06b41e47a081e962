package authz

import (
	"context"
	"regexp"
	"strings"

	"solid-service/internal/identifier"
)

// PathReader pairs a path pattern with the reader responsible for it.
// Patterns are matched against the identifier path relative to the base
// URL, leading slash included, in the order they were registered.
type PathReader struct {
	Pattern *regexp.Regexp
	Reader  PermissionReader
}

// PathBasedReader partitions the access map over sub-readers by the
// first matching pattern per resource. Resources matching no pattern
// are dropped: they get no verdict, which the authorizer treats as no
// permission.
type PathBasedReader struct {
	baseURL string
	paths   []PathReader
}

func NewPathBasedReader(baseURL string, paths []PathReader) *PathBasedReader {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &PathBasedReader{baseURL: baseURL, paths: paths}
}

func (r *PathBasedReader) CanHandle(context.Context, ReadInput) error {
	return nil
}

func (r *PathBasedReader) Handle(ctx context.Context, input ReadInput) (*PermissionMap, error) {
	partitions := make([]*AccessMap, len(r.paths))

	for _, entry := range input.AccessMap.Entries() {
		relative, ok := r.relativePath(entry.Identifier)
		if !ok {
			continue
		}
		for i, path := range r.paths {
			if path.Pattern.MatchString(relative) {
				if partitions[i] == nil {
					partitions[i] = NewAccessMap()
				}
				partitions[i].Set(entry.Identifier, entry.Value)
				break
			}
		}
	}

	result := NewPermissionMap()
	for i, partition := range partitions {
		if partition == nil {
			continue
		}
		partial, err := ReadSafe(ctx, r.paths[i].Reader, ReadInput{Credentials: input.Credentials, AccessMap: partition})
		if err != nil {
			return nil, err
		}
		mergePermissionMap(result, partial)
	}
	return result, nil
}

// relativePath strips the base URL, keeping the leading slash.
func (r *PathBasedReader) relativePath(id identifier.ResourceIdentifier) (string, bool) {
	if !strings.HasPrefix(id.Path, r.baseURL) {
		return "", false
	}
	return "/" + strings.TrimPrefix(id.Path, r.baseURL), true
}

// NewPathReader compiles pattern and pairs it with reader. It panics on
// an invalid pattern, so it belongs in wiring code only.
func NewPathReader(pattern string, reader PermissionReader) PathReader {
	return PathReader{Pattern: regexp.MustCompile(pattern), Reader: reader}
}
