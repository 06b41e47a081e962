package http

import (
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"solid-service/internal/audit"
	"solid-service/internal/auth"
	"solid-service/internal/authz"
	"solid-service/internal/identifier"
)

const maxRequestBody = 8 << 20

// ResourceHandler turns HTTP requests into operations, runs them
// through the authorization pipeline and writes the outcome back.
type ResourceHandler struct {
	authorizing *authz.AuthorizingHandler
	extractor   auth.CredentialsExtractor
	baseURL     string
	auditor     *audit.Recorder
}

func NewResourceHandler(authorizing *authz.AuthorizingHandler, extractor auth.CredentialsExtractor, baseURL string, auditor *audit.Recorder) *ResourceHandler {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &ResourceHandler{authorizing: authorizing, extractor: extractor, baseURL: baseURL, auditor: auditor}
}

// Handle serves one resource request.
func (h *ResourceHandler) Handle(c echo.Context) error {
	req := c.Request()
	operation, err := h.buildOperation(c)
	if err != nil {
		return err
	}

	result, err := h.authorizing.Handle(req.Context(), req, operation)
	h.auditor.Record(req.Context(), audit.Event{
		RequestID: requestIDOf(c),
		Agent:     h.agentLabel(req),
		Target:    operation.Target.Path,
		Method:    operation.Method,
		Allowed:   err == nil,
	})
	if err != nil {
		return err
	}

	h.writeWACAllow(c, operation)

	if result.Body == nil {
		return c.NoContent(result.Status)
	}
	return c.Blob(result.Status, result.ContentType, result.Body)
}

func (h *ResourceHandler) buildOperation(c echo.Context) (*authz.Operation, error) {
	req := c.Request()
	target := identifier.FromPath(strings.TrimSuffix(h.baseURL, "/") + req.URL.Path)

	var body []byte
	if req.Body != nil && (req.Method == stdhttp.MethodPut || req.Method == stdhttp.MethodPost || req.Method == stdhttp.MethodPatch) {
		raw, err := io.ReadAll(io.LimitReader(req.Body, maxRequestBody))
		if err != nil {
			return nil, err
		}
		body = raw
	}

	return &authz.Operation{
		Target:      target,
		Method:      req.Method,
		ContentType: req.Header.Get(echo.HeaderContentType),
		Body:        body,
	}, nil
}

// writeWACAllow renders the permissions attached to the operation as a
// WAC-Allow header on read responses, so clients can discover what
// else they may do with the resource.
func (h *ResourceHandler) writeWACAllow(c echo.Context, operation *authz.Operation) {
	if operation.Method != stdhttp.MethodGet && operation.Method != stdhttp.MethodHead {
		return
	}
	if operation.PermissionMap == nil {
		return
	}
	set, ok := operation.PermissionMap.Get(operation.Target)
	if !ok {
		return
	}

	publicModes := allowedModes(set[auth.Public])
	userModes := allowedModes(authz.MergePermissions(set[auth.Public], set[auth.Agent]))

	var groups []string
	if userModes != "" {
		groups = append(groups, `user="`+userModes+`"`)
	}
	if publicModes != "" {
		groups = append(groups, `public="`+publicModes+`"`)
	}
	if len(groups) > 0 {
		c.Response().Header().Set("WAC-Allow", strings.Join(groups, ","))
	}
}

// allowedModes lists the allowed operational modes as the WAC-Allow
// grammar wants them, sorted for determinism.
func allowedModes(permission authz.Permission) string {
	var modes []string
	for _, mode := range []authz.AccessMode{authz.Append, authz.Control, authz.Read, authz.Write} {
		if permission.Allows(mode) {
			modes = append(modes, string(mode))
		}
	}
	return strings.Join(modes, " ")
}

// agentLabel names the requester for the audit trail: the WebID when
// one verifies, the public group otherwise.
func (h *ResourceHandler) agentLabel(req *stdhttp.Request) string {
	credentials, err := h.extractor.Extract(req)
	if err == nil {
		if agent, ok := credentials[auth.Agent]; ok && agent.WebID != "" {
			return agent.WebID
		}
	}
	return string(auth.Public)
}
