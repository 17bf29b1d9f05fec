package http

import (
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
)

// RequestValidator checks requests under basePath against the OpenAPI
// document before they reach the handlers. Paths the document does not know
// are passed through so the router can answer them.
func RequestValidator(doc *openapi3.T, basePath string) (echo.MiddlewareFunc, error) {
	if doc == nil {
		return nil, errs.NewValueIsRequiredError("doc")
	}

	// Routes are matched on the path below basePath, so the servers block is
	// not needed for matching.
	relative := *doc
	relative.Servers = nil
	router, err := legacy.NewRouter(&relative)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := strings.TrimPrefix(req.URL.Path, basePath)
			if path == "" {
				path = "/"
			}

			clone := req.Clone(req.Context())
			clone.URL.Path = path
			clone.URL.RawPath = ""

			route, pathParams, err := router.FindRoute(clone)
			var routeErr *routers.RouteError
			if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) || errors.As(err, &routeErr) {
				return next(c)
			}
			if err != nil {
				return fmt.Errorf("match openapi route: %w", err)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    clone,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return writeError(c, errs.NewValueIsInvalidErrorWithCause("request", err))
			}

			// The validator consumed the body and left a fresh reader on the clone.
			req.Body = clone.Body
			return next(c)
		}
	}, nil
}
