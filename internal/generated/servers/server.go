// Package servers holds the transport types, ServerInterface and the echo
// wrapper for the API described by openapi.yaml. The code follows the layout
// oapi-codegen produces for echo servers but is maintained by hand, so changes
// to openapi.yaml must be mirrored here.
package servers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for ActorRole.
const (
	ActorRoleAdmin    ActorRole = "admin"
	ActorRoleClient   ActorRole = "client"
	ActorRoleCourier  ActorRole = "courier"
	ActorRoleProvider ActorRole = "provider"
)

// Defines values for ErrorResponseCode.
const (
	Conflict          ErrorResponseCode = "conflict"
	Forbidden         ErrorResponseCode = "forbidden"
	Internal          ErrorResponseCode = "internal"
	InvalidTransition ErrorResponseCode = "invalid_transition"
	NotFound          ErrorResponseCode = "not_found"
	ValidationFailed  ErrorResponseCode = "validation_failed"
)

// Actor defines model for Actor.
type Actor struct {
	Id   openapi_types.UUID `json:"id"`
	Role ActorRole          `json:"role"`
}

// ActorRole defines model for Actor.Role.
type ActorRole string

// AvailableDelivery defines model for AvailableDelivery.
type AvailableDelivery struct {
	CreatedAt time.Time              `json:"created_at"`
	Details   map[string]interface{} `json:"details"`
	Id        openapi_types.UUID     `json:"id"`
	PostingId openapi_types.UUID     `json:"posting_id"`
}

// ClaimPostingRequest defines model for ClaimPostingRequest.
type ClaimPostingRequest struct {
	Actor Actor `json:"actor"`
}

// CreatePostingRequest defines model for CreatePostingRequest.
type CreatePostingRequest struct {
	Actor        Actor                   `json:"actor"`
	Details      *map[string]interface{} `json:"details,omitempty"`
	OpenDelivery *bool                   `json:"open_delivery,omitempty"`
}

// Delivery defines model for Delivery.
type Delivery struct {
	AdminNotes string              `json:"admin_notes"`
	CourierId  *openapi_types.UUID `json:"courier_id"`
	CreatedAt  time.Time           `json:"created_at"`
	Id         openapi_types.UUID  `json:"id"`
	PostingId  openapi_types.UUID  `json:"posting_id"`
	Status     string              `json:"status"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Success bool              `json:"success"`
}

// ErrorResponseCode defines model for ErrorResponse.Code.
type ErrorResponseCode string

// HistoryEntry defines model for HistoryEntry.
type HistoryEntry struct {
	ActorId    openapi_types.UUID `json:"actor_id"`
	ActorRole  string             `json:"actor_role"`
	Event      string             `json:"event"`
	From       string             `json:"from"`
	OccurredAt time.Time          `json:"occurred_at"`
	Reason     *string            `json:"reason,omitempty"`
	To         string             `json:"to"`
}

// OpenDeliveryRequest defines model for OpenDeliveryRequest.
type OpenDeliveryRequest struct {
	Actor     Actor              `json:"actor"`
	PostingId openapi_types.UUID `json:"posting_id"`
}

// Posting defines model for Posting.
type Posting struct {
	CreatedAt time.Time              `json:"created_at"`
	Delivery  *Delivery              `json:"delivery,omitempty"`
	Details   map[string]interface{} `json:"details"`
	Id        openapi_types.UUID     `json:"id"`
	OwnerId   openapi_types.UUID     `json:"owner_id"`
	Status    string                 `json:"status"`
}

// SuccessResponse defines model for SuccessResponse.
type SuccessResponse struct {
	Data    *interface{} `json:"data,omitempty"`
	Message string       `json:"message"`
	Success bool         `json:"success"`
}

// TransitionRequest defines model for TransitionRequest.
type TransitionRequest struct {
	Actor        Actor               `json:"actor"`
	CourierId    *openapi_types.UUID `json:"courier_id,omitempty"`
	Event        string              `json:"event"`
	Reason       *string             `json:"reason,omitempty"`
	TargetStatus *string             `json:"target_status,omitempty"`
}

// ID defines model for ID.
type ID = openapi_types.UUID

// IdempotencyKey defines model for IdempotencyKey.
type IdempotencyKey = string

// Failure defines model for Failure.
type Failure = ErrorResponse

// Success defines model for Success.
type Success = SuccessResponse

// OpenDeliveryParams defines parameters for OpenDelivery.
type OpenDeliveryParams struct {
	IdempotencyKey *IdempotencyKey `json:"Idempotency-Key,omitempty"`
}

// GetAvailableDeliveriesParams defines parameters for GetAvailableDeliveries.
type GetAvailableDeliveriesParams struct {
	CourierId openapi_types.UUID `form:"courier_id" json:"courier_id"`
}

// RequestTransitionParams defines parameters for RequestTransition.
type RequestTransitionParams struct {
	IdempotencyKey *IdempotencyKey `json:"Idempotency-Key,omitempty"`
}

// CreatePostingParams defines parameters for CreatePosting.
type CreatePostingParams struct {
	IdempotencyKey *IdempotencyKey `json:"Idempotency-Key,omitempty"`
}

// ClaimPostingParams defines parameters for ClaimPosting.
type ClaimPostingParams struct {
	IdempotencyKey *IdempotencyKey `json:"Idempotency-Key,omitempty"`
}

// OpenDeliveryJSONRequestBody defines body for OpenDelivery for application/json ContentType.
type OpenDeliveryJSONRequestBody = OpenDeliveryRequest

// RequestTransitionJSONRequestBody defines body for RequestTransition for application/json ContentType.
type RequestTransitionJSONRequestBody = TransitionRequest

// CreatePostingJSONRequestBody defines body for CreatePosting for application/json ContentType.
type CreatePostingJSONRequestBody = CreatePostingRequest

// ClaimPostingJSONRequestBody defines body for ClaimPosting for application/json ContentType.
type ClaimPostingJSONRequestBody = ClaimPostingRequest

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Open a pending delivery for an active posting
	// (POST /deliveries)
	OpenDelivery(ctx echo.Context, params OpenDeliveryParams) error
	// Pending deliveries a courier can accept
	// (GET /deliveries/available)
	GetAvailableDeliveries(ctx echo.Context, params GetAvailableDeliveriesParams) error

	// (GET /deliveries/{id})
	GetDelivery(ctx echo.Context, id ID) error

	// (GET /deliveries/{id}/history)
	GetDeliveryHistory(ctx echo.Context, id ID) error
	// Apply a lifecycle event to a delivery
	// (POST /deliveries/{id}/transition)
	RequestTransition(ctx echo.Context, id ID, params RequestTransitionParams) error

	// (GET /postings)
	GetActivePostings(ctx echo.Context) error

	// (POST /postings)
	CreatePosting(ctx echo.Context, params CreatePostingParams) error
	// Courier accepts a posting directly
	// (POST /postings/{id}/claim)
	ClaimPosting(ctx echo.Context, id ID, params ClaimPostingParams) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// OpenDelivery converts echo context to params.
func (w *ServerInterfaceWrapper) OpenDelivery(ctx echo.Context) error {
	var err error

	var params OpenDeliveryParams
	if params.IdempotencyKey, err = bindIdempotencyKey(ctx); err != nil {
		return err
	}

	err = w.Handler.OpenDelivery(ctx, params)
	return err
}

// GetAvailableDeliveries converts echo context to params.
func (w *ServerInterfaceWrapper) GetAvailableDeliveries(ctx echo.Context) error {
	var err error

	var params GetAvailableDeliveriesParams
	err = runtime.BindQueryParameter("form", true, true, "courier_id", ctx.QueryParams(), &params.CourierId)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter courier_id: %s", err))
	}

	err = w.Handler.GetAvailableDeliveries(ctx, params)
	return err
}

// GetDelivery converts echo context to params.
func (w *ServerInterfaceWrapper) GetDelivery(ctx echo.Context) error {
	var err error
	var id ID

	err = runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}

	err = w.Handler.GetDelivery(ctx, id)
	return err
}

// GetDeliveryHistory converts echo context to params.
func (w *ServerInterfaceWrapper) GetDeliveryHistory(ctx echo.Context) error {
	var err error
	var id ID

	err = runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}

	err = w.Handler.GetDeliveryHistory(ctx, id)
	return err
}

// RequestTransition converts echo context to params.
func (w *ServerInterfaceWrapper) RequestTransition(ctx echo.Context) error {
	var err error
	var id ID

	err = runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}

	var params RequestTransitionParams
	if params.IdempotencyKey, err = bindIdempotencyKey(ctx); err != nil {
		return err
	}

	err = w.Handler.RequestTransition(ctx, id, params)
	return err
}

// GetActivePostings converts echo context to params.
func (w *ServerInterfaceWrapper) GetActivePostings(ctx echo.Context) error {
	var err error

	err = w.Handler.GetActivePostings(ctx)
	return err
}

// CreatePosting converts echo context to params.
func (w *ServerInterfaceWrapper) CreatePosting(ctx echo.Context) error {
	var err error

	var params CreatePostingParams
	if params.IdempotencyKey, err = bindIdempotencyKey(ctx); err != nil {
		return err
	}

	err = w.Handler.CreatePosting(ctx, params)
	return err
}

// ClaimPosting converts echo context to params.
func (w *ServerInterfaceWrapper) ClaimPosting(ctx echo.Context) error {
	var err error
	var id ID

	err = runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}

	var params ClaimPostingParams
	if params.IdempotencyKey, err = bindIdempotencyKey(ctx); err != nil {
		return err
	}

	err = w.Handler.ClaimPosting(ctx, id, params)
	return err
}

func bindIdempotencyKey(ctx echo.Context) (*IdempotencyKey, error) {
	headers := ctx.Request().Header
	valueList, found := headers[http.CanonicalHeaderKey("Idempotency-Key")]
	if !found {
		return nil, nil
	}
	if n := len(valueList); n != 1 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Expected one value for Idempotency-Key, got %d", n))
	}

	var key IdempotencyKey
	err := runtime.BindStyledParameterWithOptions("simple", "Idempotency-Key", valueList[0], &key, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: false})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter Idempotency-Key: %s", err))
	}
	return &key, nil
}

// EchoRouter is implemented by both echo.Echo and echo.Group.
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the paths, so that the paths
// can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {

	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/deliveries", wrapper.OpenDelivery)
	router.GET(baseURL+"/deliveries/available", wrapper.GetAvailableDeliveries)
	router.GET(baseURL+"/deliveries/:id", wrapper.GetDelivery)
	router.GET(baseURL+"/deliveries/:id/history", wrapper.GetDeliveryHistory)
	router.POST(baseURL+"/deliveries/:id/transition", wrapper.RequestTransition)
	router.GET(baseURL+"/postings", wrapper.GetActivePostings)
	router.POST(baseURL+"/postings", wrapper.CreatePosting)
	router.POST(baseURL+"/postings/:id/claim", wrapper.ClaimPosting)

}
