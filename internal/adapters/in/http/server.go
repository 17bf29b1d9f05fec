package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/generated/servers"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

type (
	TransitionRequester interface {
		Handle(ctx context.Context, command commands.RequestTransitionCommand) (commands.TransitionResult, error)
	}
	PostingClaimer interface {
		Handle(ctx context.Context, command commands.ClaimPostingCommand) (commands.TransitionResult, error)
	}
	DeliveryOpener interface {
		Handle(ctx context.Context, command commands.OpenDeliveryCommand) (*delivery.Delivery, error)
	}
	PostingCreator interface {
		Handle(ctx context.Context, command commands.CreatePostingCommand) (commands.CreatePostingResult, error)
	}
	DeliveryReader interface {
		Handle(ctx context.Context, query queries.GetDeliveryQuery) (queries.GetDeliveryQueryResponse, error)
	}
	HistoryReader interface {
		Handle(ctx context.Context, query queries.GetDeliveryHistoryQuery) ([]queries.GetDeliveryHistoryQueryResponse, error)
	}
	AvailableDeliveriesReader interface {
		Handle(ctx context.Context, query queries.GetAvailableDeliveriesQuery) ([]queries.GetAvailableDeliveriesQueryResponse, error)
	}
	ActivePostingsReader interface {
		Handle(ctx context.Context, query queries.GetActivePostingsQuery) ([]queries.GetActivePostingsQueryResponse, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	RequestTransition  TransitionRequester
	ClaimPosting       PostingClaimer
	OpenDelivery       DeliveryOpener
	CreatePosting      PostingCreator
	GetDelivery        DeliveryReader
	GetDeliveryHistory HistoryReader
	GetAvailable       AvailableDeliveriesReader
	GetActivePostings  ActivePostingsReader
}

// Server implements servers.ServerInterface on top of the command and query handlers.
type Server struct {
	handlers Handlers
	logger   *slog.Logger
}

var _ servers.ServerInterface = (*Server)(nil)

// NewServer creates the HTTP server. Every handler is required.
func NewServer(handlers Handlers, logger *slog.Logger) (*Server, error) {
	switch {
	case handlers.RequestTransition == nil:
		return nil, errs.NewValueIsRequiredError("requestTransition")
	case handlers.ClaimPosting == nil:
		return nil, errs.NewValueIsRequiredError("claimPosting")
	case handlers.OpenDelivery == nil:
		return nil, errs.NewValueIsRequiredError("openDelivery")
	case handlers.CreatePosting == nil:
		return nil, errs.NewValueIsRequiredError("createPosting")
	case handlers.GetDelivery == nil:
		return nil, errs.NewValueIsRequiredError("getDelivery")
	case handlers.GetDeliveryHistory == nil:
		return nil, errs.NewValueIsRequiredError("getDeliveryHistory")
	case handlers.GetAvailable == nil:
		return nil, errs.NewValueIsRequiredError("getAvailable")
	case handlers.GetActivePostings == nil:
		return nil, errs.NewValueIsRequiredError("getActivePostings")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{handlers: handlers, logger: logger.With("component", "http-server")}, nil
}

// RequestTransition handles POST /api/v1/deliveries/{id}/transition.
func (s *Server) RequestTransition(c echo.Context, id servers.ID, _ servers.RequestTransitionParams) error {
	var body servers.TransitionRequest
	if err := c.Bind(&body); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	actor, err := toActor(body.Actor)
	if err != nil {
		return s.fail(c, err)
	}
	event, err := delivery.ParseEvent(body.Event)
	if err != nil {
		return s.fail(c, err)
	}
	payload, err := toPayload(body)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewRequestTransitionCommand(kernel.UUIDFromGoogle(id), event, actor, payload)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.handlers.RequestTransition.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return succeed(c, http.StatusOK, transitionMessage(event, result.Result), toDelivery(result.Delivery))
}

// ClaimPosting handles POST /api/v1/postings/{id}/claim.
func (s *Server) ClaimPosting(c echo.Context, id servers.ID, _ servers.ClaimPostingParams) error {
	var body servers.ClaimPostingRequest
	if err := c.Bind(&body); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	actor, err := toActor(body.Actor)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewClaimPostingCommand(kernel.UUIDFromGoogle(id), actor)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.handlers.ClaimPosting.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return succeed(c, http.StatusOK, transitionMessage(delivery.EventAccept, result.Result), toDelivery(result.Delivery))
}

// OpenDelivery handles POST /api/v1/deliveries.
func (s *Server) OpenDelivery(c echo.Context, _ servers.OpenDeliveryParams) error {
	var body servers.OpenDeliveryRequest
	if err := c.Bind(&body); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	actor, err := toActor(body.Actor)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewOpenDeliveryCommand(kernel.NewUUID(), kernel.UUIDFromGoogle(body.PostingId), actor)
	if err != nil {
		return s.fail(c, err)
	}

	d, err := s.handlers.OpenDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return succeed(c, http.StatusCreated, "Delivery opened", toDelivery(d))
}

// CreatePosting handles POST /api/v1/postings.
func (s *Server) CreatePosting(c echo.Context, _ servers.CreatePostingParams) error {
	var body servers.CreatePostingRequest
	if err := c.Bind(&body); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	actor, err := toActor(body.Actor)
	if err != nil {
		return s.fail(c, err)
	}

	var details json.RawMessage
	if body.Details != nil {
		if details, err = json.Marshal(*body.Details); err != nil {
			return s.fail(c, errs.NewValueIsInvalidErrorWithCause("details", err))
		}
	}
	openDelivery := body.OpenDelivery != nil && *body.OpenDelivery

	cmd, err := commands.NewCreatePostingCommand(kernel.NewUUID(), actor, details, openDelivery)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.handlers.CreatePosting.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	response := servers.Posting{
		Id:        result.Posting.ID().Bytes(),
		OwnerId:   result.Posting.OwnerID().Bytes(),
		Status:    result.Posting.Status().String(),
		Details:   toDetails(result.Posting.Details()),
		CreatedAt: result.Posting.CreatedAt(),
	}
	if result.Delivery != nil {
		d := toDelivery(result.Delivery)
		response.Delivery = &d
	}

	return succeed(c, http.StatusCreated, "Posting created", response)
}

// GetDelivery handles GET /api/v1/deliveries/{id}.
func (s *Server) GetDelivery(c echo.Context, id servers.ID) error {
	query, err := queries.NewGetDeliveryQuery(kernel.UUIDFromGoogle(id))
	if err != nil {
		return s.fail(c, err)
	}

	d, err := s.handlers.GetDelivery.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := servers.Delivery{
		Id:         d.ID.Bytes(),
		PostingId:  d.PostingID.Bytes(),
		CourierId:  toOptionalID(d.CourierID),
		Status:     d.Status.String(),
		AdminNotes: d.AdminNotes,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	return succeed(c, http.StatusOK, "Delivery found", response)
}

// GetDeliveryHistory handles GET /api/v1/deliveries/{id}/history.
func (s *Server) GetDeliveryHistory(c echo.Context, id servers.ID) error {
	query, err := queries.NewGetDeliveryHistoryQuery(kernel.UUIDFromGoogle(id))
	if err != nil {
		return s.fail(c, err)
	}

	history, err := s.handlers.GetDeliveryHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]servers.HistoryEntry, len(history))
	for i, entry := range history {
		response[i] = servers.HistoryEntry{
			From:       entry.From.String(),
			To:         entry.To.String(),
			Event:      entry.Event.String(),
			ActorId:    entry.ActorID.Bytes(),
			ActorRole:  entry.ActorRole.String(),
			OccurredAt: entry.OccurredAt,
		}
		if entry.Reason != "" {
			reason := entry.Reason
			response[i].Reason = &reason
		}
	}
	return succeed(c, http.StatusOK, "Delivery history", response)
}

// GetAvailableDeliveries handles GET /api/v1/deliveries/available.
func (s *Server) GetAvailableDeliveries(c echo.Context, params servers.GetAvailableDeliveriesParams) error {
	query, err := queries.NewGetAvailableDeliveriesQuery(kernel.UUIDFromGoogle(params.CourierId))
	if err != nil {
		return s.fail(c, err)
	}

	available, err := s.handlers.GetAvailable.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]servers.AvailableDelivery, len(available))
	for i, d := range available {
		response[i] = servers.AvailableDelivery{
			Id:        d.ID.Bytes(),
			PostingId: d.PostingID.Bytes(),
			Details:   toDetails(d.Details),
			CreatedAt: d.CreatedAt,
		}
	}
	return succeed(c, http.StatusOK, "Available deliveries", response)
}

// GetActivePostings handles GET /api/v1/postings.
func (s *Server) GetActivePostings(c echo.Context) error {
	postings, err := s.handlers.GetActivePostings.Handle(c.Request().Context(), queries.NewGetActivePostingsQuery())
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]servers.Posting, len(postings))
	for i, p := range postings {
		response[i] = servers.Posting{
			Id:        p.ID.Bytes(),
			OwnerId:   p.OwnerID.Bytes(),
			Status:    "active",
			Details:   toDetails(p.Details),
			CreatedAt: p.CreatedAt,
		}
	}
	return succeed(c, http.StatusOK, "Active postings", response)
}

func (s *Server) fail(c echo.Context, err error) error {
	status, _ := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return writeError(c, err)
}
