package http

import (
	"encoding/json"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/generated/servers"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func succeed(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, servers.SuccessResponse{
		Success: true,
		Message: message,
		Data:    &data,
	})
}

// transitionMessage describes what a transition request did, including the
// cases that changed nothing.
func transitionMessage(event delivery.Event, res delivery.Result) string {
	switch {
	case res.Replay:
		return "Transition already applied"
	case res.Refused:
		return "Delivery refused"
	case !res.Applied:
		return "Nothing to change"
	case res.From == res.To:
		return "Delivery updated"
	}

	switch event {
	case delivery.EventAccept:
		return "Delivery accepted"
	case delivery.EventStart:
		return "Delivery started"
	case delivery.EventMarkDelivered:
		return "Delivery marked as delivered"
	case delivery.EventValidate:
		return "Delivery completed"
	case delivery.EventRefuse:
		return "Delivery returned to " + res.To.String()
	case delivery.EventCancel:
		return "Delivery cancelled"
	case delivery.EventOverride:
		return "Delivery status overridden to " + res.To.String()
	default:
		return "Delivery moved to " + res.To.String()
	}
}

func toActor(actor servers.Actor) (kernel.Actor, error) {
	role, err := kernel.ParseRole(string(actor.Role))
	if err != nil {
		return kernel.Actor{}, err
	}
	return kernel.NewActor(kernel.UUIDFromGoogle(actor.Id), role)
}

func toPayload(body servers.TransitionRequest) (commands.TransitionPayload, error) {
	var payload commands.TransitionPayload
	if body.Reason != nil {
		payload.Reason = *body.Reason
	}
	if body.TargetStatus != nil {
		status, err := delivery.ParseStatus(*body.TargetStatus)
		if err != nil {
			return commands.TransitionPayload{}, err
		}
		payload.TargetStatus = status
	}
	if body.CourierId != nil {
		courierID := kernel.UUIDFromGoogle(*body.CourierId)
		if err := courierID.Validate(); err != nil {
			return commands.TransitionPayload{}, errs.NewValueIsInvalidErrorWithCause("courier_id", err)
		}
		payload.CourierID = &courierID
	}
	return payload, nil
}

func toDelivery(d *delivery.Delivery) servers.Delivery {
	return servers.Delivery{
		Id:         d.ID().Bytes(),
		PostingId:  d.PostingID().Bytes(),
		CourierId:  toOptionalID(d.CourierID()),
		Status:     d.Status().String(),
		AdminNotes: d.AdminNotes(),
		CreatedAt:  d.CreatedAt(),
		UpdatedAt:  d.UpdatedAt(),
	}
}

func toOptionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	googleUUID := id.Bytes()
	return &googleUUID
}

// toDetails decodes stored posting details. Anything that is not a JSON
// object is returned as an empty object.
func toDetails(raw json.RawMessage) map[string]interface{} {
	details := map[string]interface{}{}
	if len(raw) == 0 {
		return details
	}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]interface{}{}
	}
	return details
}
