package http_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpin "marketplace/internal/adapters/in/http"
	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/posting"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type env struct {
	transition *MockTransitionRequester
	claim      *MockPostingClaimer
	open       *MockDeliveryOpener
	create     *MockPostingCreator
	get        *MockDeliveryReader
	history    *MockHistoryReader
	available  *MockAvailableDeliveriesReader
	active     *MockActivePostingsReader
	router     *echo.Echo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		transition: &MockTransitionRequester{},
		claim:      &MockPostingClaimer{},
		open:       &MockDeliveryOpener{},
		create:     &MockPostingCreator{},
		get:        &MockDeliveryReader{},
		history:    &MockHistoryReader{},
		available:  &MockAvailableDeliveriesReader{},
		active:     &MockActivePostingsReader{},
	}

	server, err := httpin.NewServer(httpin.Handlers{
		RequestTransition:  e.transition,
		ClaimPosting:       e.claim,
		OpenDelivery:       e.open,
		CreatePosting:      e.create,
		GetDelivery:        e.get,
		GetDeliveryHistory: e.history,
		GetAvailable:       e.available,
		GetActivePostings:  e.active,
	}, nil)
	require.NoError(t, err)

	e.router, err = httpin.NewRouter(server, httpin.RouterOptions{})
	require.NoError(t, err)
	return e
}

func (e *env) assertExpectations(t *testing.T) {
	e.transition.AssertExpectations(t)
	e.claim.AssertExpectations(t)
	e.open.AssertExpectations(t)
	e.create.AssertExpectations(t)
	e.get.AssertExpectations(t)
	e.history.AssertExpectations(t)
	e.available.AssertExpectations(t)
	e.active.AssertExpectations(t)
}

func (e *env) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func actorJSON(id kernel.UUID, role string) string {
	return fmt.Sprintf(`{"id":%q,"role":%q}`, id.String(), role)
}

func acceptedDelivery(t *testing.T, id, postingID, courierID kernel.UUID) *delivery.Delivery {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d, err := delivery.RestoreDelivery(id, postingID, &courierID, delivery.Accepted, "", delivery.EventAccept, &courierID, now, now)
	require.NoError(t, err)
	return d
}

func TestNewServer_RequiresHandlers(t *testing.T) {
	_, err := httpin.NewServer(httpin.Handlers{}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestRequestTransition_Accept(t *testing.T) {
	e := newEnv(t)
	deliveryID, postingID, courierID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	e.transition.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RequestTransitionCommand) bool {
		return cmd.DeliveryID().IsEqual(deliveryID) &&
			cmd.Event() == delivery.EventAccept &&
			cmd.Actor().Role() == kernel.RoleCourier &&
			cmd.Actor().Is(courierID)
	})).Return(commands.TransitionResult{
		Delivery: acceptedDelivery(t, deliveryID, postingID, courierID),
		Result:   delivery.Result{From: delivery.Pending, To: delivery.Accepted, Applied: true},
	}, nil).Once()

	body := fmt.Sprintf(`{"event":"accept","actor":%s}`, actorJSON(courierID, "courier"))
	rec := e.do(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/transition", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.True(t, out.Success)
	assert.Equal(t, "Delivery accepted", out.Message)

	var data map[string]any
	require.NoError(t, json.Unmarshal(out.Data, &data))
	assert.Equal(t, deliveryID.String(), data["id"])
	assert.Equal(t, "accepted", data["status"])
	assert.Equal(t, courierID.String(), data["courier_id"])
	e.assertExpectations(t)
}

func TestRequestTransition_OverridePayload(t *testing.T) {
	e := newEnv(t)
	deliveryID, postingID, adminID, courierID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	e.transition.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RequestTransitionCommand) bool {
		req := cmd.Request()
		return req.Event == delivery.EventOverride &&
			req.TargetStatus == delivery.Accepted &&
			req.Reason == "courier swap" &&
			req.CourierID != nil && req.CourierID.IsEqual(courierID)
	})).Return(commands.TransitionResult{
		Delivery: acceptedDelivery(t, deliveryID, postingID, courierID),
		Result:   delivery.Result{From: delivery.InProgress, To: delivery.Accepted, Applied: true},
	}, nil).Once()

	body := fmt.Sprintf(`{"event":"override","actor":%s,"target_status":"accepted","reason":"courier swap","courier_id":%q}`,
		actorJSON(adminID, "admin"), courierID.String())
	rec := e.do(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/transition", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Delivery status overridden to accepted", decode(t, rec).Message)
	e.assertExpectations(t)
}

func TestRequestTransition_ReplayAndRefusalMessages(t *testing.T) {
	tests := []struct {
		name    string
		result  delivery.Result
		message string
	}{
		{name: "replay", result: delivery.Result{From: delivery.Accepted, To: delivery.Accepted, Replay: true}, message: "Transition already applied"},
		{name: "refused", result: delivery.Result{From: delivery.Pending, To: delivery.Pending, Refused: true}, message: "Delivery refused"},
		{name: "noop", result: delivery.Result{From: delivery.Accepted, To: delivery.Accepted}, message: "Nothing to change"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			deliveryID, postingID, courierID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
			e.transition.On("Handle", mock.Anything, mock.Anything).Return(commands.TransitionResult{
				Delivery: acceptedDelivery(t, deliveryID, postingID, courierID),
				Result:   tt.result,
			}, nil).Once()

			body := fmt.Sprintf(`{"event":"accept","actor":%s}`, actorJSON(courierID, "courier"))
			rec := e.do(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/transition", body)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.message, decode(t, rec).Message)
		})
	}
}

func TestRequestTransition_ErrorMapping(t *testing.T) {
	deliveryID := kernel.NewUUID()
	actor := kernel.MustNewActor(kernel.NewUUID(), kernel.RoleClient)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "not_found", err: errs.NewObjectNotFoundError("delivery", deliveryID), status: http.StatusNotFound, code: "not_found"},
		{name: "invalid_transition", err: delivery.NewInvalidTransitionError(deliveryID, delivery.Pending, delivery.EventValidate), status: http.StatusConflict, code: "invalid_transition"},
		{name: "forbidden", err: delivery.NewForbiddenError("validate", actor, "not the owner"), status: http.StatusForbidden, code: "forbidden"},
		{name: "validation", err: errs.NewValueIsRequiredError("reason"), status: http.StatusUnprocessableEntity, code: "validation_failed"},
		{name: "conflict", err: errs.NewObjectConflictError("posting", deliveryID), status: http.StatusConflict, code: "conflict"},
		{name: "internal", err: errors.New("connection refused"), status: http.StatusInternalServerError, code: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.transition.On("Handle", mock.Anything, mock.Anything).Return(commands.TransitionResult{}, tt.err).Once()

			body := fmt.Sprintf(`{"event":"validate","actor":%s}`, actorJSON(actor.ID(), "client"))
			rec := e.do(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/transition", body)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			out := decode(t, rec)
			assert.False(t, out.Success)
			assert.Equal(t, tt.code, out.Code)
			assert.NotEmpty(t, out.Message)
			if tt.code == "internal" {
				assert.NotContains(t, out.Error, "connection refused")
			}
		})
	}
}

func TestRequestTransition_RejectedBeforeHandler(t *testing.T) {
	actor := actorJSON(kernel.NewUUID(), "courier")
	deliveryPath := "/api/v1/deliveries/" + kernel.NewUUID().String() + "/transition"

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "unknown_event", path: deliveryPath, body: `{"event":"teleport","actor":` + actor + `}`},
		{name: "missing_actor", path: deliveryPath, body: `{"event":"accept"}`},
		{name: "unknown_role", path: deliveryPath, body: `{"event":"accept","actor":{"id":"` + kernel.NewUUID().String() + `","role":"robot"}}`},
		{name: "malformed_json", path: deliveryPath, body: `{"event":`},
		{name: "bad_delivery_id", path: "/api/v1/deliveries/not-a-uuid/transition", body: `{"event":"accept","actor":` + actor + `}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)

			rec := e.do(http.MethodPost, tt.path, tt.body)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Equal(t, "validation_failed", decode(t, rec).Code)
			e.transition.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}

func TestClaimPosting(t *testing.T) {
	e := newEnv(t)
	postingID, courierID := kernel.NewUUID(), kernel.NewUUID()
	d := acceptedDelivery(t, kernel.NewUUID(), postingID, courierID)

	e.claim.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ClaimPostingCommand) bool {
		return cmd.PostingID().IsEqual(postingID) && cmd.Courier().Is(courierID)
	})).Return(commands.TransitionResult{
		Delivery: d,
		Result:   delivery.Result{From: delivery.Pending, To: delivery.Accepted, Applied: true},
	}, nil).Once()

	rec := e.do(http.MethodPost, "/api/v1/postings/"+postingID.String()+"/claim",
		fmt.Sprintf(`{"actor":%s}`, actorJSON(courierID, "courier")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Delivery accepted", decode(t, rec).Message)
	e.assertExpectations(t)
}

func TestOpenDelivery(t *testing.T) {
	e := newEnv(t)
	postingID, ownerID := kernel.NewUUID(), kernel.NewUUID()
	d, err := delivery.NewDelivery(kernel.NewUUID(), postingID, time.Now())
	require.NoError(t, err)

	e.open.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.OpenDeliveryCommand) bool {
		return cmd.PostingID().IsEqual(postingID) && cmd.Actor().Is(ownerID)
	})).Return(d, nil).Once()

	rec := e.do(http.MethodPost, "/api/v1/deliveries",
		fmt.Sprintf(`{"posting_id":%q,"actor":%s}`, postingID.String(), actorJSON(ownerID, "client")))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode(t, rec)
	var data map[string]any
	require.NoError(t, json.Unmarshal(out.Data, &data))
	assert.Equal(t, "pending", data["status"])
	assert.Nil(t, data["courier_id"])
	e.assertExpectations(t)
}

func TestCreatePosting(t *testing.T) {
	e := newEnv(t)
	ownerID := kernel.NewUUID()

	e.create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreatePostingCommand) bool {
		return cmd.Actor().Is(ownerID) && cmd.OpenDelivery() && strings.Contains(string(cmd.Details()), "Main street")
	})).Return(func() commands.CreatePostingResult {
		p, err := posting.NewPosting(kernel.NewUUID(), ownerID, json.RawMessage(`{"address":"Main street 1"}`), time.Now())
		require.NoError(t, err)
		d, err := delivery.NewDelivery(kernel.NewUUID(), p.ID(), time.Now())
		require.NoError(t, err)
		return commands.CreatePostingResult{Posting: p, Delivery: d}
	}(), nil).Once()

	rec := e.do(http.MethodPost, "/api/v1/postings",
		fmt.Sprintf(`{"actor":%s,"details":{"address":"Main street 1"},"open_delivery":true}`, actorJSON(ownerID, "provider")))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data struct {
		Status   string         `json:"status"`
		Details  map[string]any `json:"details"`
		Delivery map[string]any `json:"delivery"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, "active", data.Status)
	assert.Equal(t, "Main street 1", data.Details["address"])
	assert.Equal(t, "pending", data.Delivery["status"])
	e.assertExpectations(t)
}

func TestGetDelivery(t *testing.T) {
	e := newEnv(t)
	id := kernel.NewUUID()

	e.get.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetDeliveryQuery) bool {
		return q.DeliveryID().IsEqual(id)
	})).Return(queries.GetDeliveryQueryResponse{
		ID:        id,
		PostingID: kernel.NewUUID(),
		Status:    delivery.Pending,
	}, nil).Once()

	rec := e.do(http.MethodGet, "/api/v1/deliveries/"+id.String(), "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	e.assertExpectations(t)
}

func TestGetDelivery_NotFound(t *testing.T) {
	e := newEnv(t)
	id := kernel.NewUUID()
	e.get.On("Handle", mock.Anything, mock.Anything).
		Return(queries.GetDeliveryQueryResponse{}, errs.NewObjectNotFoundError("delivery", id)).Once()

	rec := e.do(http.MethodGet, "/api/v1/deliveries/"+id.String(), "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec).Code)
}

func TestGetDeliveryHistory(t *testing.T) {
	e := newEnv(t)
	id, courierID := kernel.NewUUID(), kernel.NewUUID()
	e.history.On("Handle", mock.Anything, mock.Anything).Return([]queries.GetDeliveryHistoryQueryResponse{
		{From: delivery.Pending, To: delivery.Accepted, Event: delivery.EventAccept, ActorID: courierID, ActorRole: kernel.RoleCourier},
		{From: delivery.Accepted, To: delivery.Cancelled, Event: delivery.EventCancel, ActorID: courierID, ActorRole: kernel.RoleCourier, Reason: "flat tyre"},
	}, nil).Once()

	rec := e.do(http.MethodGet, "/api/v1/deliveries/"+id.String()+"/history", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	require.Len(t, data, 2)
	assert.Equal(t, "accept", data[0]["event"])
	assert.NotContains(t, data[0], "reason")
	assert.Equal(t, "flat tyre", data[1]["reason"])
}

func TestGetAvailableDeliveries(t *testing.T) {
	e := newEnv(t)
	courierID := kernel.NewUUID()
	e.available.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetAvailableDeliveriesQuery) bool {
		return q.CourierID().IsEqual(courierID)
	})).Return([]queries.GetAvailableDeliveriesQueryResponse{}, nil).Once()

	rec := e.do(http.MethodGet, "/api/v1/deliveries/available?courier_id="+courierID.String(), "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[]`, string(decode(t, rec).Data))
	e.assertExpectations(t)
}

func TestGetAvailableDeliveries_RequiresCourier(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/api/v1/deliveries/available", "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	e.available.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestGetActivePostings(t *testing.T) {
	e := newEnv(t)
	e.active.On("Handle", mock.Anything, mock.Anything).Return([]queries.GetActivePostingsQueryResponse{
		{ID: kernel.NewUUID(), OwnerID: kernel.NewUUID(), Details: json.RawMessage(`{"weight":2}`)},
	}, nil).Once()

	rec := e.do(http.MethodGet, "/api/v1/postings", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, "active", data[0]["status"])
}

func TestAmbientRoutes(t *testing.T) {
	e := newEnv(t)

	t.Run("health", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Healthy", rec.Body.String())
	})

	t.Run("openapi_document", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/v1/openapi.json", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"RequestTransition"`)
	})

	t.Run("unknown_route_uses_envelope", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/v1/unknown", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", decode(t, rec).Code)
	})
}

func TestRouter_ObservesRequests(t *testing.T) {
	e := newEnv(t)
	observer := &MockRequestObserver{}
	server, err := httpin.NewServer(httpin.Handlers{
		RequestTransition:  e.transition,
		ClaimPosting:       e.claim,
		OpenDelivery:       e.open,
		CreatePosting:      e.create,
		GetDelivery:        e.get,
		GetDeliveryHistory: e.history,
		GetAvailable:       e.available,
		GetActivePostings:  e.active,
	}, nil)
	require.NoError(t, err)
	router, err := httpin.NewRouter(server, httpin.RouterOptions{Metrics: observer, MetricsHandler: http.NotFoundHandler()})
	require.NoError(t, err)

	observer.On("ObserveHTTPRequest", "/health", http.MethodGet, http.StatusOK).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	observer.AssertExpectations(t)
}
