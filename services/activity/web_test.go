package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/bankingdemo/lib/myevents"
	"github.com/MarcGrol/bankingdemo/lib/mypubsub"
	"github.com/MarcGrol/bankingdemo/lib/mystore"
	"github.com/MarcGrol/bankingdemo/lib/mytime"
	"github.com/MarcGrol/bankingdemo/lib/myuuid"
	"github.com/MarcGrol/bankingdemo/services/bankflow/bankflowevents"
)

func TestActivity(t *testing.T) {

	t.Run("Event envelope is stored as activity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, store, nower, uuider := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("activity-1")

		body := pushRequestFor(t, bankflowevents.SessionEstablished{
			FlowUID:      "flow-123",
			SessionID:    "sess-1",
			AccountCount: 2,
		})

		// when
		request, err := http.NewRequest(http.MethodPost, "/activity/event", bytes.NewReader(body))
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		record, exists, err := store.Get(ctx, "activity-1")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "flow-123", record.FlowUID)
		assert.Equal(t, "session-established", record.Kind)
		assert.Contains(t, record.Details, "sess-1")
	})

	t.Run("Unknown event type is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _ := setup(t, ctrl)

		envelope := myevents.EventEnvelope{
			Topic:         bankflowevents.TopicName,
			EventTypeName: "bankflow.something.else",
			EventPayload:  "{}",
		}
		envelopeJSON, err := json.Marshal(envelope)
		assert.NoError(t, err)
		body, err := json.Marshal(myevents.PushRequest{
			Message: myevents.PushMessage{Data: envelopeJSON},
		})
		assert.NoError(t, err)

		// when
		request, err := http.NewRequest(http.MethodPost, "/activity/event", bytes.NewReader(body))
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 501, response.Code)
	})

	t.Run("Activity page lists stored records", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, store, _, _ := setup(t, ctrl)

		err := store.Put(ctx, "activity-1", ActivityRecord{
			UID:       "activity-1",
			FlowUID:   "flow-123",
			Kind:      "consent-started",
			Details:   "consent requested for Demo Bank (FR)",
			CreatedAt: mytime.ExampleTime,
		})
		assert.NoError(t, err)

		// when
		request, err := http.NewRequest(http.MethodGet, "/activity", nil)
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		got := response.Body.String()
		assert.Contains(t, got, "consent-started")
		assert.Contains(t, got, "Demo Bank")
	})
}

func pushRequestFor(t *testing.T, event myevents.Event) []byte {
	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	envelope := myevents.EventEnvelope{
		Topic:         bankflowevents.TopicName,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	}
	envelopeJSON, err := json.Marshal(envelope)
	assert.NoError(t, err)

	body, err := json.Marshal(myevents.PushRequest{
		Message: myevents.PushMessage{Data: envelopeJSON},
	})
	assert.NoError(t, err)

	return body
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[ActivityRecord], *mytime.MockNower, *myuuid.MockUUIDer) {
	ctx := context.TODO()
	router := mux.NewRouter()
	store, _, err := mystore.NewInMemoryStore[ActivityRecord](ctx)
	assert.NoError(t, err)
	subscriber, _, err := mypubsub.New(ctx)
	assert.NoError(t, err)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)
	sut := NewService(store, subscriber, nower, uuider)

	err = sut.RegisterEndpoints(ctx, router)
	assert.NoError(t, err)

	return ctx, router, store, nower, uuider
}
