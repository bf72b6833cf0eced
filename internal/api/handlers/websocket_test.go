package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dom/crusadetome/internal/codec"
	"github.com/dom/crusadetome/internal/domain"
	"github.com/dom/crusadetome/internal/service"
	"github.com/dom/crusadetome/internal/testutil"
	"github.com/dom/crusadetome/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wsTimeout = 2 * time.Second

func TestWebSocketHandler_Rejects(t *testing.T) {
	ts := testutil.NewTestServer(t)

	ended := ts.StartSession(t)
	resp := ts.Do(t, http.MethodDelete, "/sessions/current", ended.Token, "", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "missing token", token: "", expectedStatus: http.StatusUnauthorized},
		{name: "invalid token", token: "garbage", expectedStatus: http.StatusUnauthorized},
		{name: "ended session", token: ended.Token, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := gorillaWS.DefaultDialer.Dial(ts.WebSocketURL(tt.token), nil)
			if conn != nil {
				conn.Close()
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestWebSocketHandler_Preview(t *testing.T) {
	ts := testutil.NewTestServer(t)
	session := ts.StartSession(t)

	client := testutil.NewWSClient(t, ts.WebSocketURL(session.Token))

	snapshot := client.ExpectRecord(websocket.MessageTypeRecordSnapshot, wsTimeout)
	assert.Equal(t, session.Unit.SessionID, snapshot.SessionID)
	testutil.AssertDocument(t, domain.NewUnitRecord(), snapshot.Document)

	t.Run("submit is pushed", func(t *testing.T) {
		form := session.Unit.Form
		form.UnitName = "Hive Tyrant"
		form.UnitType = "Monster"
		form.Faction = "Tyranids"

		resp := ts.Do(t, http.MethodPost, "/unit/submit", session.Token, "application/json", mustJSON(t, form))
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		update := client.ExpectRecord(websocket.MessageTypeRecordUpdated, wsTimeout)
		record, err := codec.FromJSON(update.Document)
		require.NoError(t, err)
		assert.Equal(t, "Hive Tyrant", record.UnitName)
		assert.Equal(t, domain.UnitTypeMonster, record.UnitType)
	})

	t.Run("load is pushed", func(t *testing.T) {
		doc := testutil.NewUnitBuilder().WithName("Neurotyrant").JSON(t)
		resp := ts.Do(t, http.MethodPost, "/unit/load", session.Token, "application/json", doc)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		update := client.ExpectRecord(websocket.MessageTypeRecordUpdated, wsTimeout)
		assert.JSONEq(t, string(doc), string(update.Document))
	})

	t.Run("failed load is not pushed", func(t *testing.T) {
		resp := ts.Do(t, http.MethodPost, "/unit/load", session.Token, "application/json", []byte(`{`))
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		client.ExpectNoMessage(200 * time.Millisecond)
	})

	t.Run("new is pushed", func(t *testing.T) {
		resp := ts.Do(t, http.MethodPost, "/unit/new", session.Token, "", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		update := client.ExpectRecord(websocket.MessageTypeRecordUpdated, wsTimeout)
		testutil.AssertDocument(t, domain.NewUnitRecord(), update.Document)
	})

	t.Run("sync resends the snapshot", func(t *testing.T) {
		client.SyncState()
		snapshot := client.ExpectRecord(websocket.MessageTypeRecordSnapshot, wsTimeout)
		testutil.AssertDocument(t, domain.NewUnitRecord(), snapshot.Document)
	})

	t.Run("unknown message type", func(t *testing.T) {
		client.Send("LOCK_IN")
		client.ExpectErrorWithCode("UNKNOWN_MESSAGE", wsTimeout)
	})
}

func TestWebSocketHandler_OtherSessionsAreQuiet(t *testing.T) {
	ts := testutil.NewTestServer(t)
	watched := ts.StartSession(t)
	other := ts.StartSession(t)

	client := testutil.NewWSClient(t, ts.WebSocketURL(watched.Token))
	client.ExpectRecord(websocket.MessageTypeRecordSnapshot, wsTimeout)

	resp := ts.Do(t, http.MethodPost, "/unit/submit", other.Token, "application/json",
		mustJSON(t, service.Form{UnitName: "Elsewhere"}))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	client.ExpectNoMessage(200 * time.Millisecond)
}
