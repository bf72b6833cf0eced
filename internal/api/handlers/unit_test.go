package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dom/crusadetome/internal/codec"
	"github.com/dom/crusadetome/internal/domain"
	"github.com/dom/crusadetome/internal/service"
	"github.com/dom/crusadetome/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitHandler_Auth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Token abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "extra parts", header: "Bearer a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.APIURL("/unit"), nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestUnitHandler_Get(t *testing.T) {
	ts := testutil.NewTestServer(t)
	session := ts.StartSession(t)

	resp := ts.Do(t, http.MethodGet, "/unit", session.Token, "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result testutil.UnitResponse
	testutil.AssertJSONResponse(t, resp, &result)
	assert.Equal(t, session.Unit.SessionID, result.SessionID)
	testutil.AssertDocument(t, domain.NewUnitRecord(), result.Document)
	assert.Nil(t, result.Form.UnitTypeIndex)
	assert.Equal(t, codec.ModelStatSchema.Columns(), result.Form.Stats.Columns)
	assert.Nil(t, result.Report)
}

func TestUnitHandler_Load(t *testing.T) {
	ts := testutil.NewTestServer(t)

	canoness := testutil.NewUnitBuilder().
		WithName("Canoness").
		WithType(domain.UnitTypeCharacter).
		WithFaction("Adepta Sororita").
		WithModel("Canoness", 6, 3, 3, 5, 7, 1).
		WithWeapon("Blessed blade", "Melee", 5, 2, 5, 2, "2").
		WithKeywords("Infantry", "Character").
		Build()
	canonessJSON, err := codec.ToJSON(canoness)
	require.NoError(t, err)

	multipartBody := func(t *testing.T, field string, data []byte) ([]byte, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(field, "Canoness.json")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return buf.Bytes(), mw.FormDataContentType()
	}

	tests := []struct {
		name           string
		body           func(t *testing.T) ([]byte, string)
		expectedStatus int
		expectedError  string
		wantName       string
		checkResponse  func(*testing.T, testutil.UnitResponse)
	}{
		{
			name: "raw body",
			body: func(t *testing.T) ([]byte, string) {
				return canonessJSON, "application/json"
			},
			expectedStatus: http.StatusOK,
			wantName:       "Canoness",
			checkResponse: func(t *testing.T, result testutil.UnitResponse) {
				testutil.AssertDocument(t, canoness, result.Document)
				require.NotNil(t, result.Form.UnitTypeIndex)
				assert.Equal(t, 1, *result.Form.UnitTypeIndex)
				require.NotNil(t, result.Report)
				assert.Empty(t, result.Report.Warnings)
			},
		},
		{
			name: "multipart file",
			body: func(t *testing.T) ([]byte, string) {
				return multipartBody(t, "file", canonessJSON)
			},
			expectedStatus: http.StatusOK,
			wantName:       "Canoness",
		},
		{
			name: "multipart without file part",
			body: func(t *testing.T) ([]byte, string) {
				return multipartBody(t, "upload", canonessJSON)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_upload",
		},
		{
			name: "malformed document",
			body: func(t *testing.T) ([]byte, string) {
				return []byte(`{"unit_name": "Broken",}`), "application/json"
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "parse_error",
		},
		{
			name: "empty body",
			body: func(t *testing.T) ([]byte, string) {
				return []byte{}, "application/json"
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "parse_error",
		},
		{
			name: "too large",
			body: func(t *testing.T) ([]byte, string) {
				name := strings.Repeat("x", int(ts.Config.MaxUploadBytes))
				return []byte(`{"unit_name": "` + name + `"}`), "application/json"
			},
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedError:  "too_large",
		},
		{
			name: "unknown faction",
			body: func(t *testing.T) ([]byte, string) {
				return []byte(`{"unit_name": "Kroot Carnivores", "faction": "Kroot"}`), "application/json"
			},
			expectedStatus: http.StatusOK,
			wantName:       "Kroot Carnivores",
			checkResponse: func(t *testing.T, result testutil.UnitResponse) {
				assert.Nil(t, result.Form.FactionIndex)
				assert.Equal(t, "Kroot", result.Form.Faction)
				require.NotNil(t, result.Report)
				require.Len(t, result.Report.Warnings, 1)
				assert.Contains(t, result.Report.Warnings[0], "Kroot")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := ts.StartSession(t)

			before := ts.Do(t, http.MethodPost, "/unit/submit", session.Token, "application/json",
				mustJSON(t, service.Form{UnitName: "Before"}))
			before.Body.Close()
			require.Equal(t, http.StatusOK, before.StatusCode)

			body, contentType := tt.body(t)
			resp := ts.Do(t, http.MethodPost, "/unit/load", session.Token, contentType, body)
			defer resp.Body.Close()

			if tt.expectedError != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedError)

				// The session still holds the record from before the upload.
				after := ts.Do(t, http.MethodGet, "/unit", session.Token, "", nil)
				defer after.Body.Close()
				var current testutil.UnitResponse
				testutil.AssertJSONResponse(t, after, &current)
				assert.Equal(t, "Before", current.Form.UnitName)
				return
			}

			require.Equal(t, tt.expectedStatus, resp.StatusCode)
			var result testutil.UnitResponse
			testutil.AssertJSONResponse(t, resp, &result)
			assert.Equal(t, tt.wantName, result.Form.UnitName)
			if tt.checkResponse != nil {
				tt.checkResponse(t, result)
			}
		})
	}
}

func TestUnitHandler_LoadParseErrorOffset(t *testing.T) {
	ts := testutil.NewTestServer(t)
	session := ts.StartSession(t)

	resp := ts.Do(t, http.MethodPost, "/unit/load", session.Token, "application/json", []byte(`{"unit_name": x}`))
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Offset  *int64 `json:"offset"`
	}
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, "parse_error", body.Error)
	require.NotNil(t, body.Offset)
	assert.Equal(t, int64(15), *body.Offset)
}

func TestUnitHandler_Submit(t *testing.T) {
	ts := testutil.NewTestServer(t)
	session := ts.StartSession(t)

	form := session.Unit.Form
	form.UnitName = "Intercessor Squad"
	form.UnitType = "Infantry"
	form.Faction = "Space Marines"
	form.Keywords = "Infantry,Battleline,Grenades"
	form.Stats.Append([]any{"Intercessor", 6, 4, 3, nil, 2, 6, 2})
	form.Wargear.Append([]any{true, "Bolt rifle", "Assault, Heavy", "24\"", 2, 3, 4, 2, "1"})

	resp := ts.Do(t, http.MethodPost, "/unit/submit", session.Token, "application/json", mustJSON(t, form))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result testutil.UnitResponse
	testutil.AssertJSONResponse(t, resp, &result)

	record, err := codec.FromJSON(result.Document)
	require.NoError(t, err)
	assert.Equal(t, "Intercessor Squad", record.UnitName)
	assert.Equal(t, []string{"Infantry", "Battleline", "Grenades"}, record.Keywords)
	require.Len(t, record.Stats, 1)
	assert.Nil(t, record.Stats[0].Invuln)
	assert.Equal(t, domain.Int(2), record.Stats[0].Wounds)
	require.Len(t, record.Wargear, 1)
	assert.Equal(t, `24"`, record.Wargear[0].Range)
	assert.Equal(t, domain.Int(2), record.Wargear[0].AP)

	require.NotNil(t, result.Form.FactionIndex)
	assert.Equal(t, 7, *result.Form.FactionIndex)
	require.NotNil(t, result.Report)
	assert.Empty(t, result.Report.Issues)

	t.Run("invalid body", func(t *testing.T) {
		resp := ts.Do(t, http.MethodPost, "/unit/submit", session.Token, "application/json", []byte(`{"unitName":`))
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "invalid_form")
	})
}

func TestUnitHandler_New(t *testing.T) {
	ts := testutil.NewTestServer(t)
	session := ts.StartSession(t)

	submitted := ts.Do(t, http.MethodPost, "/unit/submit", session.Token, "application/json",
		mustJSON(t, service.Form{UnitName: "Discarded"}))
	submitted.Body.Close()
	require.Equal(t, http.StatusOK, submitted.StatusCode)

	resp := ts.Do(t, http.MethodPost, "/unit/new", session.Token, "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result testutil.UnitResponse
	testutil.AssertJSONResponse(t, resp, &result)
	testutil.AssertDocument(t, domain.NewUnitRecord(), result.Document)
}

func TestUnitHandler_Save(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name                string
		unitName            string
		expectedDisposition string
	}{
		{
			name:                "named unit",
			unitName:            "Death Company",
			expectedDisposition: `attachment; filename="Death Company.json"`,
		},
		{
			name:                "unnamed unit",
			unitName:            "",
			expectedDisposition: `attachment; filename="unit.json"`,
		},
		{
			name:                "quotes are escaped",
			unitName:            `The "Emperor's" Champion`,
			expectedDisposition: `attachment; filename="The \"Emperor's\" Champion.json"`,
		},
		{
			name:                "non-ASCII names get filename*",
			unitName:            "Aun'Vā",
			expectedDisposition: `attachment; filename="Aun'V_.json"; filename*=UTF-8''Aun%27V%C4%81.json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := ts.StartSession(t)

			record := testutil.NewUnitBuilder().WithName(tt.unitName).WithKeywords("Character").Build()
			loaded := ts.Do(t, http.MethodPost, "/unit/load", session.Token, "application/json", mustCodecJSON(t, record))
			loaded.Body.Close()
			require.Equal(t, http.StatusOK, loaded.StatusCode)

			resp := ts.Do(t, http.MethodGet, "/unit/save", session.Token, "", nil)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Equal(t, tt.expectedDisposition, resp.Header.Get("Content-Disposition"))

			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, string(mustCodecJSON(t, record)), string(data))
		})
	}
}

func TestUnitHandler_SessionLifecycle(t *testing.T) {
	t.Run("ended session is gone", func(t *testing.T) {
		ts := testutil.NewTestServer(t)
		session := ts.StartSession(t)

		resp := ts.Do(t, http.MethodDelete, "/sessions/current", session.Token, "", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = ts.Do(t, http.MethodGet, "/unit", session.Token, "", nil)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "session_not_found")
	})

	t.Run("idle session expires", func(t *testing.T) {
		cfg := testutil.TestConfig()
		cfg.SessionTTL = time.Millisecond
		ts := testutil.NewTestServerWithConfig(t, cfg)
		session := ts.StartSession(t)

		time.Sleep(10 * time.Millisecond)

		resp := ts.Do(t, http.MethodGet, "/unit", session.Token, "", nil)
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusGone, "session_expired")
	})
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func mustCodecJSON(t *testing.T, r domain.UnitRecord) []byte {
	t.Helper()
	data, err := codec.ToJSON(r)
	require.NoError(t, err)
	return data
}
