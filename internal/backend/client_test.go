package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Query_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/query", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Show all employees", req["query"])
		assert.Equal(t, "employee", req["domain"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"sql_query": "SELECT * FROM employees",
			"results": [{"name":"Alice","salary":50000}],
			"explanation": "Lists every employee."
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	answer, err := c.Query(context.Background(), "Show all employees", "employee")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM employees", answer.SQLQuery)
	assert.Equal(t, "Lists every employee.", answer.Explanation)
	require.Len(t, answer.Results, 1)
	assert.Equal(t, []string{"name", "salary"}, answer.Results.Columns())
}

func TestClient_Query_EmptyFieldsTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sql_query":"","results":[],"explanation":""}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	answer, err := c.Query(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.Empty(t, answer.SQLQuery)
	assert.Empty(t, answer.Results)
	assert.Empty(t, answer.Explanation)
}

func TestClient_Query_BackendReportedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"no such table: unicorns"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Query(context.Background(), "count unicorns", "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "no such table: unicorns", apiErr.Detail)
	assert.Equal(t, "no such table: unicorns", UserMessage(err, "fallback"))
}

func TestClient_Query_TransportError(t *testing.T) {
	// Point at a closed server to force a connection failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, 2*time.Second)
	_, err := c.Query(context.Background(), "anything", "")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))
}

func TestClient_ErrorWithoutDetailUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`oops`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	err := c.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))
}

func TestClient_Suggestions(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/suggestions", r.URL.Path)
		gotBody = map[string]string{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"suggestions":["What is the average salary?"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)

	got, err := c.SuggestForQuestion(context.Background(), "salary")
	require.NoError(t, err)
	assert.Equal(t, []string{"What is the average salary?"}, got)
	assert.Equal(t, "salary", gotBody["question"])
	assert.Empty(t, gotBody["domain"])

	_, err = c.SuggestForDomain(context.Background(), "employee")
	require.NoError(t, err)
	assert.Equal(t, "employee", gotBody["domain"])
	assert.Empty(t, gotBody["question"])
}

func TestClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transcribe", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("audio_file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "recording.wav", header.Filename)

		w.Write([]byte(`{"text":"show all employees"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	text, err := c.Transcribe(context.Background(), strings.NewReader("RIFFfake"), "recording.wav")
	require.NoError(t, err)
	assert.Equal(t, "show all employees", text)
}

func TestClient_Export(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/export", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "csv", req["format"])
		w.Write([]byte("name,salary\nAlice,50000\n"))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	data := resultSetFixture()

	raw, err := c.Export(context.Background(), data, "csv")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Alice")
}

func TestClient_Schema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/schema", r.URL.Path)
		w.Write([]byte(`{"schema":{"employees":["id","name","salary"]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	schema, err := c.Schema(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"employees":["id","name","salary"]}`, string(schema))
}
