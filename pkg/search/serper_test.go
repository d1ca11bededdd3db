package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcrawler-mcp/pkg/config"
	"webcrawler-mcp/pkg/utils"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestSerperSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "golang crawler", body["q"])

		fmt.Fprint(w, `{"organic":[
			{"title":"One","link":"https://a.example.com","snippet":"first"},
			{"title":"Two","link":"https://b.example.com","snippet":"second"},
			{"title":"Three","link":"https://c.example.com","snippet":"third"}
		]}`)
	}))
	defer server.Close()

	client := NewSerperClient(server.Client(), config.SearchConfig{
		SerperEndpoint: server.URL,
		SerperAPIKey:   "test-key",
	}, testLogger())

	results, err := client.Search(context.Background(), "golang crawler", 2)
	require.NoError(t, err)
	require.Len(t, results, 2, "results capped at maxResults")
	assert.Equal(t, "One", results[0].Title)
	assert.Equal(t, "https://a.example.com", results[0].URL)
	assert.Equal(t, "first", results[0].Snippet)
}

func TestSerperSearch_MissingAPIKey(t *testing.T) {
	client := NewSerperClient(http.DefaultClient, config.SearchConfig{
		SerperEndpoint: "https://google.serper.dev/search",
	}, testLogger())

	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrMissingAPIKey))
}

func TestSerperSearch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewSerperClient(server.Client(), config.SearchConfig{
		SerperEndpoint: server.URL,
		SerperAPIKey:   "bad-key",
	}, testLogger())

	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSerperSearch_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	client := NewSerperClient(server.Client(), config.SearchConfig{
		SerperEndpoint: server.URL,
		SerperAPIKey:   "key",
	}, testLogger())

	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrParsing))
}

func TestSerperSearch_NoOrganicResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"organic":[]}`)
	}))
	defer server.Close()

	client := NewSerperClient(server.Client(), config.SearchConfig{
		SerperEndpoint: server.URL,
		SerperAPIKey:   "key",
	}, testLogger())

	results, err := client.Search(context.Background(), "obscure query", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
