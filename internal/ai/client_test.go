package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{APIKey: "test-key", APIURL: server.URL})
	require.NoError(t, err)
	return client
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	require.NoError(t, json.NewEncoder(w).Encode(reply))
}

const senseGroupJSON = `[{
	"part_of_speech": "verb",
	"meanings": [{"definition": "move fast on foot", "example": "she runs", "translation": "бегать"}],
	"synonyms": ["sprint"],
	"pronunciation": {"uk": "/rʌn/", "us": "/rʌn/"}
}]`

func TestLookupParsesSenseGroups(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, `"run"`)

		chatReply(t, w, senseGroupJSON)
	})

	groups, err := client.Lookup(context.Background(), "run")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "verb", groups[0].PartOfSpeech)
	assert.Equal(t, "move fast on foot", groups[0].Meanings[0].Definition)
	assert.Equal(t, "/rʌn/", groups[0].Pronunciation.UK)
}

func TestLookupToleratesMarkdownFences(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "Here is the data:\n```json\n"+senseGroupJSON+"\n```")
	})

	groups, err := client.Lookup(context.Background(), "run")
	require.NoError(t, err)
	require.Len(t, groups, 1)
}

func TestLookupMalformedPayloadIsParseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `[{"part_of_speech": truncated`)
	})

	_, err := client.Lookup(context.Background(), "run")
	require.ErrorIs(t, err, ErrParse)
}

func TestLookupNoJSONIsParseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "I could not find that word.")
	})

	_, err := client.Lookup(context.Background(), "run")
	require.ErrorIs(t, err, ErrParse)
}

func TestLookupEmptyArrayIsParseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "[]")
	})

	// an empty array carries no content to write, so it counts as a failure
	_, err := client.Lookup(context.Background(), "run")
	require.ErrorIs(t, err, ErrParse)
}

func TestLookupAPIErrorIsServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited"},
		})
	})

	_, err := client.Lookup(context.Background(), "run")
	require.ErrorIs(t, err, ErrService)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestLookupHTTPFailureIsServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Lookup(context.Background(), "run")
	require.ErrorIs(t, err, ErrService)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
