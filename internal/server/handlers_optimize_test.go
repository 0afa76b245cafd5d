package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const optimizedYAML = "cv:\n  name: Jane Doe\n  sections:\n    experience: []\n"

// readySessionID drives a session through all three gates.
func readySessionID(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	created := createSession(t, ts)
	uploadCV(t, ts, created.SessionID).Body.Close()
	postJSON(t, ts.URL+"/sessions/"+created.SessionID+"/job-description",
		JobDescriptionRequest{Text: strings.Repeat("word ", 60)}).Body.Close()
	postJSON(t, ts.URL+"/sessions/"+created.SessionID+"/template",
		TemplateRequest{Template: "modern"}).Body.Close()
	return created.SessionID
}

func TestOptimizeStreamCompletes(t *testing.T) {
	ts := testServer(t, &fakeLLM{optimizeOut: optimizedYAML})
	id := readySessionID(t, ts)

	resp := postJSON(t, ts.URL+"/sessions/"+id+"/optimize/stream", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(body)

	assert.Contains(t, stream, "event: progress")
	assert.Contains(t, stream, "event: complete")
	assert.Contains(t, stream, "optimized_cv_modern_")
	assert.NotContains(t, stream, "event: error")
}

func TestOptimizeAsyncCompletes(t *testing.T) {
	ts := testServer(t, &fakeLLM{optimizeOut: optimizedYAML})
	id := readySessionID(t, ts)

	resp := postJSON(t, ts.URL+"/sessions/"+id+"/optimize", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var out OptimizeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, "started", out.Status)

	require.Eventually(t, func() bool {
		getResp, err := http.Get(ts.URL + "/sessions/" + id)
		if err != nil {
			return false
		}
		got := decodeSession(t, getResp)
		return got.Optimized
	}, 10*time.Second, 50*time.Millisecond)

	getResp, err := http.Get(ts.URL + "/sessions/" + id)
	require.NoError(t, err)
	got := decodeSession(t, getResp)
	assert.Equal(t, "complete", got.State)
	assert.Contains(t, got.Artifact, "optimized_cv_modern_")
}

func TestOptimizeThenDownloadArtifact(t *testing.T) {
	ts := testServer(t, &fakeLLM{optimizeOut: optimizedYAML})
	id := readySessionID(t, ts)

	postJSON(t, ts.URL+"/sessions/"+id+"/optimize/stream", nil).Body.Close()

	resp, err := http.Get(ts.URL + "/sessions/" + id + "/artifact")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/yaml", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "optimized_cv_modern_")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, optimizedYAML, string(body))
}

func TestOptimizeFailureLeavesGatesIntact(t *testing.T) {
	ts := testServer(t, &fakeLLM{err: assertableError("model unavailable")})
	id := readySessionID(t, ts)

	resp := postJSON(t, ts.URL+"/sessions/"+id+"/optimize/stream", nil)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "event: error")

	getResp, err := http.Get(ts.URL + "/sessions/" + id)
	require.NoError(t, err)
	got := decodeSession(t, getResp)
	assert.True(t, got.Ready, "a failed run must not disturb the gates")
	assert.False(t, got.Optimized)
}

func TestPDFNotAvailable(t *testing.T) {
	ts := testServer(t, &fakeLLM{optimizeOut: optimizedYAML})
	id := readySessionID(t, ts)

	resp, err := http.Get(ts.URL + "/sessions/" + id + "/pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestKeywordsAreScopedToSession(t *testing.T) {
	ts := testServer(t, &fakeLLM{jsonOut: `{"technical_skills": ["Go"]}`})

	first := createSession(t, ts)
	second := createSession(t, ts)
	for _, id := range []string{first.SessionID, second.SessionID} {
		postJSON(t, ts.URL+"/sessions/"+id+"/job-description",
			JobDescriptionRequest{Text: strings.Repeat("word ", 60)}).Body.Close()
	}

	// Extraction runs in the background; each session must end up with
	// its own artifact rather than sharing one file.
	disposition := func(id string) string {
		resp, err := http.Get(ts.URL + "/sessions/" + id + "/keywords")
		require.NoError(t, err)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return ""
		}
		return resp.Header.Get("Content-Disposition")
	}
	require.Eventually(t, func() bool {
		return disposition(first.SessionID) != "" && disposition(second.SessionID) != ""
	}, 5*time.Second, 25*time.Millisecond)

	assert.Contains(t, disposition(first.SessionID), "jd_extracted_"+first.SessionID+".json")
	assert.Contains(t, disposition(second.SessionID), "jd_extracted_"+second.SessionID+".json")
}

func TestKeywordsNotAvailable(t *testing.T) {
	ts := testServer(t, &fakeLLM{optimizeOut: optimizedYAML})
	id := createSession(t, ts).SessionID

	resp, err := http.Get(ts.URL + "/sessions/" + id + "/keywords")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
