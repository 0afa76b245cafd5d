package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-tailor/internal/config"
	"github.com/jonathan/cv-tailor/internal/extraction"
	"github.com/jonathan/cv-tailor/internal/llm"
)

type fakeLLM struct {
	optimizeOut string
	jsonOut     string
	err         error
}

func (f *fakeLLM) Optimize(_ context.Context, _ string, _ int32) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.optimizeOut, nil
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.jsonOut, nil
}

func (f *fakeLLM) Close() error { return nil }

func testServer(t *testing.T, client llm.Client) *httptest.Server {
	t.Helper()
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg := config.Config{
		Addr:      ":0",
		OutputDir: t.TempDir(),
		APIKey:    "test-key",
	}
	srv, err := New(cfg, client)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.rateLimiter.Stop()
	})
	return ts
}

func decodeSession(t *testing.T, resp *http.Response) SessionResponse {
	t.Helper()
	defer resp.Body.Close()
	var out SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createSession(t *testing.T, ts *httptest.Server) SessionResponse {
	t.Helper()
	resp, err := http.Post(ts.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeSession(t, resp)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

// buildDocx assembles a minimal .docx archive with one paragraph per line.
func buildDocx(t *testing.T, lines ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, line)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	doc := `<?xml version="1.0"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`
	_, err = f.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func uploadCV(t *testing.T, ts *httptest.Server, sessionID string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="cv.docx"`}
	hdr["Content-Type"] = []string{extraction.MIMEDocx}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(buildDocx(t, "Jane Doe", "Software Engineer", "Go, Python, Postgres"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/sessions/"+sessionID+"/cv", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetSession(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	created := createSession(t, ts)
	assert.Equal(t, "init", created.State)
	assert.False(t, created.Ready)
	assert.Equal(t, "professional", created.Template)

	resp, err := http.Get(ts.URL + "/sessions/" + created.SessionID)
	require.NoError(t, err)
	got := decodeSession(t, resp)
	assert.Equal(t, created.SessionID, got.SessionID)
}

func TestGetUnknownSession(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	resp, err := http.Get(ts.URL + "/sessions/00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSessionBadID(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	resp, err := http.Get(ts.URL + "/sessions/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadCVArmsGate(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	created := createSession(t, ts)

	resp := uploadCV(t, ts, created.SessionID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeSession(t, resp)
	assert.True(t, got.CVUploaded)
	assert.Equal(t, "cv.docx", got.CVFilename)
	assert.Equal(t, "cv_uploaded", got.State)
}

func TestClearCVDisarmsGate(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	created := createSession(t, ts)
	uploadCV(t, ts, created.SessionID).Body.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/sessions/"+created.SessionID+"/cv", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	got := decodeSession(t, resp)
	assert.False(t, got.CVUploaded)
	assert.Equal(t, "init", got.State)
}

func TestJobDescriptionBands(t *testing.T) {
	ts := testServer(t, nil)
	created := createSession(t, ts)
	url := ts.URL + "/sessions/" + created.SessionID + "/job-description"

	// Below the usable band.
	resp := postJSON(t, url, JobDescriptionRequest{Text: "Go engineer wanted"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out JobDescriptionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, "needs_more", out.Status)
	assert.False(t, out.Accepted)

	// Sufficient: fifty words arms the gate.
	resp = postJSON(t, url, JobDescriptionRequest{Text: strings.Repeat("word ", 50)})
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, "sufficient", out.Status)
	assert.True(t, out.Accepted)
	assert.Equal(t, 50, out.WordCount)
}

func TestSelectTemplate(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	created := createSession(t, ts)
	url := ts.URL + "/sessions/" + created.SessionID + "/template"

	resp := postJSON(t, url, TemplateRequest{Template: "modern"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeSession(t, resp)
	assert.True(t, got.TemplateSelected)
	assert.Equal(t, "modern", got.Template)
}

func TestSelectTemplateUnknown(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	created := createSession(t, ts)

	resp := postJSON(t, ts.URL+"/sessions/"+created.SessionID+"/template", TemplateRequest{Template: "bogus"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTemplates(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	resp, err := http.Get(ts.URL + "/templates")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Templates []TemplateInfo `json:"templates"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Templates, 4)
}

func TestOptimizeNotReady(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	created := createSession(t, ts)

	resp := postJSON(t, ts.URL+"/sessions/"+created.SessionID+"/optimize", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out["error"], "no CV uploaded")
}

func TestArtifactNotAvailable(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	created := createSession(t, ts)

	resp, err := http.Get(ts.URL + "/sessions/" + created.SessionID + "/artifact")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResetSession(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	created := createSession(t, ts)
	uploadCV(t, ts, created.SessionID).Body.Close()

	resp := postJSON(t, ts.URL+"/sessions/"+created.SessionID+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeSession(t, resp)
	assert.False(t, got.CVUploaded)
	assert.Equal(t, "init", got.State)
	assert.Equal(t, created.SessionID, got.SessionID)
}

func TestDeleteSession(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	created := createSession(t, ts)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/sessions/"+created.SessionID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(ts.URL + "/sessions/" + created.SessionID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestCORSPreflights(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/sessions", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestJobAnalyticsEmpty(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	resp, err := http.Get(ts.URL + "/jobs/analytics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.EqualValues(t, 0, out["total_applications"])
}

func TestJobSearchRequiresRoles(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	resp := postJSON(t, ts.URL+"/jobs/search", JobSearchRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJobApplyRequiresListings(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	resp := postJSON(t, ts.URL+"/jobs/apply", JobApplyRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateUnknownApplication(t *testing.T) {
	ts := testServer(t, &fakeLLM{})
	data, _ := json.Marshal(ApplicationUpdateRequest{Status: "applied"})
	req, err := http.NewRequest(http.MethodPatch, ts.URL+"/jobs/applications/nope", bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
