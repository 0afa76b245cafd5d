package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "hello")
	assert.Contains(t, result.ContentType, "text/html")
}

func TestURL_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "403")
	require.NotNil(t, result)
	assert.Equal(t, http.StatusForbidden, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, bad := range []string{"", "not-a-url", "://missing-scheme"} {
		_, err := URL(context.Background(), bad, nil)
		var fetchErr *Error
		require.ErrorAs(t, err, &fetchErr, "input %q", bad)
		assert.Equal(t, "invalid URL", fetchErr.Message)
	}
}

func TestExtractMainText(t *testing.T) {
	html := `<html><body>
		<nav>menu</nav>
		<div class="job-description">
			<p>Build Go services.</p>
			<p>Ship weekly.</p>
		</div>
		<footer>legal</footer>
	</body></html>`

	text, err := ExtractMainText(html, JobPostingSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Build Go services.")
	assert.Contains(t, text, "Ship weekly.")
	assert.NotContains(t, text, "menu")
	assert.NotContains(t, text, "legal")
}

func TestExtractMainText_FallsBackToBody(t *testing.T) {
	text, err := ExtractMainText("<html><body><p>plain page</p></body></html>", JobPostingSelectors())
	require.NoError(t, err)
	assert.Equal(t, "plain page", text)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("   "))
	assert.True(t, ShouldUseBrowser("tiny shell page"))

	long := make([]byte, MinContentLength)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}
