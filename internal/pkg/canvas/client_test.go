package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()

	opts = append([]Option{WithRetryPolicy(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})}, opts...)
	c, err := NewClient(srv.URL, "secret", opts...)
	require.NoError(t, err)

	return c
}

// countingGate records acquisitions and releases
type countingGate struct {
	mu       sync.Mutex
	acquired int
	released int
	events   []string
}

func (g *countingGate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acquired++
	g.events = append(g.events, "acquire")
	return nil
}

func (g *countingGate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released++
	g.events = append(g.events, "release")
}

func (g *countingGate) history() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.events...)
}

func records(from, to int) []record {
	out := []record{}
	for i := from; i <= to; i++ {
		out = append(out, record{ID: int64(i), Name: fmt.Sprintf("r%d", i)})
	}
	return out
}

func pagedHandler(t *testing.T) http.HandlerFunc {
	pages := [][]record{records(1, 2), records(3, 4), records(5, 5)}

	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		if r.URL.Path == "/api/v1/all" {
			json.NewEncoder(w).Encode(records(1, 5))
			return
		}

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}

		link := func(n int) string {
			return fmt.Sprintf("http://%s/api/v1/paged?page=%d&per_page=2", r.Host, n)
		}

		header := fmt.Sprintf(`<%s>; rel="current",<%s>; rel="first",<%s>; rel="last"`, link(page), link(1), link(len(pages)))
		if page < len(pages) {
			header += fmt.Sprintf(`,<%s>; rel="next"`, link(page+1))
		}
		w.Header().Set("Link", header)

		json.NewEncoder(w).Encode(pages[page-1])
	}
}

func TestFetchAll_PaginationEqualsUnpaginated(t *testing.T) {
	srv := httptest.NewServer(pagedHandler(t))
	defer srv.Close()

	c := newTestClient(t, srv)

	paged, err := FetchAll[record](context.Background(), c, "/api/v1/paged")
	require.NoError(t, err)

	all, err := FetchAll[record](context.Background(), c, "/api/v1/all")
	require.NoError(t, err)

	assert.Equal(t, records(1, 5), paged)
	assert.Equal(t, all, paged)
}

func TestFetchAllJSON_DumpsEveryPage(t *testing.T) {
	srv := httptest.NewServer(pagedHandler(t))
	defer srv.Close()

	c := newTestClient(t, srv)

	paged, dump, err := FetchAllJSON[record](context.Background(), c, "/api/v1/paged")
	require.NoError(t, err)
	assert.Equal(t, records(1, 5), paged)

	expected, err := json.Marshal(records(1, 5))
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), string(dump))
	assert.True(t, strings.HasPrefix(string(dump), "[\n  {\n    \"id\": 1,"))
	assert.True(t, strings.HasSuffix(string(dump), "]\n"))
}

func TestFetchAllJSON_EmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	records, dump, err := FetchAllJSON[record](context.Background(), newTestClient(t, srv), "/api/v1/empty")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, "[]\n", string(dump))
}

func TestFetchOneJSON_KeepsUnknownFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":42,"name":"Ada","avatar_url":"https://example.com/a.png"}`))
	}))
	defer srv.Close()

	user, dump, err := FetchOneJSON[User](context.Background(), newTestClient(t, srv), "/api/v1/users/self")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "{\n  \"id\": 42,\n  \"name\": \"Ada\",\n  \"avatar_url\": \"https://example.com/a.png\"\n}\n", string(dump))
}

func TestFetchAll_RetriesWithinCeiling(t *testing.T) {
	for failures := 0; failures <= 3; failures++ {
		failures := failures
		t.Run(fmt.Sprintf("failures-%d", failures), func(t *testing.T) {
			var calls atomic.Int64
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) <= int64(failures) {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				json.NewEncoder(w).Encode(records(1, 2))
			}))
			defer srv.Close()

			gate := &countingGate{}
			c := newTestClient(t, srv, WithGate(gate))

			got, err := FetchAll[record](context.Background(), c, "/api/v1/flaky")
			if failures < 3 {
				require.NoError(t, err)
				assert.Equal(t, records(1, 2), got)
				assert.Equal(t, int64(failures+1), calls.Load())
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrRetriesExceeded)
				kind, _ := KindOf(err)
				assert.Equal(t, KindTransientNetwork, kind)
				assert.Equal(t, int64(3), calls.Load())
			}

			assert.Equal(t, gate.acquired, gate.released)
			assert.Equal(t, int(calls.Load()), gate.acquired)
		})
	}
}

func TestFetchAll_ForbiddenIsRetriedThenPermissionDenied(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := FetchAll[record](context.Background(), newTestClient(t, srv), "/api/v1/locked")

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindPermissionDenied, kind)
	assert.Equal(t, int64(3), calls.Load())
	assert.True(t, IsSkippable(err))
}

func TestFetchAll_TerminalStatusIsNotRetried(t *testing.T) {
	for status, kind := range map[int]Kind{
		http.StatusNotFound:     KindNotFound,
		http.StatusUnauthorized: KindPermissionDenied,
		http.StatusBadRequest:   KindRemote,
	} {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(status)
		}))

		_, err := FetchAll[record](context.Background(), newTestClient(t, srv), "/api/v1/missing")
		srv.Close()

		got, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, kind, got)
		assert.Equal(t, int64(1), calls.Load())
	}
}

func TestFetchAll_ErrorPayloadWith200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"unauthorized","errors":[{"message":"user not authorized to perform that action"}]}`))
	}))
	defer srv.Close()

	_, err := FetchAll[record](context.Background(), newTestClient(t, srv), "/api/v1/tab")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindPermissionDenied, apiErr.Kind)
	assert.Contains(t, apiErr.URL, "/api/v1/tab")
}

func TestFetchAll_AddsPerPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		assert.Equal(t, "term", r.URL.Query().Get("include[]"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	got, err := FetchAll[record](context.Background(), newTestClient(t, srv, WithPerPage(50)), "/api/v1/x?include[]=term")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNextPage(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		current string
		want    string
	}{
		{"no header", "", "a", ""},
		{"next", `<b>; rel="next", <a>; rel="current", <c>; rel="last"`, "a", "b"},
		{"current is last", `<b>; rel="next", <c>; rel="current", <c>; rel="last"`, "c", ""},
		{"no next", `<a>; rel="current", <a>; rel="last"`, "a", ""},
		{"self loop", `<a>; rel="next"`, "a", ""},
	}

	for _, tt := range tests {
		if got := nextPage(tt.header, tt.current); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestFetchOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/self", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "canvas-downloader/")
		w.Write([]byte(`{"id":42,"name":"Ada"}`))
	}))
	defer srv.Close()

	user, err := newTestClient(t, srv).Self(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 42, Name: "Ada"}, user)
}

func TestCourses_KeepsEnrolledOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":1,"name":"Algebra","course_code":"MA101","enrollment_term_id":5,"enrollments":[{"type":"student"}]},
			{"id":2,"name":"Ghost","course_code":"GH000","enrollment_term_id":5,"enrollments":[]},
			{"id":3,"name":"Physics","course_code":"PH101","enrollment_term_id":6,"term":{"id":6,"name":"Spring"},"enrollments":[{"type":"student"}]}
		]`))
	}))
	defer srv.Close()

	courses, err := newTestClient(t, srv).Courses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "MA101", courses[0].CourseCode)
	assert.Equal(t, "Spring", courses[1].Term.Name)
}

func TestOpen(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/1/download":
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("content"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	gate := &countingGate{}
	c := newTestClient(t, srv, WithGate(gate))

	body, err := c.Open(context.Background(), srv.URL+"/files/1/download")
	require.NoError(t, err)

	// Failed attempts give their ticket back before the backoff, the
	// successful one keeps it for the body
	assert.Equal(t, []string{"acquire", "release", "acquire", "release", "acquire"}, gate.history())

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	require.NoError(t, body.Close())
	body.Close()
	assert.Equal(t, 3, gate.acquired)
	assert.Equal(t, 3, gate.released)

	_, err = c.Open(context.Background(), srv.URL+"/files/2/download")
	kind, _ := KindOf(err)
	assert.Equal(t, KindNotFound, kind)
	assert.Equal(t, gate.acquired, gate.released)
}

func TestOpen_StalledBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("abc"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	gate := &countingGate{}
	c := newTestClient(t, srv, WithGate(gate), WithTimeout(100*time.Millisecond))

	body, err := c.Open(context.Background(), srv.URL+"/files/1/download")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := io.ReadAll(body)
		done <- err
	}()

	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("read of a stalled body did not time out")
	}

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStalled)
	kind, _ := KindOf(err)
	assert.Equal(t, KindTransientNetwork, kind)

	body.Close()
	assert.Equal(t, 1, gate.released)
}

func TestOpen_StalledHeadersAreRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-r.Context().Done()
	}))
	defer srv.Close()

	gate := &countingGate{}
	c := newTestClient(t, srv, WithGate(gate), WithTimeout(50*time.Millisecond),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}))

	_, err := c.Open(context.Background(), srv.URL+"/files/1/download")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStalled)
	assert.ErrorIs(t, err, ErrRetriesExceeded)
	kind, _ := KindOf(err)
	assert.Equal(t, KindTransientNetwork, kind)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, 2, gate.acquired)
	assert.Equal(t, 2, gate.released)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient("not a url", "token")
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	c, err := NewClient("https://canvas.example.edu/", "token")
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu", c.BaseURL())
	assert.Equal(t, "https://canvas.example.edu/api/v1/users/self", c.Endpoint("/api/v1/users/self"))
	assert.Equal(t, "https://other.example/x", c.Endpoint("https://other.example/x"))
}

func TestFetchAll_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithRetryPolicy(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := FetchAll[record](ctx, c, "/api/v1/busy")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpen_TokenStaysOnCanvasHost(t *testing.T) {
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte("video"))
	}))
	defer cdn.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte("file"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	for url, want := range map[string]string{cdn.URL + "/v.mp4": "video", srv.URL + "/f.pdf": "file"} {
		body, err := c.Open(context.Background(), url)
		require.NoError(t, err)
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		require.NoError(t, body.Close())
		assert.Equal(t, want, string(data))
	}
}

func TestSessionToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login/session_token", r.URL.Path)
		assert.Equal(t, "https://canvas.example.edu/courses/1/external_tools/128", r.URL.Query().Get("return_to"))
		w.Write([]byte(`{"session_url":"https://canvas.example.edu/login/session_token?token=t","requires_terms_acceptance":false}`))
	}))
	defer srv.Close()

	token, err := newTestClient(t, srv).SessionToken(context.Background(), "https://canvas.example.edu/courses/1/external_tools/128")
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu/login/session_token?token=t", token.SessionURL)
}
