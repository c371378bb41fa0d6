package canvas

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

func newTestClient(t *testing.T, baseURL string, settings ...domain.CanvasSettings) *Client {
	t.Helper()
	s := domain.CanvasSettings{BaseURL: baseURL, Token: "test-token"}
	if len(settings) > 0 {
		s = settings[0]
		s.BaseURL = baseURL
	}
	c, err := NewClient(context.Background(), s,
		WithRateLimiter(NewRateLimiterWithRate(1000, 100)),
		WithRetryDelay(time.Millisecond),
	)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(context.Background(), domain.CanvasSettings{})
	assert.ErrorIs(t, err, ErrNoBaseURL)

	_, err = NewClient(context.Background(), domain.CanvasSettings{BaseURL: "not a url"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_SendsHeaders(t *testing.T) {
	var auth, accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		accept = r.Header.Get("Accept")
		fmt.Fprint(w, `{"id": 7}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.ValidateCredentials(context.Background()))

	assert.Equal(t, "Bearer test-token", auth)
	assert.Equal(t, AcceptHeader, accept)
}

func TestClient_SendsCookie(t *testing.T) {
	var cookie, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie = r.Header.Get("Cookie")
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, domain.CanvasSettings{Cookie: "canvas_session=abc"})
	var out map[string]any
	require.NoError(t, c.Get(context.Background(), "/api/v1/users/self", &out))

	assert.Equal(t, "canvas_session=abc", cookie)
	assert.Empty(t, auth)
}

func TestGetAll_FollowsNextLink(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/x?page=2>; rel="next", <%s/api/v1/x?page=2>; rel="last"`, srv.URL, srv.URL))
			fmt.Fprint(w, `[{"id": 1}, {"id": "2"}]`)
		case "2":
			fmt.Fprint(w, `[{"id": 3}]`)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := GetAll[apiModule](context.Background(), c, "/api/v1/x")

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, FlexString("1"), got[0].ID)
	assert.Equal(t, FlexString("2"), got[1].ID)
	assert.Equal(t, FlexString("3"), got[2].ID)
}

func TestGetAll_KeepsEarlierPagesOnFailure(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"errors":[{"message":"user not authorized to perform that action"}]}`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/x?page=2>; rel="next"`, srv.URL))
		fmt.Fprint(w, `[{"id": 1}]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := GetAll[apiModule](context.Background(), c, "/api/v1/x")

	assert.Len(t, got, 1)
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
	assert.Contains(t, err.Error(), "user not authorized")
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		kind   domain.IssueKind
	}{
		{"not found", http.StatusNotFound, `{"message":"missing"}`, IsNotFound, domain.IssueNotFound},
		{"forbidden", http.StatusForbidden, ``, IsForbidden, domain.IssueAccessDenied},
		{"unauthorized", http.StatusUnauthorized, ``, IsUnauthorized, domain.IssueAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			var out map[string]any
			err := newTestClient(t, srv.URL).Get(context.Background(), "/api/v1/x", &out)

			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.Equal(t, tt.kind, Classify(err))
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"id": 1}`)
	}))
	defer srv.Close()

	var out apiModule
	err := newTestClient(t, srv.URL).Get(context.Background(), "/api/v1/x", &out)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, FlexString("1"), out.ID)
}

func TestClient_RateLimitedGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set(HeaderRateRemaining, "0.0")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "403 Forbidden (Rate Limit Exceeded)")
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(t, srv.URL).Get(context.Background(), "/api/v1/x", &out)

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, domain.IssueRateLimited, Classify(err))
	assert.Equal(t, int32(MaxRetries+1), calls.Load())
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not": "an array"}`)
	}))
	defer srv.Close()

	_, err := GetAll[apiFile](context.Background(), newTestClient(t, srv.URL), "/api/v1/x")

	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, domain.IssueParse, Classify(err))
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GetAll[apiFile](ctx, newTestClient(t, srv.URL), "/api/v1/x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseNextLink(t *testing.T) {
	header := `<https://x/api/v1/c?page=1>; rel="current",<https://x/api/v1/c?page=2>; rel="next",<https://x/api/v1/c?page=9>; rel="last"`

	assert.Equal(t, "https://x/api/v1/c?page=2", ParseNextLink(header))
	assert.Equal(t, "https://x/api/v1/c?page=9", ParseAllLinks(header)["last"])
	assert.Empty(t, ParseNextLink(""))
	assert.Empty(t, ParseNextLink(`<https://x>; rel="last"`))
}

func TestRateLimiter_CheckRateLimit(t *testing.T) {
	r := NewRateLimiter()

	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "512.5")
	resp.Header.Set(HeaderRequestCost, "1.25")
	assert.NoError(t, r.CheckRateLimit(resp))
	assert.InDelta(t, 512.5, r.Remaining(), 0.001)
	assert.InDelta(t, 1.25, r.LastCost(), 0.001)

	forbidden := &http.Response{StatusCode: http.StatusForbidden, Header: http.Header{}}
	assert.NoError(t, r.CheckRateLimit(forbidden), "403 with quota left is a permission error")

	tooMany := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	tooMany.Header.Set(HeaderRetryAfter, "2")
	err := r.CheckRateLimit(tooMany)
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), rl.RetryAt, time.Second)

	assert.NoError(t, r.CheckRateLimit(nil))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiterWithRate(1000, 1)
	r.UpdateFromResponse(&http.Response{Header: http.Header{HeaderRateRemaining: []string{"1"}}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, r.Wait(ctx))
}

func TestClient_Open(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/1/download" {
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, "%PDF-1.4")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	body, mime, err := c.Open(context.Background(), "/files/1/download")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "application/pdf", mime)

	_, _, err = c.Open(context.Background(), "/files/2/download")
	assert.True(t, IsNotFound(err))
}

func TestClient_CachesSuccessfulResponses(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `[{"id": 1, "name": "HW1"}]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	first, err := GetAll[apiAssignment](ctx, c, coursePath("101", "assignments?per_page=100"))
	require.NoError(t, err)
	second, err := GetAll[apiAssignment](ctx, c, srv.URL+"/api/v1/courses/101/assignments?per_page=100")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "relative and absolute refs share the cached response")

	_, err = GetAll[apiAssignment](ctx, c, coursePath("101", "assignments?per_page=50"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	fresh := newTestClient(t, srv.URL)
	_, err = GetAll[apiAssignment](ctx, fresh, coursePath("101", "assignments?per_page=100"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "a new client starts empty")
}

func TestClient_DoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"id": 7}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var out map[string]any

	err := c.Get(context.Background(), "/api/v1/courses/101", &out)
	require.True(t, IsNotFound(err))

	require.NoError(t, c.Get(context.Background(), "/api/v1/courses/101", &out))
	assert.Equal(t, int32(2), calls.Load())
}
