package codeforces

import (
	"cfgym-backend/internal/pagecache"
	"cfgym-backend/lib/telemetry"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	fakeSessionCookie = "JSESSIONID"
	fakeCsrfToken     = "c0ffee"
	fakeHandle        = "tester"
	fakePassword      = "hunter2"
)

// fakeCodeforces emulates the parts of codeforces the client talks to.
type fakeCodeforces struct {
	t *testing.T

	statusPages int
	// 0 serves the embedded standings page
	standingsPages int
	delay       atomic.Int64
	omitCsrf    bool

	mu       sync.Mutex
	toggles  map[string]int
	requests map[string]int

	inflight    atomic.Int64
	maxInflight atomic.Int64
}

func newFakeCodeforces(t *testing.T) *fakeCodeforces {
	return &fakeCodeforces{
		t:           t,
		statusPages: 4,
		toggles:     map[string]int{},
		requests:    map[string]int{},
	}
}

func (f *fakeCodeforces) count(r *http.Request) {
	f.mu.Lock()
	f.requests[r.Method+" "+r.URL.Path]++
	f.mu.Unlock()
}

func (f *fakeCodeforces) requestCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[key]
}

func (f *fakeCodeforces) session(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(fakeSessionCookie)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

func (f *fakeCodeforces) track(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.count(r)
		current := f.inflight.Add(1)
		defer f.inflight.Add(-1)
		for {
			seen := f.maxInflight.Load()
			if current <= seen || f.maxInflight.CompareAndSwap(seen, current) {
				break
			}
		}
		if delay := time.Duration(f.delay.Load()); delay > 0 {
			time.Sleep(delay)
		}
		next(w, r)
	}
}

func (f *fakeCodeforces) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := f.session(r)
		if !ok || session != "logged-in" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func (f *fakeCodeforces) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /enter", f.track(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: fakeSessionCookie, Value: "anonymous", Path: "/"})
		if f.omitCsrf {
			fmt.Fprint(w, `<html><body><form id="enterForm"></form></body></html>`)
			return
		}
		fmt.Fprintf(w, `<html><body><span class="csrf-token" data-csrf="%s"></span><form id="enterForm"></form></body></html>`, fakeCsrfToken)
	}))

	mux.HandleFunc("POST /enter", f.track(func(w http.ResponseWriter, r *http.Request) {
		optOut, err := r.Cookie(optOutCookieName)
		require.NoError(f.t, err)
		require.Equal(f.t, optOutCookieValue, optOut.Value)

		session, ok := f.session(r)
		require.True(f.t, ok)
		require.Equal(f.t, "anonymous", session)

		require.NoError(f.t, r.ParseForm())
		require.Equal(f.t, "enter", r.PostForm.Get("action"))
		require.Equal(f.t, fakeCsrfToken, r.PostForm.Get("csrf_token"))

		if r.PostForm.Get("handleOrEmail") != fakeHandle || r.PostForm.Get("password") != fakePassword {
			fmt.Fprint(w, `<html><body><form id="enterForm"><span class="error">Invalid handle/email or password</span></form></body></html>`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: fakeSessionCookie, Value: "logged-in", Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	}))

	mux.HandleFunc("GET /{$}", f.track(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>welcome</body></html>`)
	}))

	mux.HandleFunc("GET /gym/{gymId}", f.track(f.authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("gymId") == "500" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(problemsPageTest)
	})))

	mux.HandleFunc("POST /gym/{gymId}/standings/page/{page}", f.track(f.authed(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(f.t, r.ParseForm())
		require.Equal(f.t, "toggleShowUnofficial", r.PostForm.Get("action"))
		if r.PostForm.Get("newShowUnofficialValue") == "true" {
			f.mu.Lock()
			f.toggles[r.PathValue("page")]++
			f.mu.Unlock()
		}
	})))

	mux.HandleFunc("GET /gym/{gymId}/standings/page/{page}", f.track(f.authed(func(w http.ResponseWriter, r *http.Request) {
		page := r.PathValue("page")

		// the unofficial view is only shown once per toggle
		f.mu.Lock()
		toggled := f.toggles[page] > 0
		if toggled {
			f.toggles[page]--
		}
		f.mu.Unlock()
		if !toggled {
			w.WriteHeader(http.StatusConflict)
			return
		}

		if page == "1" && f.standingsPages == 0 {
			w.Write(standingsPageTest)
			return
		}
		fmt.Fprint(w, standingsPage(page, f.standingsPages))
	})))

	mux.HandleFunc("GET /gym/{gymId}/status", f.track(f.authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("order") != "BY_JUDGED_DESC" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		pageIndex, err := strconv.Atoi(r.URL.Query().Get("pageIndex"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if pageIndex == 1 && f.statusPages == 4 {
			w.Write(statusPageTest)
			return
		}
		fmt.Fprint(w, statusPage(pageIndex, f.statusPages))
	})))

	return mux
}

func standingsPage(page string, pages int) string {
	var pagination strings.Builder
	for i := 1; i <= pages; i++ {
		fmt.Fprintf(&pagination, `<nobr><a href="/gym/1/standings/page/%d">page %d</a></nobr>`, i, i)
	}
	return fmt.Sprintf(`<html><body><div class="custom-links-pagination">%[2]s</div><table class="standings">
<tr><th>#</th><th>Who</th><th>=</th><th>Penalty</th><th><a>A</a></th></tr>
<tr participantid="%[1]s"><td>1%[1]s</td><td><a href="/profile/user%[1]s">user%[1]s</a></td><td>0</td><td></td><td></td></tr>
</table></body></html>`, page, pagination.String())
}

func statusPage(pageIndex, pages int) string {
	var pagination strings.Builder
	for i := 1; i <= pages; i++ {
		fmt.Fprintf(&pagination, `<span class="page-index">%d</span>`, i)
	}
	return fmt.Sprintf(`<html><body><table class="status-frame-datatable">
<tr><th>#</th><th>When</th><th>Who</th><th>Problem</th><th>Lang</th><th>Verdict</th><th>Time</th><th>Memory</th></tr>
<tr><td>%[1]d</td><td>Oct/1/2024 12:00</td><td><a href="/profile/user%[1]d">user%[1]d</a></td><td><a href="/gym/1/problem/B">B</a></td>
<td>Go</td><td>Wrong answer on test 1</td><td>0 ms</td><td>0 KB</td></tr>
</table>%[2]s</body></html>`, pageIndex, pagination.String())
}

func newTestClient(t *testing.T, fake *fakeCodeforces, opts Options) (*Client, *telemetry.Recorder) {
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	recorder := &telemetry.Recorder{}
	opts.BaseUrl = server.URL
	opts.Telemetry = recorder
	if opts.HandleOrEmail == "" {
		opts.HandleOrEmail = fakeHandle
	}
	if opts.Password == "" {
		opts.Password = fakePassword
	}

	client, err := Login(context.Background(), opts)
	if err != nil {
		return nil, recorder
	}
	return client, recorder
}

func TestLogin(t *testing.T) {
	fake := newFakeCodeforces(t)
	client, _ := newTestClient(t, fake, Options{})
	require.NotNil(t, client)

	require.Equal(t, 1, fake.requestCount("GET /enter"))
	require.Equal(t, 1, fake.requestCount("POST /enter"))

	problems, err := client.Problems(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, problems, 3)
}

func TestLoginRejected(t *testing.T) {
	fake := newFakeCodeforces(t)
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	recorder := &telemetry.Recorder{}
	_, err := Login(context.Background(), Options{
		BaseUrl:       server.URL,
		HandleOrEmail: fakeHandle,
		Password:      "wrong",
		Telemetry:     recorder,
	})

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, "credentials rejected", authErr.Reason)
	require.Len(t, recorder.Reports("broken"), 1)
	require.Equal(t, 0, fake.requestCount("GET /gym/1"))
}

func TestLoginMissingCsrf(t *testing.T) {
	fake := newFakeCodeforces(t)
	fake.omitCsrf = true
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	_, err := Login(context.Background(), Options{
		BaseUrl:       server.URL,
		HandleOrEmail: fakeHandle,
		Password:      fakePassword,
		Telemetry:     &telemetry.Recorder{},
	})

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, 0, fake.requestCount("POST /enter"))
}

func TestLoginUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := Login(context.Background(), Options{
		BaseUrl:   server.URL,
		Telemetry: &telemetry.Recorder{},
	})

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestStandings(t *testing.T) {
	fake := newFakeCodeforces(t)
	client, recorder := newTestClient(t, fake, Options{})
	require.NotNil(t, client)

	standings, err := client.Standings(context.Background(), 1)
	require.NoError(t, err)

	handles := make([]string, len(standings))
	for i, standing := range standings {
		handles[i] = standing.Handle
	}
	require.Equal(t, []string{"alice", "bob", "carol", "user2", "user3"}, handles)

	for page := 1; page <= 3; page++ {
		endpoint := fmt.Sprintf("/gym/1/standings/page/%d", page)
		require.Equal(t, 1, fake.requestCount("POST "+endpoint))
		require.Equal(t, 1, fake.requestCount("GET "+endpoint))
	}
	require.Empty(t, recorder.Reports("broken"))
}

func TestSubmissions(t *testing.T) {
	fake := newFakeCodeforces(t)
	client, _ := newTestClient(t, fake, Options{})
	require.NotNil(t, client)

	submissions, err := client.Submissions(context.Background(), 1)
	require.NoError(t, err)

	ids := make([]int64, len(submissions))
	for i, submission := range submissions {
		ids[i] = submission.Id
	}
	require.Equal(t, []int64{1004, 1003, 2, 3, 4}, ids)
	require.Equal(t, 4, fake.requestCount("GET /gym/1/status"))
}

func TestConcurrencyLimit(t *testing.T) {
	fake := newFakeCodeforces(t)
	fake.statusPages = 16
	fake.delay.Store(int64(20 * time.Millisecond))
	client, _ := newTestClient(t, fake, Options{Concurrency: 3})
	require.NotNil(t, client)

	submissions, err := client.Submissions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, submissions, 16)

	for i, submission := range submissions {
		require.Equal(t, int64(i+1), submission.Id)
	}
	require.LessOrEqual(t, fake.maxInflight.Load(), int64(3))
	require.Greater(t, fake.maxInflight.Load(), int64(1))
}

func TestStandingsConcurrencyLimit(t *testing.T) {
	fake := newFakeCodeforces(t)
	fake.standingsPages = 14
	fake.delay.Store(int64(20 * time.Millisecond))
	client, _ := newTestClient(t, fake, Options{})
	require.NotNil(t, client)

	standings, err := client.Standings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, standings, 14)

	for i, standing := range standings {
		require.Equal(t, fmt.Sprintf("user%d", i+1), standing.Handle)
	}
	for page := 1; page <= 14; page++ {
		require.Equal(t, 1, fake.requestCount(fmt.Sprintf("GET /gym/1/standings/page/%d", page)))
	}
	require.LessOrEqual(t, fake.maxInflight.Load(), int64(DefaultConcurrency))
	require.Greater(t, fake.maxInflight.Load(), int64(1))
}

func TestFetchError(t *testing.T) {
	fake := newFakeCodeforces(t)
	client, recorder := newTestClient(t, fake, Options{})
	require.NotNil(t, client)

	_, err := client.Problems(context.Background(), 500)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusInternalServerError, fetchErr.Status)
	require.Equal(t, "/gym/500", fetchErr.Url)
	require.Len(t, recorder.Reports("broken"), 1)
}

func TestFetchTimeout(t *testing.T) {
	fake := newFakeCodeforces(t)
	client, _ := newTestClient(t, fake, Options{Timeout: 50 * time.Millisecond})
	require.NotNil(t, client)

	fake.delay.Store(int64(200 * time.Millisecond))
	_, err := client.Problems(context.Background(), 1)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 0, fetchErr.Status)
}

func TestCachedPages(t *testing.T) {
	fake := newFakeCodeforces(t)
	cache := pagecache.NewMemory(0, 0)
	client, recorder := newTestClient(t, fake, Options{Cache: cache})
	require.NotNil(t, client)

	for i := 0; i < 2; i++ {
		_, err := client.Problems(context.Background(), 1)
		require.NoError(t, err)
		_, err = client.Standings(context.Background(), 1)
		require.NoError(t, err)
	}
	require.Equal(t, 1, fake.requestCount("GET /gym/1"))
	require.Equal(t, 1, fake.requestCount("GET /gym/1/standings/page/2"))

	hits := 0
	for _, report := range recorder.Reports("debug") {
		if strings.HasSuffix(report.Id, "cache hit") {
			hits++
		}
	}
	require.Equal(t, 4, hits)
}
