// Package codeforces scrapes gym contests off codeforces: it logs in, fetches
// the problems, standings and status pages and parses them into records.
package codeforces

import (
	"bytes"
	"cfgym-backend/internal/pagecache"
	"cfgym-backend/lib/telemetry"
	"cfgym-backend/lib/timezone"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_login = "client.login"
	report_client_fetch = "client.fetch"
	report_client_pages = "client.pages"
)

const (
	DefaultBaseUrl     = "https://codeforces.com"
	DefaultTimeout     = time.Second * 10
	DefaultConcurrency = 6
)

const (
	loginEndpoint      = "/enter"
	csrfTokenSelector  = "span.csrf-token"
	csrfTokenAttr      = "data-csrf"
	loginFormSelector  = "form#enterForm"
	optOutCookieName   = "__hs_opt_out"
	optOutCookieValue  = "no"
	browserUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	maxLoginRedirects  = 10
)

type Options struct {
	BaseUrl       string
	HandleOrEmail string
	Password      string
	// per request timeout, defaults to DefaultTimeout
	Timeout time.Duration
	// the timezone the origin renders timestamps in, defaults to timezone.DefaultOrigin
	Origin *time.Location
	// maximum amount of pages in flight, defaults to DefaultConcurrency
	Concurrency int
	// optional, consulted before any page is fetched
	Cache pagecache.Cache
	// optional, defaults to slog
	Telemetry telemetry.API
}

// Client is a logged in codeforces session, the only way to obtain one is
// through Login so every fetch is made with an authenticated cookie jar.
//
// A Client belongs to a single run, it should not be shared between
// independent runs.
type Client struct {
	baseUrl     *url.URL
	http        *resty.Client
	origin      *time.Location
	concurrency int
	cache       pagecache.Cache
	tel         telemetry.API
}

func newClient(opts Options) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Origin == nil {
		origin, err := timezone.Load("")
		if err != nil {
			return nil, err
		}
		opts.Origin = origin
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.NewSlogAPI()
	}
	tel := telemetry.NewScopedAPI("codeforces", opts.Telemetry)

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	jar.SetCookies(baseUrl, []*http.Cookie{{
		Name:  optOutCookieName,
		Value: optOutCookieValue,
		Path:  "/",
	}})

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	httpClient.SetHeader("user-agent", browserUserAgent)
	httpClient.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(maxLoginRedirects),
		resty.DomainCheckRedirectPolicy(baseUrl.Hostname()),
	)
	httpClient.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(httpClient, "scrapers/codeforces/http", tel)

	return &Client{
		baseUrl:     baseUrl,
		http:        httpClient,
		origin:      opts.Origin,
		concurrency: opts.Concurrency,
		cache:       opts.Cache,
		tel:         tel,
	}, nil
}

// Login creates a session and performs the login handshake, it must complete
// before anything else is fetched.
func Login(ctx context.Context, opts Options) (*Client, error) {
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	err = c.authenticate(ctx, opts.HandleOrEmail, opts.Password)
	if err != nil {
		c.tel.ReportBroken(report_client_login, err)
		return nil, err
	}
	return c, nil
}

func (c *Client) authenticate(ctx context.Context, handleOrEmail, password string) error {
	res, err := c.http.R().
		SetContext(ctx).
		Get(loginEndpoint)
	if err != nil {
		return &AuthError{
			Reason: "fetch login page",
			Err:    &FetchError{Url: loginEndpoint, Err: err},
		}
	}
	if !res.IsSuccess() {
		return &AuthError{
			Reason: "fetch login page",
			Err:    &FetchError{Url: loginEndpoint, Status: res.StatusCode()},
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return &AuthError{Reason: "parse login page", Err: err}
	}
	csrfToken := doc.Find(csrfTokenSelector).First().AttrOr(csrfTokenAttr, "")
	if csrfToken == "" {
		return &AuthError{Reason: "could not find csrf token"}
	}

	c.tel.ReportDebug("authenticating", handleOrEmail)

	res, err = c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"handleOrEmail": handleOrEmail,
			"action":        "enter",
			"password":      password,
			"csrf_token":    csrfToken,
		}).
		Post(loginEndpoint)
	if err != nil {
		return &AuthError{
			Reason: "login request",
			Err:    &FetchError{Url: loginEndpoint, Err: err},
		}
	}
	if !res.IsSuccess() {
		return &AuthError{Reason: fmt.Sprintf("login rejected with status %d", res.StatusCode())}
	}

	// a rejected login renders the login form again instead of redirecting
	doc, err = goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return &AuthError{Reason: "parse login response", Err: err}
	}
	if doc.Find(loginFormSelector).Length() > 0 {
		return &AuthError{Reason: "credentials rejected"}
	}

	c.tel.ReportDebug("authentication complete", handleOrEmail)
	return nil
}
