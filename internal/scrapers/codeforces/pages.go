package codeforces

import (
	"cfgym-backend/internal/pagecache"
	"context"
	"fmt"
	"strconv"
)

func (c *Client) check(endpoint string, status int, err error) error {
	if err != nil {
		fetchErr := &FetchError{Url: endpoint, Err: err}
		c.tel.ReportBroken(report_client_fetch, fetchErr)
		return fetchErr
	}
	if status < 200 || status > 299 {
		fetchErr := &FetchError{Url: endpoint, Status: status}
		c.tel.ReportBroken(report_client_fetch, fetchErr)
		return fetchErr
	}
	return nil
}

// cached serves a page from the cache if there is one, otherwise it fetches
// the page and stores it. Cache failures never fail the fetch itself.
func (c *Client) cached(ctx context.Context, key pagecache.Key, fetch func() ([]byte, error)) ([]byte, error) {
	if c.cache != nil {
		page, hit, err := c.cache.Get(ctx, key)
		if err != nil {
			c.tel.ReportWarning(report_client_fetch, fmt.Errorf("cache get %s: %w", key, err))
		}
		if hit {
			c.tel.ReportDebug("cache hit", key.String())
			return page, nil
		}
	}

	page, err := fetch()
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		err = c.cache.Put(ctx, key, page)
		if err != nil {
			c.tel.ReportWarning(report_client_fetch, fmt.Errorf("cache put %s: %w", key, err))
		}
	}
	return page, nil
}

// GymPage fetches the gym root page, which contains the problems table.
func (c *Client) GymPage(ctx context.Context, gymId int) ([]byte, error) {
	endpoint := fmt.Sprintf("/gym/%d", gymId)
	key := pagecache.Key{GymId: gymId, Kind: pagecache.KIND_GYM}

	return c.cached(ctx, key, func() ([]byte, error) {
		res, err := c.http.R().
			SetContext(ctx).
			Get(endpoint)
		if err != nil {
			return nil, c.check(endpoint, 0, err)
		}
		err = c.check(endpoint, res.StatusCode(), nil)
		if err != nil {
			return nil, err
		}
		return res.Body(), nil
	})
}

// StandingsPage fetches a page of the standings. Whether or not unofficial
// participants are shown is a session setting that does not stick, so it is
// toggled right before every fetch.
func (c *Client) StandingsPage(ctx context.Context, gymId, page int, showUnofficial bool) ([]byte, error) {
	endpoint := fmt.Sprintf("/gym/%d/standings/page/%d", gymId, page)

	fetch := func() ([]byte, error) {
		res, err := c.http.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"newShowUnofficialValue": strconv.FormatBool(showUnofficial),
				"action":                 "toggleShowUnofficial",
			}).
			Post(endpoint)
		if err != nil {
			return nil, c.check(endpoint, 0, err)
		}
		err = c.check(endpoint, res.StatusCode(), nil)
		if err != nil {
			return nil, err
		}

		res, err = c.http.R().
			SetContext(ctx).
			Get(endpoint)
		if err != nil {
			return nil, c.check(endpoint, 0, err)
		}
		err = c.check(endpoint, res.StatusCode(), nil)
		if err != nil {
			return nil, err
		}
		return res.Body(), nil
	}

	// only the unofficial view is what the rest of the pipeline consumes
	if !showUnofficial {
		return fetch()
	}
	key := pagecache.Key{GymId: gymId, Kind: pagecache.KIND_STANDINGS, Page: page}
	return c.cached(ctx, key, fetch)
}

// StatusPage fetches a page of submissions, always ordered by most recently
// judged first.
func (c *Client) StatusPage(ctx context.Context, gymId, pageIndex int) ([]byte, error) {
	endpoint := fmt.Sprintf("/gym/%d/status", gymId)
	key := pagecache.Key{GymId: gymId, Kind: pagecache.KIND_STATUS, Page: pageIndex}

	return c.cached(ctx, key, func() ([]byte, error) {
		res, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"pageIndex": strconv.Itoa(pageIndex),
				"order":     "BY_JUDGED_DESC",
			}).
			Get(endpoint)
		if err != nil {
			return nil, c.check(endpoint, 0, err)
		}
		err = c.check(endpoint, res.StatusCode(), nil)
		if err != nil {
			return nil, err
		}
		return res.Body(), nil
	})
}
