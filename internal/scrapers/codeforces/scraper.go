package codeforces

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Problems fetches and parses the problems of a gym.
func (c *Client) Problems(ctx context.Context, gymId int) ([]Problem, error) {
	c.tel.ReportDebug("retrieving contest problems page", gymId)

	page, err := c.GymPage(ctx, gymId)
	if err != nil {
		return nil, err
	}
	return ParseProblems(page)
}

// fetchPages fetches and parses pages [from, to] with at most c.concurrency
// pages in flight. Pages are self-contained, so they are parsed in whatever
// order they complete and concatenated in page order.
func fetchPages[T any](ctx context.Context, c *Client, from, to int, fetch func(ctx context.Context, page int) ([]T, error)) ([]T, error) {
	if to < from {
		return nil, nil
	}
	pages := make([][]T, to-from+1)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)
	for page := from; page <= to; page++ {
		group.Go(func() error {
			records, err := fetch(groupCtx, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			pages[page-from] = records
			return nil
		})
	}
	err := group.Wait()
	if err != nil {
		return nil, err
	}

	var result []T
	for _, records := range pages {
		result = append(result, records...)
	}
	return result, nil
}

// Standings fetches every standings page of a gym with unofficial
// participants shown.
func (c *Client) Standings(ctx context.Context, gymId int) ([]Standing, error) {
	first, err := c.StandingsPage(ctx, gymId, 1, true)
	if err != nil {
		return nil, err
	}
	pagesCount, err := StandingsPageCount(first)
	if err != nil {
		return nil, err
	}
	c.tel.ReportCount(report_client_pages, int64(pagesCount))

	result, err := ParseStandings(first)
	if err != nil {
		return nil, fmt.Errorf("page 1: %w", err)
	}

	rest, err := fetchPages(ctx, c, 2, pagesCount, func(ctx context.Context, page int) ([]Standing, error) {
		c.tel.ReportDebug("retrieving standings page", page, pagesCount)
		contents, err := c.StandingsPage(ctx, gymId, page, true)
		if err != nil {
			return nil, err
		}
		return ParseStandings(contents)
	})
	if err != nil {
		return nil, err
	}
	return append(result, rest...), nil
}

// Submissions fetches every status page of a gym.
func (c *Client) Submissions(ctx context.Context, gymId int) ([]Submission, error) {
	first, err := c.StatusPage(ctx, gymId, 1)
	if err != nil {
		return nil, err
	}
	pagesCount, err := StatusPageCount(first)
	if err != nil {
		return nil, err
	}
	c.tel.ReportCount(report_client_pages, int64(pagesCount))

	result, err := ParseStatus(first, c.origin)
	if err != nil {
		return nil, fmt.Errorf("page 1: %w", err)
	}

	rest, err := fetchPages(ctx, c, 2, pagesCount, func(ctx context.Context, page int) ([]Submission, error) {
		c.tel.ReportDebug("retrieving submissions page", page, pagesCount)
		contents, err := c.StatusPage(ctx, gymId, page)
		if err != nil {
			return nil, err
		}
		return ParseStatus(contents, c.origin)
	})
	if err != nil {
		return nil, err
	}
	return append(result, rest...), nil
}
