package codeforces

import (
	"cfgym-backend/lib/htmlutil"
	"cfgym-backend/lib/timezone"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// the layout of a status page, columns are:
// submission id, when, who, problem, lang, verdict, time, memory
const (
	page_status = "status"

	statusTableSelector = "table.status-frame-datatable"
	statusIdColumn      = 0
	statusWhenColumn    = 1
	statusWhoColumn     = 2
	statusProblemColumn = 3
	statusLangColumn    = 4
	statusVerdictColumn = 5
	statusTimeColumn    = 6
	statusMemoryColumn  = 7
	statusColumns       = 8
	statusTimeLayout    = "Jan/2/2006 15:04"
	pageIndexSelector   = "span.page-index"

	statusFormatTimeSelector = "span.format-time"
)

// StatusPageCount returns the largest page index linked from a status page.
func StatusPageCount(contents []byte) (int, error) {
	doc, err := newDocument(page_status, contents)
	if err != nil {
		return 0, err
	}

	count := 1
	var countErr error
	doc.Find(pageIndexSelector).EachWithBreak(func(_ int, span *goquery.Selection) bool {
		index, err := strconv.Atoi(htmlutil.Text(span))
		if err != nil {
			countErr = parseErrorf(page_status, err, "invalid page index")
			return false
		}
		count = max(count, index)
		return true
	})
	if countErr != nil {
		return 0, countErr
	}
	return count, nil
}

// ParseStatus extracts the submissions of a status page, `origin` is the
// timezone the page renders its timestamps in.
func ParseStatus(contents []byte, origin *time.Location) ([]Submission, error) {
	doc, err := newDocument(page_status, contents)
	if err != nil {
		return nil, err
	}

	table := doc.Find(statusTableSelector).First()
	if table.Length() == 0 {
		return nil, parseErrorf(page_status, nil, "can't find submissions table")
	}

	rows := table.Find("tr")
	submissions := []Submission{}
	// first row is the header
	for i := 1; i < rows.Length(); i++ {
		cells := rows.Eq(i).ChildrenFiltered("td")
		// an empty status table has a single "No items" cell
		if cells.Length() == 1 {
			continue
		}
		submission, err := parseStatusRow(cells, origin)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

func parseDigits(column, text string) (int64, error) {
	value, err := strconv.ParseInt(htmlutil.Digits(text), 10, 64)
	if err != nil {
		return 0, parseErrorf(page_status, err, "%s has no number in %q", column, text)
	}
	return value, nil
}

// the timestamp lives in span.format-time, the cell may carry other markers
// like a timezone suffix next to it
func statusWhenText(cell *goquery.Selection) string {
	span := cell.Find(statusFormatTimeSelector).First()
	if span.Length() > 0 {
		return htmlutil.Text(span)
	}
	return htmlutil.Text(cell)
}

func parseStatusRow(cells *goquery.Selection, origin *time.Location) (Submission, error) {
	if cells.Length() < statusColumns {
		return Submission{}, parseErrorf(page_status, nil, "expected %d cells, got %d", statusColumns, cells.Length())
	}

	id, err := strconv.ParseInt(htmlutil.Text(cells.Eq(statusIdColumn)), 10, 64)
	if err != nil {
		return Submission{}, parseErrorf(page_status, err, "invalid submission id")
	}

	when, err := timezone.ParseIn(statusTimeLayout, statusWhenText(cells.Eq(statusWhenColumn)), origin)
	if err != nil {
		return Submission{}, parseErrorf(page_status, err, "invalid submission time of %d", id)
	}

	who := cells.Eq(statusWhoColumn)
	whoHref, ok := who.Find("a").First().Attr("href")
	if !ok {
		return Submission{}, parseErrorf(page_status, nil, "missing handle link of %d", id)
	}
	problemHref, ok := cells.Eq(statusProblemColumn).Find("a").First().Attr("href")
	if !ok {
		return Submission{}, parseErrorf(page_status, nil, "missing problem link of %d", id)
	}

	timeMs, err := parseDigits("time", htmlutil.Text(cells.Eq(statusTimeColumn)))
	if err != nil {
		return Submission{}, err
	}
	memoryKb, err := parseDigits("memory", htmlutil.Text(cells.Eq(statusMemoryColumn)))
	if err != nil {
		return Submission{}, err
	}

	return Submission{
		Id:                id,
		SubmissionTimeUtc: when.Unix(),
		Handle:            strings.ToLower(htmlutil.LastPathSegment(whoHref)),
		IsVirtual:         who.Find(virtualMarkerSelector).Length() > 0,
		ProblemIndex:      htmlutil.LastPathSegment(problemHref),
		Language:          htmlutil.Text(cells.Eq(statusLangColumn)),
		Verdict:           htmlutil.Text(cells.Eq(statusVerdictColumn)),
		TimeMs:            timeMs,
		MemoryKb:          memoryKb,
	}, nil
}
