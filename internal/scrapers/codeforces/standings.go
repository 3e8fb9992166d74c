package codeforces

import (
	"cfgym-backend/lib/htmlutil"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// the layout of a standings page, columns are:
// rank, handle, solved, penalty, problem 1, problem 2, ...
const (
	page_standings = "standings"

	standingsTableSelector   = "table.standings"
	standingsRowSelector     = "tr[participantid]"
	standingsFixedColumns    = 4
	standingsRankColumn      = 0
	standingsHandleColumn    = 1
	standingsSolvedColumn    = 2
	standingsPenaltyColumn   = 3
	virtualMarkerSelector    = "sup"
	acceptedMarkerSelector   = "span.cell-accepted"
	rejectedMarkerSelector   = "span.cell-rejected"
	contestTimeSelector      = "span.cell-time"
	acceptedSubmissionAttr   = "acceptedsubmissionid"
	paginationSelector       = "div.custom-links-pagination"
	paginationMarkerSelector = "nobr"
)

// StandingsPageCount counts the pagination markers of the first standings page.
func StandingsPageCount(contents []byte) (int, error) {
	doc, err := newDocument(page_standings, contents)
	if err != nil {
		return 0, err
	}
	pagination := doc.Find(paginationSelector).First()
	if pagination.Length() == 0 {
		return 1, nil
	}
	return max(pagination.Find(paginationMarkerSelector).Length(), 1), nil
}

// ParseStandings extracts every participant row of a standings page.
func ParseStandings(contents []byte) ([]Standing, error) {
	doc, err := newDocument(page_standings, contents)
	if err != nil {
		return nil, err
	}

	table := doc.Find(standingsTableSelector).First()
	if table.Length() == 0 {
		return nil, parseErrorf(page_standings, nil, "can't find standings table")
	}

	headers := table.Find("tr").First().ChildrenFiltered("th")
	problemsCount := headers.Length() - standingsFixedColumns
	if problemsCount < 0 {
		return nil, parseErrorf(page_standings, nil, "expected at least %d header cells, got %d", standingsFixedColumns, headers.Length())
	}
	indices := problemIndices(headers.Slice(standingsFixedColumns, headers.Length()))

	result := []Standing{}
	var rowErr error
	table.Find(standingsRowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		standing, err := parseStandingRow(row, indices)
		if err != nil {
			rowErr = err
			return false
		}
		result = append(result, standing)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return result, nil
}

// problemIndices reads the problem indices off the header, falling back to
// A, B, C, ... for headers without text.
func problemIndices(headers *goquery.Selection) []string {
	indices := make([]string, headers.Length())
	headers.Each(func(i int, th *goquery.Selection) {
		index := htmlutil.Text(th.Find("a").First())
		if index == "" {
			index = string(rune('A' + i))
		}
		indices[i] = index
	})
	return indices
}

func classifyParticipation(hasVirtualMarker bool, rankText string) ParticipationType {
	if hasVirtualMarker {
		return VIRTUAL
	}
	if rankText != "" {
		return IN_CONTEST
	}
	return AFTER_CONTEST
}

func parseStandingRow(row *goquery.Selection, indices []string) (Standing, error) {
	cells := row.ChildrenFiltered("td")
	if cells.Length() < standingsFixedColumns+len(indices) {
		return Standing{}, parseErrorf(
			page_standings, nil,
			"expected %d cells, got %d",
			standingsFixedColumns+len(indices), cells.Length(),
		)
	}

	handleCell := cells.Eq(standingsHandleColumn)
	href, ok := handleCell.Find("a").First().Attr("href")
	if !ok {
		return Standing{}, parseErrorf(page_standings, nil, "missing handle link")
	}
	handle := strings.ToLower(htmlutil.LastPathSegment(href))

	rankText := htmlutil.Text(cells.Eq(standingsRankColumn))
	rankValue, err := parseOptionalInt(page_standings, "rank", rankText)
	if err != nil {
		return Standing{}, err
	}
	solved, err := parseOptionalInt(page_standings, "solved", htmlutil.Text(cells.Eq(standingsSolvedColumn)))
	if err != nil {
		return Standing{}, err
	}
	penalty, err := parseOptionalInt(page_standings, "penalty", htmlutil.Text(cells.Eq(standingsPenaltyColumn)))
	if err != nil {
		return Standing{}, err
	}

	participation := classifyParticipation(
		handleCell.Find(virtualMarkerSelector).Length() > 0,
		rankText,
	)

	var rank *int
	if participation.Ranked() {
		rank = &rankValue
	}

	results := make([]ProblemResult, len(indices))
	for i, index := range indices {
		result, err := parseProblemCell(cells.Eq(standingsFixedColumns+i), index)
		if err != nil {
			return Standing{}, fmt.Errorf("%s: %w", handle, err)
		}
		results[i] = result
	}

	return Standing{
		Solved:            solved,
		Rank:              rank,
		Handle:            handle,
		Penalty:           penalty,
		ProblemResults:    results,
		ParticipationType: participation,
	}, nil
}

// decodeTries decodes the "+<n>" / "-<n>" marker of a problem cell. An accepted
// marker counts the wrong attempts before the accepted one, so the total is n+1
// (an empty n means the first try). A rejected marker counts the wrong attempts.
func decodeTries(marker string, accepted bool) (int, error) {
	marker = strings.TrimSpace(marker)
	if marker != "" {
		_, size := utf8.DecodeRuneInString(marker)
		marker = strings.TrimSpace(marker[size:])
	}
	if marker == "" {
		if accepted {
			return 1, nil
		}
		return 0, nil
	}

	n, err := strconv.Atoi(marker)
	if err != nil {
		return 0, parseErrorf(page_standings, err, "invalid tries marker")
	}
	if accepted {
		return n + 1, nil
	}
	return n, nil
}

// parseContestTime converts an "HH:MM" elapsed time into minutes.
func parseContestTime(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	hoursText, minutesText, ok := strings.Cut(text, ":")
	if !ok {
		return 0, parseErrorf(page_standings, nil, "invalid contest time %q", text)
	}
	hours, err := strconv.Atoi(hoursText)
	if err != nil {
		return 0, parseErrorf(page_standings, err, "invalid contest time %q", text)
	}
	minutes, err := strconv.Atoi(minutesText)
	if err != nil {
		return 0, parseErrorf(page_standings, err, "invalid contest time %q", text)
	}
	return hours*60 + minutes, nil
}

func parseProblemCell(cell *goquery.Selection, index string) (ProblemResult, error) {
	accepted := cell.Find(acceptedMarkerSelector).First()
	if accepted.Length() > 0 {
		idText, _ := cell.Attr(acceptedSubmissionAttr)
		submissionId, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
		if err != nil {
			return ProblemResult{}, parseErrorf(page_standings, err, "invalid accepted submission id on problem %s", index)
		}
		minutes, err := parseContestTime(htmlutil.Text(cell.Find(contestTimeSelector).First()))
		if err != nil {
			return ProblemResult{}, err
		}
		tries, err := decodeTries(htmlutil.Text(accepted), true)
		if err != nil {
			return ProblemResult{}, err
		}
		return ProblemResult{
			Tries:                    tries,
			SubmissionId:             &submissionId,
			SubmissionContestMinutes: &minutes,
			IsAccepted:               true,
			Index:                    index,
		}, nil
	}

	tries := 0
	rejected := cell.Find(rejectedMarkerSelector).First()
	if rejected.Length() > 0 {
		var err error
		tries, err = decodeTries(htmlutil.Text(rejected), false)
		if err != nil {
			return ProblemResult{}, err
		}
	}
	return ProblemResult{
		Tries: tries,
		Index: index,
	}, nil
}
