package codeforces

import (
	"cfgym-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// the layout of the problems table on the gym root page, columns are:
// index, name, submit, submission count, management
const (
	page_problems = "problems"

	problemsTableSelector = "table.problems"
	problemsIndexColumn   = 0
	problemsNameColumn    = 1
	problemsFullRowCells  = 5
	problemsLinksColumn   = 4
	// the original problem link is the last of exactly this many links
	problemsOriginalLinks = 3
)

// ParseProblems extracts the problems table of a gym root page.
func ParseProblems(contents []byte) ([]Problem, error) {
	doc, err := newDocument(page_problems, contents)
	if err != nil {
		return nil, err
	}

	table := doc.Find(problemsTableSelector).First()
	if table.Length() == 0 {
		return nil, parseErrorf(page_problems, nil, "can't find problems table")
	}

	rows := table.Find("tr")
	problems := []Problem{}
	// first row is the header, the last row is a footer
	for i := 1; i < rows.Length()-1; i++ {
		problem, err := parseProblemRow(rows.Eq(i))
		if err != nil {
			return nil, err
		}
		problems = append(problems, problem)
	}
	return problems, nil
}

func parseProblemRow(row *goquery.Selection) (Problem, error) {
	cells := row.ChildrenFiltered("td")
	if cells.Length() <= problemsNameColumn {
		return Problem{}, parseErrorf(page_problems, nil, "expected at least %d cells, got %d", problemsNameColumn+1, cells.Length())
	}

	index := htmlutil.Text(cells.Eq(problemsIndexColumn).Find("a").First())
	if index == "" {
		return Problem{}, parseErrorf(page_problems, nil, "missing problem index")
	}

	nameLink := cells.Eq(problemsNameColumn).Find("a").First()
	name := htmlutil.OwnText(nameLink)
	if name == "" {
		name = htmlutil.Text(nameLink)
	}
	if name == "" {
		return Problem{}, parseErrorf(page_problems, nil, "missing name of problem %s", index)
	}

	problem := Problem{
		Index:         index,
		InContestName: name,
	}

	if cells.Length() == problemsFullRowCells {
		links := cells.Eq(problemsLinksColumn).Find("a")
		if links.Length() == problemsOriginalLinks {
			href, ok := links.Eq(problemsOriginalLinks - 1).Attr("href")
			if ok {
				problem.OriginalProblemUrl = &href
			}
		}
	}

	return problem, nil
}
