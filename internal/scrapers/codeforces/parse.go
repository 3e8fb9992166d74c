package codeforces

import (
	"bytes"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

func newDocument(page string, contents []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(contents))
	if err != nil {
		return nil, parseErrorf(page, err, "read html")
	}
	return doc, nil
}

// parseOptionalInt parses an integer cell where empty text means 0.
func parseOptionalInt(page, column, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, parseErrorf(page, err, "%s is not a number", column)
	}
	return value, nil
}
