package geneteka

import (
	"strings"

	"golang.org/x/net/html"

	"genecrawler/internal/location"
	"genecrawler/internal/sources"
	"genecrawler/internal/textnorm"
)

// Birth and death tables carry the full ten-column layout. Marriage tables
// and older index pages are narrower; those rows keep only the leading
// year/act/name columns plus the raw text.
const fullRowCells = 10

func parseRow(row *html.Node, query categoryQuery, region location.Region) (sources.Candidate, bool) {
	cells := sources.RowCells(row)
	if len(cells) < 5 {
		return sources.Candidate{}, false
	}

	texts := make([]string, len(cells))
	for i, cell := range cells {
		texts[i] = sources.Text(cell)
	}

	candidate := sources.Candidate{
		Source:    sources.Geneteka,
		Kind:      query.kind,
		Act:       texts[1],
		GivenName: texts[2],
		Surname:   texts[3],
		Region:    regionPtr(region),
		Raw:       strings.Join(texts, " | "),
	}
	if year, ok := textnorm.ExtractYear(texts[0]); ok {
		candidate.Year = &year
	}

	if len(cells) >= fullRowCells {
		candidate.FatherGivenName = texts[4]
		candidate.MotherGivenName = texts[5]
		candidate.MotherSurname = texts[6]
		candidate.Parish = texts[7]
		candidate.Locality = texts[8]
		candidate.Link = scanLink(cells[len(cells)-1])
	} else {
		candidate.Parish = texts[4]
		candidate.Link = scanLink(cells[len(cells)-1])
	}

	if candidate.Year == nil && candidate.GivenName == "" && candidate.Surname == "" {
		return sources.Candidate{}, false
	}
	return candidate, true
}

// scanLink pulls the document-scan href out of a remarks cell. Geneteka marks
// scan anchors either with "skanoteka" link text or a target="doc" attribute.
func scanLink(cell *html.Node) string {
	for _, anchor := range sources.FindAll(cell, "a") {
		href := sources.Attr(anchor, "href")
		if href == "" || href == "#" {
			continue
		}
		text := strings.ToLower(sources.Text(anchor))
		if strings.Contains(text, "skanoteka") || sources.Attr(anchor, "target") == "doc" {
			return href
		}
	}
	return ""
}

// nextPageHref locates the pagination control for the result table. A missing
// or disabled control means the current page is the last one.
func nextPageHref(root *html.Node, tableID string) string {
	anchor := sources.FindByID(root, tableID+"_next")
	if anchor == nil || sources.HasClass(anchor, "disabled") {
		return ""
	}
	href := sources.Attr(anchor, "href")
	if href == "#" {
		return ""
	}
	return href
}

func regionPtr(region location.Region) *location.Region {
	return &region
}
