package sources

// PageState is the pagination state machine's answer after each parsed page.
type PageState int

const (
	// PageHasMore means another page should be requested.
	PageHasMore PageState = iota
	// PageDone means retrieval stops.
	PageDone
)

// Pager drives paginated retrieval for one search. The page counter starts
// at 1. After each parsed page the controller reports what it saw and the
// pager answers whether to continue; the termination conditions are checked
// in a fixed order: empty page, no next-page affordance, page limit reached.
type Pager struct {
	maxPages  int
	page      int
	truncated bool
}

// NewPager creates a pager. maxPages of zero means unlimited.
func NewPager(maxPages int) *Pager {
	return &Pager{maxPages: maxPages, page: 1}
}

// Page returns the current page number.
func (p *Pager) Page() int {
	return p.page
}

// Advance evaluates the termination conditions for the page just parsed.
// When it returns PageHasMore the page counter has moved to the next page.
func (p *Pager) Advance(recordCount int, hasNext bool) PageState {
	if recordCount == 0 {
		return PageDone
	}
	if !hasNext {
		return PageDone
	}
	if p.maxPages > 0 && p.page >= p.maxPages {
		p.truncated = true
		return PageDone
	}
	p.page++
	return PageHasMore
}

// Truncated reports whether the page limit cut retrieval short while more
// results were available.
func (p *Pager) Truncated() bool {
	return p.truncated
}
