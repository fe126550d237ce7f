// Package fetch is the transport boundary between the crawl controllers and
// the external genealogical services.
//
// Controllers build structured requests (endpoint plus form values) and get
// back one page of raw content; everything about queries and result parsing
// stays on the controller side, so the transport remains a dumb page fetch
// that tests can stub with canned HTML.
package fetch
