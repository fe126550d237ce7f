// Package geneteka searches geneteka.genealodzy.pl, the highest-volume
// Polish vital-records index.
//
// Geneteka scopes every query to one voivodeship and one record category
// (births, marriages, deaths), so a single person search fans out across the
// relevant category/region combinations. Results arrive as paginated HTML
// tables; this searcher follows the next-page affordance until the page limit
// or the natural end of results, and is the only source that honors the
// recent-records-only mode and the page-limit policy.
package geneteka
