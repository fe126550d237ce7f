// Package sources defines the crawl-controller contract shared by every
// external genealogical service and the plumbing those controllers have in
// common.
//
// Key pieces:
//   - Candidate, the raw record shape every searcher yields before match
//     evaluation.
//   - Searcher, the polymorphic search capability, and Registry, the ordered
//     set of enabled searchers the orchestrator iterates.
//   - Pager, the pagination state machine that decides when paginated
//     retrieval stops (empty page, no next-page affordance, page limit).
//   - Structured error markers plus the Wrap helper so the orchestrator can
//     tell transient fetch failures from configuration or storage problems.
//   - HTML scanning helpers shared by the per-source result parsers.
//
// One subpackage per service (geneteka, ptg, poznan, basia) implements
// Searcher with that service's query construction and page parsing.
package sources
