// Command genecrawler searches Polish genealogical databases for the people
// in a Heredis family-tree file and records deterministic matches in a local
// SQLite store.
package main
