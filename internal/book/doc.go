// Package book holds the per-symbol bid and offer ladders built from
// market-data snapshots.
//
// Each snapshot replaces both ladders of its symbol wholesale; there is no
// incremental merge. Bids are kept best (highest) first, offers best (lowest)
// first. Readers always receive copies.
package book
