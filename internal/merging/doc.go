// Package merging implements the three-way merge of append-only changelogs.
//
// It compares:
// 1. Base: the common ancestor changelog.
// 2. Incoming: one changelog per divergent branch.
//
// Entries are identified by their exact text. A branch may only add entries: when it
// lacks any entry the base has, the merge stops with a ConflictError and produces no
// output. Otherwise the union of all added entries is inserted into a copy of the base.
package merging
