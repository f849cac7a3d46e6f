// Package retriever assembles a dependency-aware, budget-bounded context
// for one target file: it walks the code graph forward (what the target
// calls/imports) and backward (what calls/imports the target — the
// callers that would break on a signature change), ranks a related set by
// semantic and lexical similarity, packs everything under a token budget
// by priority, and formats the result into labelled sections.
package retriever
