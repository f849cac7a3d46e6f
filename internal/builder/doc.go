// Package builder implements the Graph Builder: it walks a source tree,
// parses each supported file with tree-sitter, extracts symbol and
// reference nodes, resolves edges against an export index, and produces a
// fresh Code Graph.
//
// Parse failures are fatal only to the file that triggered them. An
// embedding failure is logged and leaves that one symbol without a vector
// while the build continues; the configured embedder is not replaced by the
// no-op embedder, so later symbols are still sent to it.
package builder
