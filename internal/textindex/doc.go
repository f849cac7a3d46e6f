// Package textindex implements a standard BM25 lexical index (k1=1.5,
// b=0.75) over plain-text documents keyed by string id.
package textindex
