package builder

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gocontext/retrieval/pkg/types"
)

// FileResult is the public view of a single file's parse: its file node,
// its symbol nodes, the contains edges it can produce before cross-file
// resolution runs, and its call/extends/implements references. No edge
// is resolved here: every reference is returned unresolved, by name.
type FileResult struct {
	File         *types.Node
	Symbols      []*types.Node
	ContainsEdges []*types.Edge
	References   []Reference
}

// Reference is the public view of an unresolved call/extends/implements
// reference, for the Graph Manager to resolve against a working copy of
// the base graph when recording a file modification.
type Reference struct {
	FromID string
	ToName string
	Type   types.EdgeType
}

// BuildFile parses a single file relative to root and fills in its
// embeddings, without attempting cross-file edge resolution.
func (b *Builder) BuildFile(ctx context.Context, root, relPath string) (*FileResult, error) {
	lang, ok := LanguageForPath(relPath)
	if !ok {
		return nil, errParseFailed(relPath)
	}
	source, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil, err
	}
	snap, err := parseFile(relPath, lang, source)
	if err != nil {
		return nil, err
	}
	b.acquireEmbeddings(ctx, snap)

	refs := make([]Reference, len(snap.references))
	for i, r := range snap.references {
		refs[i] = Reference{FromID: r.fromID, ToName: r.toName, Type: r.edgeType}
	}
	return &FileResult{
		File:          snap.file,
		Symbols:       snap.symbols,
		ContainsEdges: snap.edges,
		References:    refs,
	}, nil
}

// ResolveReferenceAgainst resolves a single reference's target id against
// index (a path#name -> nodeId export index) and the file's own symbols,
// returning ok=false when the reference cannot be resolved and should be
// dropped.
func ResolveReferenceAgainst(ref Reference, fileImports []string, fileSymbols []*types.Node, index map[string]string) (string, bool) {
	for _, sym := range fileSymbols {
		if sym.Name == ref.ToName && sym.ID != ref.FromID {
			return sym.ID, true
		}
	}
	for _, imp := range fileImports {
		if id, ok := index[imp+"#"+ref.ToName]; ok {
			return id, true
		}
	}
	return "", false
}

// ResolveFileImports exposes resolveFileImports for the Graph Manager to
// compute a file's import namespace without re-running the full builder.
func ResolveFileImports(root, relPath string, symbols []*types.Node) []string {
	snap := &snapshot{
		file:    &types.Node{Path: relPath},
		symbols: symbols,
	}
	return resolveFileImports(snap, root)
}
