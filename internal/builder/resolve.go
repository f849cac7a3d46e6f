package builder

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gocontext/retrieval/internal/graph"
	"github.com/gocontext/retrieval/pkg/types"
)

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// importCandidateExtensions and index file names tried when resolving a
// relative import with no extension.
var importCandidateExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".py"}

// resolveReferences resolves every snapshot's unresolved call/extends/
// implements references against the export index and upserts the
// resulting edges into g. Non-relative imports are not package-resolved
// (no package graph); relative imports are joined and probed against
// known extensions and index.<ext>.
func resolveReferences(g *graph.Graph, snapshots []*snapshot, exportIndex map[string]string, root string) {
	bySymbolName := buildLocalNameIndex(snapshots)

	for _, snap := range snapshots {
		if snap == nil {
			continue
		}
		imports := resolveFileImports(snap, root)

		for _, ref := range snap.references {
			targetID, ok := resolveReferenceTarget(snap, ref, bySymbolName, imports, exportIndex)
			if !ok {
				continue
			}
			if targetID == ref.fromID {
				continue
			}
			edge := &types.Edge{
				ID:     types.EdgeID(ref.fromID, targetID, ref.edgeType),
				FromID: ref.fromID,
				ToID:   targetID,
				Type:   ref.edgeType,
			}
			_ = g.AddEdge(edge) // endpoints are guaranteed present; exportIndex is built from g itself
		}
	}
}

// resolveReferenceTarget applies the spec's resolution order: (a) local
// symbol with the same name and a different id; (b) imported symbol
// placeholder derived from a resolved import target file; (c) a raw
// placeholder resolved via the global export index by name alone.
func resolveReferenceTarget(snap *snapshot, ref reference, bySymbolName map[string][]string, imports []string, exportIndex map[string]string) (string, bool) {
	for _, sym := range snap.symbols {
		if sym.Name == ref.toName && sym.ID != ref.fromID {
			return sym.ID, true
		}
	}

	for _, importPath := range imports {
		if id, ok := exportIndex[importPath+"#"+ref.toName]; ok {
			return id, true
		}
	}

	if ids, ok := bySymbolName[ref.toName]; ok && len(ids) == 1 {
		return ids[0], true
	}

	return "", false
}

// buildLocalNameIndex maps a symbol name to every node id that defines it,
// across all snapshots, used as the last-resort raw-placeholder lookup.
func buildLocalNameIndex(snapshots []*snapshot) map[string][]string {
	index := make(map[string][]string)
	for _, snap := range snapshots {
		if snap == nil {
			continue
		}
		for _, sym := range snap.symbols {
			if !sym.Attributes.Exported {
				continue
			}
			index[sym.Name] = append(index[sym.Name], sym.ID)
		}
	}
	return index
}

// resolveFileImports returns the set of file paths this snapshot's
// relative imports resolve to, for use as the namespace to probe the
// export index under.
func resolveFileImports(snap *snapshot, root string) []string {
	var out []string
	dir := filepath.Dir(snap.file.Path)
	for _, sym := range snap.symbols {
		if sym.Type != types.NodeImport {
			continue
		}
		if !strings.HasPrefix(sym.Name, "./") && !strings.HasPrefix(sym.Name, "../") {
			continue // non-relative import: no package graph
		}
		joined := filepath.ToSlash(filepath.Join(dir, sym.Name))
		if resolved, ok := probeImportPath(root, joined); ok {
			out = append(out, resolved)
		}
	}
	return out
}

// probeImportPath tries joined as-is, then with each known extension, then
// as a directory with an index file, returning the first path that exists
// relative to root.
func probeImportPath(root, joined string) (string, bool) {
	candidates := []string{joined}
	for _, ext := range importCandidateExtensions {
		candidates = append(candidates, joined+ext)
	}
	for _, ext := range importCandidateExtensions {
		candidates = append(candidates, path.Join(joined, "index"+ext))
	}
	for _, c := range candidates {
		if fileExists(filepath.Join(root, c)) {
			return c, true
		}
	}
	return "", false
}
