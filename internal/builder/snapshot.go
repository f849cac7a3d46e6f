package builder

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gocontext/retrieval/pkg/types"
)

// reference is an unresolved call/extends/implements reference extracted
// from one symbol's body: the caller node id and the textual name of the
// callee/ancestor, to be resolved against the export index once every
// file's snapshot has been collected.
type reference struct {
	fromID   string
	toName   string
	edgeType types.EdgeType
}

// snapshot is everything the Builder extracts from a single file: its file
// node, the symbol nodes it contains, the edges it can produce before
// cross-file resolution, and the unresolved references symbols made.
type snapshot struct {
	file       *types.Node
	symbols    []*types.Node
	edges      []*types.Edge
	references []reference
	digest     string
}

// digestOf returns the content digest used to detect unchanged files and
// to key the embedding cache.
func digestOf(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// parseFile parses source with the grammar for lang and extracts a
// snapshot. It never returns an error for malformed constructs it doesn't
// recognize — unmatched query captures are simply absent — but does return
// one if the source cannot be parsed at all.
func parseFile(path string, lang Language, source []byte) (*snapshot, error) {
	g := grammar(lang)
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(g); err != nil {
		return nil, err
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errParseFailed(path)
	}
	defer tree.Close()

	snap := &snapshot{
		digest: digestOf(source),
	}
	snap.file = &types.Node{
		ID:      types.FileID(path),
		Type:    types.NodeFile,
		Name:    path,
		Path:    path,
		Content: string(source),
		Attributes: types.NodeAttributes{
			Digest: snap.digest,
		},
	}

	query, qerr := tree_sitter.NewQuery(g, queryText[lang])
	if qerr != nil {
		return nil, qerr
	}
	defer query.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, tree.RootNode(), source)
	names := query.CaptureNames()

	// funcStack holds the function/method symbols whose byte range may still
	// enclose the current match; the last entry is the innermost one.
	type enclosingFunc struct {
		id  string
		end uint
	}
	var funcStack []enclosingFunc
	popEnded := func(pos uint) {
		for len(funcStack) > 0 && funcStack[len(funcStack)-1].end <= pos {
			funcStack = funcStack[:len(funcStack)-1]
		}
	}

	for {
		match := matches.Next()
		if match == nil {
			break
		}
		captured := map[string]*tree_sitter.Node{}
		for _, c := range match.Captures {
			c := c
			captured[names[c.Index]] = &c.Node
		}

		switch {
		case captured["function.def"] != nil && captured["function.name"] != nil:
			node := captured["function.def"]
			nameNode := captured["function.name"]
			sym := symbolFromCapture(path, source, types.NodeFunction, node, nameNode, "function")
			snap.symbols = append(snap.symbols, sym)
			popEnded(node.StartByte())
			funcStack = append(funcStack, enclosingFunc{id: sym.ID, end: node.EndByte()})
		case captured["class.def"] != nil && captured["class.name"] != nil:
			node := captured["class.def"]
			nameNode := captured["class.name"]
			sym := symbolFromCapture(path, source, types.NodeClass, node, nameNode, "class")
			snap.symbols = append(snap.symbols, sym)
		case captured["import.def"] != nil && captured["import.name"] != nil:
			node := captured["import.def"]
			nameNode := captured["import.name"]
			importPath := strings.Trim(textOf(source, nameNode), `"'`)
			sym := &types.Node{
				ID:        types.NodeID(path, types.NodeImport, importPath, int(node.StartPosition().Row)+1, int(node.EndPosition().Row)+1, "import"),
				Type:      types.NodeImport,
				Name:      importPath,
				Path:      path,
				Content:   textOf(source, node),
				StartLine: int(node.StartPosition().Row) + 1,
				EndLine:   int(node.EndPosition().Row) + 1,
			}
			snap.symbols = append(snap.symbols, sym)
		case captured["call.ref"] != nil && captured["call.target"] != nil:
			popEnded(captured["call.ref"].StartByte())
			if len(funcStack) > 0 {
				snap.references = append(snap.references, reference{
					fromID: funcStack[len(funcStack)-1].id,
					toName: textOf(source, captured["call.target"]),
					edgeType: types.EdgeCalls,
				})
			}
		case captured["extends.ref"] != nil && captured["extends.target"] != nil:
			if len(snap.symbols) > 0 {
				snap.references = append(snap.references, reference{
					fromID: snap.symbols[len(snap.symbols)-1].ID,
					toName: textOf(source, captured["extends.target"]),
					edgeType: types.EdgeExtends,
				})
			}
		case captured["implements.ref"] != nil && captured["implements.target"] != nil:
			if len(snap.symbols) > 0 {
				snap.references = append(snap.references, reference{
					fromID: snap.symbols[len(snap.symbols)-1].ID,
					toName: textOf(source, captured["implements.target"]),
					edgeType: types.EdgeImplements,
				})
			}
		}
	}

	// File contains each symbol.
	for _, sym := range snap.symbols {
		snap.edges = append(snap.edges, &types.Edge{
			ID:     types.EdgeID(snap.file.ID, sym.ID, types.EdgeContains),
			FromID: snap.file.ID,
			ToID:   sym.ID,
			Type:   types.EdgeContains,
		})
	}

	return snap, nil
}

func symbolFromCapture(path string, source []byte, typ types.NodeType, defNode, nameNode *tree_sitter.Node, kind string) *types.Node {
	start := int(defNode.StartPosition().Row) + 1
	end := int(defNode.EndPosition().Row) + 1
	name := textOf(source, nameNode)
	return &types.Node{
		ID:        types.NodeID(path, typ, name, start, end, kind),
		Type:      typ,
		Name:      name,
		Path:      path,
		Content:   textOf(source, defNode),
		StartLine: start,
		EndLine:   end,
		Attributes: types.NodeAttributes{
			Exported:      isExported(defNode),
			Kind:          kind,
			ASTType:       string(defNode.GrammarName()),
			Signature:     firstLine(textOf(source, defNode)),
			Parameters:    extractParameters(defNode, source),
			Documentation: leadingComment(defNode, source),
		},
	}
}

// extractParameters reads the "parameters" field of a function-like node,
// splitting on commas at the top level. Returns nil for nodes with no
// parameter list (classes).
func extractParameters(defNode *tree_sitter.Node, source []byte) []string {
	params := defNode.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	raw := textOf(source, params)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// textOf returns the source slice a node covers.
func textOf(source []byte, n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// isExported walks up to the nearest statement ancestor and checks for an
// export-statement parent, matching the "any enclosing export-statement
// ancestor" rule for JS/TS; Python has no export keyword so every Python
// function or class definition, nested or not, is treated as exported.
func isExported(n *tree_sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		name := p.GrammarName()
		if name == "export_statement" {
			return true
		}
		if name == "module" || name == "program" {
			break
		}
	}
	return isPythonLike(n)
}

func isPythonLike(n *tree_sitter.Node) bool {
	// Python grammar nodes use snake_case kinds like function_definition;
	// every python def counts as exported by convention, at any nesting
	// depth (no access modifier concept).
	return n.GrammarName() == "function_definition" || n.GrammarName() == "class_definition"
}

// leadingComment returns the text of a comment node immediately preceding
// n, if any, trimmed of comment syntax.
func leadingComment(n *tree_sitter.Node, source []byte) string {
	prev := n.PrevSibling()
	if prev == nil || prev.GrammarName() != "comment" {
		return ""
	}
	text := textOf(source, prev)
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "#")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	return strings.TrimSpace(text)
}

type parseError struct{ path string }

func (e *parseError) Error() string { return "builder: parse failed for " + e.path }

func errParseFailed(path string) error { return &parseError{path: path} }
