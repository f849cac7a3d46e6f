package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeType is the kind of unit a Node represents in the code graph.
type NodeType string

const (
	NodeFile     NodeType = "file"
	NodeFunction NodeType = "function"
	NodeClass    NodeType = "class"
	NodeImport   NodeType = "import"
)

// NodeAttributes is the typed attribute bag carried by every Node. Fields
// are optional and populated according to NodeType: a file node leaves most
// of these zero, a function/class node fills in Signature/Parameters/
// ReturnType/Documentation, and so on.
type NodeAttributes struct {
	Exported      bool
	Kind          string // language-specific AST kind, e.g. "arrow_function", "dataclass"
	ASTType       string
	ParentName    string
	ParentType    string
	Signature     string
	Parameters    []string
	ReturnType    string
	Documentation string
	EmbeddingText string
	Digest        string
}

// Node is a unit of the code graph: a file, function, class, or import.
// Its ID is a deterministic function of (path, type, name, line range,
// kind) so re-parsing unchanged content reproduces the same id.
type Node struct {
	ID         string
	Type       NodeType
	Name       string
	Path       string
	Content    string
	StartLine  int
	EndLine    int
	Embedding  []float32
	Attributes NodeAttributes
}

// NodeID computes the deterministic id for a node from its identifying
// fields. Re-parsing the same content with the same extraction logic must
// produce the same id, so nothing time- or pointer-derived may feed in.
func NodeID(path string, typ NodeType, name string, startLine, endLine int, kind string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%d\x00%s", path, typ, name, startLine, endLine, kind)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// FileID computes the deterministic id for a file node from its path alone.
func FileID(path string) string {
	return NodeID(path, NodeFile, path, 0, 0, "file")
}

// IsCallable reports whether the node's type can participate as the source
// of a calls/extends/implements edge.
func (n *Node) IsCallable() bool {
	return n.Type == NodeFunction || n.Type == NodeClass
}

// LineSpan returns the number of lines the node covers, minimum 1.
func (n *Node) LineSpan() int {
	span := n.EndLine - n.StartLine + 1
	if span < 1 {
		return 1
	}
	return span
}
