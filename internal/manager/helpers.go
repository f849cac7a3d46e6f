package manager

import (
	"encoding/json"

	"github.com/gocontext/retrieval/pkg/types"
)

func edgeFor(fromID, toID string, typ types.EdgeType) *types.Edge {
	return &types.Edge{
		ID:     types.EdgeID(fromID, toID, typ),
		FromID: fromID,
		ToID:   toID,
		Type:   typ,
	}
}

func jsonMarshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
