package flow

import (
	"github.com/dialvox/ivrflow/pkg/models"
)

// AddNode returns a new definition with the node appended. It fails
// with ErrDuplicateNodeID when the identifier is already taken, and in
// that case returns the input definition unchanged.
func AddNode(def *models.Definition, node *models.Node) (*models.Definition, error) {
	if def.HasNode(node.ID) {
		return def, NewNodeError("AddNode", node.ID, ErrDuplicateNodeID)
	}

	next := def.Clone()
	next.Nodes = append(next.Nodes, node.Clone())

	return next, nil
}

// AddEdge returns a new definition with the edge appended. It fails
// with ErrDuplicateEdgeID when the identifier is already taken and
// with ErrDanglingEndpoint when either endpoint does not resolve to a
// node in the definition.
func AddEdge(def *models.Definition, edge *models.Edge) (*models.Definition, error) {
	if def.EdgeByID(edge.ID) != nil {
		return def, NewEdgeError("AddEdge", edge.ID, ErrDuplicateEdgeID)
	}

	if !def.HasNode(edge.Source) || !def.HasNode(edge.Target) {
		return def, NewEdgeError("AddEdge", edge.ID, ErrDanglingEndpoint)
	}

	next := def.Clone()
	copied := *edge
	next.Edges = append(next.Edges, &copied)

	return next, nil
}

// SetStartNode returns a new definition whose start reference points at
// the given node. It fails with ErrUnknownNode when the node is absent
// and with ErrInvalidStartKind when the node is not a start node.
func SetStartNode(def *models.Definition, nodeID string) (*models.Definition, error) {
	node := def.NodeByID(nodeID)
	if node == nil {
		return def, NewNodeError("SetStartNode", nodeID, ErrUnknownNode)
	}

	if !node.IsStart() {
		return def, NewNodeError("SetStartNode", nodeID, ErrInvalidStartKind)
	}

	next := def.Clone()
	next.StartNode = nodeID

	return next, nil
}

// RemoveNode returns a new definition without the node and without
// every edge whose source or target is the node, so the result never
// contains dangling edges. A start reference to the removed node is
// cleared for the same reason. It fails with ErrUnknownNode when the
// node is absent.
func RemoveNode(def *models.Definition, nodeID string) (*models.Definition, error) {
	if !def.HasNode(nodeID) {
		return def, NewNodeError("RemoveNode", nodeID, ErrUnknownNode)
	}

	next := def.Clone()

	nodes := make([]*models.Node, 0, len(next.Nodes)-1)

	for _, node := range next.Nodes {
		if node.ID != nodeID {
			nodes = append(nodes, node)
		}
	}

	edges := make([]*models.Edge, 0, len(next.Edges))

	for _, edge := range next.Edges {
		if edge.Source != nodeID && edge.Target != nodeID {
			edges = append(edges, edge)
		}
	}

	next.Nodes = nodes
	next.Edges = edges

	if next.StartNode == nodeID {
		next.StartNode = ""
	}

	return next, nil
}
