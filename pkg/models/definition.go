package models

// Definition is the editable body of a flow version: the node and edge
// sets plus the designated start node. StartNode holds the ID of the
// node where calls enter the flow, or the empty string while the
// author has not picked one yet.
type Definition struct {
	Nodes     []*Node `json:"nodes"`
	Edges     []*Edge `json:"edges"`
	StartNode string  `json:"start_node,omitempty"`
}

// NewDefinition returns an empty definition with allocated node and
// edge slices so it marshals as empty arrays rather than null.
func NewDefinition() *Definition {
	return &Definition{
		Nodes: []*Node{},
		Edges: []*Edge{},
	}
}

// NodeByID returns the node with the given ID, or nil when absent.
func (d *Definition) NodeByID(id string) *Node {
	for _, node := range d.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// HasNode reports whether a node with the given ID exists.
func (d *Definition) HasNode(id string) bool {
	return d.NodeByID(id) != nil
}

// EdgeByID returns the edge with the given ID, or nil when absent.
func (d *Definition) EdgeByID(id string) *Edge {
	for _, edge := range d.Edges {
		if edge.ID == id {
			return edge
		}
	}

	return nil
}

// Clone returns a deep copy of the definition. Nodes, edges and every
// nested config value are copied, so mutating the clone never leaks
// into the original and vice versa.
func (d *Definition) Clone() *Definition {
	clone := &Definition{
		Nodes:     make([]*Node, len(d.Nodes)),
		Edges:     make([]*Edge, len(d.Edges)),
		StartNode: d.StartNode,
	}

	for i, node := range d.Nodes {
		clone.Nodes[i] = node.Clone()
	}

	for i, edge := range d.Edges {
		copied := *edge
		clone.Edges[i] = &copied
	}

	return clone
}

// Clone returns a deep copy of the node, including its config map.
func (n *Node) Clone() *Node {
	copied := *n
	copied.Config = copyConfig(n.Config)

	return &copied
}

func copyConfig(config map[string]any) map[string]any {
	if config == nil {
		return nil
	}

	copied := make(map[string]any, len(config))
	for key, value := range config {
		copied[key] = copyValue(value)
	}

	return copied
}

func copyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(typed))
		for key, item := range typed {
			copied[key] = copyValue(item)
		}

		return copied
	case []any:
		copied := make([]any, len(typed))
		for i, item := range typed {
			copied[i] = copyValue(item)
		}

		return copied
	default:
		return value
	}
}
