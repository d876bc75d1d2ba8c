package models

// NodeKind identifies what a node does when a call reaches it.
type NodeKind string

const (
	NodeKindStart         NodeKind = "start"
	NodeKindPlayAudio     NodeKind = "play-audio"
	NodeKindCollectDigits NodeKind = "collect-digits"
	NodeKindTransfer      NodeKind = "transfer"
	NodeKindHangUp        NodeKind = "hang-up"
	NodeKindBranch        NodeKind = "branch"
	NodeKindVoicemail     NodeKind = "voicemail"
)

// NodeKinds returns every node kind the builder understands.
func NodeKinds() []NodeKind {
	return []NodeKind{
		NodeKindStart,
		NodeKindPlayAudio,
		NodeKindCollectDigits,
		NodeKindTransfer,
		NodeKindHangUp,
		NodeKindBranch,
		NodeKindVoicemail,
	}
}

// IsKnownKind reports whether the kind is part of the fixed enumeration.
func IsKnownKind(kind NodeKind) bool {
	switch kind {
	case NodeKindStart, NodeKindPlayAudio, NodeKindCollectDigits,
		NodeKindTransfer, NodeKindHangUp, NodeKindBranch, NodeKindVoicemail:
		return true
	default:
		return false
	}
}

// Node is a single step in a call flow graph. Config holds the
// kind-specific settings, for example the audio file for a play-audio
// node or the destination extension for a transfer node.
type Node struct {
	ID        string         `json:"id" validate:"required"`
	Kind      NodeKind       `json:"kind" validate:"required"`
	Name      string         `json:"name,omitempty"`
	Config    map[string]any `json:"config,omitempty"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// IsStart reports whether the node is a start node.
func (n *Node) IsStart() bool {
	return n.Kind == NodeKindStart
}

// Edge is a directed connection between two nodes. Condition carries
// the branch label for edges leaving branch or collect-digits nodes,
// for example the digit pressed.
type Edge struct {
	ID        string `json:"id" validate:"required"`
	Source    string `json:"source" validate:"required"`
	Target    string `json:"target" validate:"required"`
	Condition string `json:"condition,omitempty"`
}
