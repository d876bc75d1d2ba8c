package flow

import (
	"fmt"

	"github.com/dialvox/ivrflow/pkg/models"
)

// ValidationSeverity indicates whether an issue is an error or warning.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// Issue codes reported by Validate. Hard errors block saving; warnings
// describe definitions that save fine but cannot execute yet.
const (
	CodeDuplicateNodeID  = "duplicate_node_id"
	CodeDuplicateEdgeID  = "duplicate_edge_id"
	CodeDanglingEndpoint = "dangling_endpoint"
	CodeUnknownStartNode = "unknown_start_node"
	CodeInvalidStartKind = "invalid_start_kind"
	CodeMissingStartNode = "missing_start_node"
	CodeUnreachableNode  = "unreachable_node"
	CodeUnknownNodeKind  = "unknown_node_kind"
	CodeNodeConfig       = "node_config"
)

// ValidationIssue is a single validation problem with location context.
type ValidationIssue struct {
	Path     string             `json:"path"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Severity ValidationSeverity `json:"severity"`
}

// ValidationResult aggregates the issues found in one definition.
type ValidationResult struct {
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// Valid returns true if there are no errors (warnings are acceptable).
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// AddError appends an error-severity issue.
func (r *ValidationResult) AddError(path, code, message string) {
	r.Errors = append(r.Errors, ValidationIssue{
		Path: path, Code: code, Message: message, Severity: SeverityError,
	})
}

// AddWarning appends a warning-severity issue.
func (r *ValidationResult) AddWarning(path, code, message string) {
	r.Warnings = append(r.Warnings, ValidationIssue{
		Path: path, Code: code, Message: message, Severity: SeverityWarning,
	})
}

// Merge combines another ValidationResult into this one.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}

	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Validate checks the structural invariants of a definition. Duplicate
// identifiers, unresolved edge endpoints and a start reference that is
// missing or of the wrong kind are hard errors. A definition with no
// start node, unreachable nodes or unknown node kinds is still
// saveable work in progress, so those come back as warnings. Validate
// never mutates the definition; running it twice yields the same
// result.
func Validate(def *models.Definition) *ValidationResult {
	result := &ValidationResult{}

	if def == nil {
		result.AddError("/", CodeUnknownStartNode, "definition is nil")
		return result
	}

	nodeIDs := make(map[string]struct{}, len(def.Nodes))

	for i, node := range def.Nodes {
		if _, seen := nodeIDs[node.ID]; seen {
			result.AddError(
				fmt.Sprintf("nodes[%d].id", i),
				CodeDuplicateNodeID,
				fmt.Sprintf("node id %q is used more than once", node.ID),
			)

			continue
		}

		nodeIDs[node.ID] = struct{}{}
	}

	for i, node := range def.Nodes {
		if !models.IsKnownKind(node.Kind) {
			result.AddWarning(
				fmt.Sprintf("nodes[%d].kind", i),
				CodeUnknownNodeKind,
				fmt.Sprintf("node %q has unknown kind %q", node.ID, node.Kind),
			)
		}
	}

	edgeIDs := make(map[string]struct{}, len(def.Edges))

	for i, edge := range def.Edges {
		if _, seen := edgeIDs[edge.ID]; seen {
			result.AddError(
				fmt.Sprintf("edges[%d].id", i),
				CodeDuplicateEdgeID,
				fmt.Sprintf("edge id %q is used more than once", edge.ID),
			)
		} else {
			edgeIDs[edge.ID] = struct{}{}
		}

		if _, ok := nodeIDs[edge.Source]; !ok {
			result.AddError(
				fmt.Sprintf("edges[%d].source", i),
				CodeDanglingEndpoint,
				fmt.Sprintf("edge %q source %q does not resolve to a node", edge.ID, edge.Source),
			)
		}

		if _, ok := nodeIDs[edge.Target]; !ok {
			result.AddError(
				fmt.Sprintf("edges[%d].target", i),
				CodeDanglingEndpoint,
				fmt.Sprintf("edge %q target %q does not resolve to a node", edge.ID, edge.Target),
			)
		}
	}

	validateStart(def, result)

	return result
}

// validateStart checks the start reference and, when it resolves,
// reports nodes unreachable from it.
func validateStart(def *models.Definition, result *ValidationResult) {
	if def.StartNode == "" {
		result.AddWarning(
			"start_node",
			CodeMissingStartNode,
			"definition has no start node and cannot execute until one is set",
		)

		return
	}

	start := def.NodeByID(def.StartNode)
	if start == nil {
		result.AddError(
			"start_node",
			CodeUnknownStartNode,
			fmt.Sprintf("start node %q does not resolve to a node", def.StartNode),
		)

		return
	}

	if !start.IsStart() {
		result.AddError(
			"start_node",
			CodeInvalidStartKind,
			fmt.Sprintf("start node %q has kind %q, want %q", start.ID, start.Kind, models.NodeKindStart),
		)

		return
	}

	reachable := reachableFrom(def, def.StartNode)

	for i, node := range def.Nodes {
		if _, ok := reachable[node.ID]; !ok {
			result.AddWarning(
				fmt.Sprintf("nodes[%d]", i),
				CodeUnreachableNode,
				fmt.Sprintf("node %q is not reachable from the start node", node.ID),
			)
		}
	}
}

// reachableFrom walks the directed edges breadth first and returns the
// set of node IDs reachable from the given start.
func reachableFrom(def *models.Definition, startID string) map[string]struct{} {
	adjacency := make(map[string][]string, len(def.Nodes))
	for _, edge := range def.Edges {
		adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
	}

	visited := map[string]struct{}{startID: {}}
	queue := []string{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, target := range adjacency[current] {
			if _, seen := visited[target]; seen {
				continue
			}

			visited[target] = struct{}{}
			queue = append(queue, target)
		}
	}

	return visited
}
