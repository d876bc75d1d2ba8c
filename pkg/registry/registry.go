// Package registry holds the catalog of node kinds the flow editor
// offers, together with the JSON schema each kind's config must
// satisfy. Config violations are advisory: the builder saves work in
// progress, the dialer refuses to run it.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dialvox/ivrflow/pkg/flow"
	"github.com/dialvox/ivrflow/pkg/models"
)

type Registry struct {
	logger *slog.Logger
	kinds  map[models.NodeKind]*models.RegisteredNodeKind
	order  []models.NodeKind
}

// NewRegistry returns a registry pre-populated with the built-in node
// kinds.
func NewRegistry(logger *slog.Logger) *Registry {
	registry := &Registry{
		logger: logger,
		kinds:  make(map[models.NodeKind]*models.RegisteredNodeKind),
	}

	for _, kind := range builtinKinds() {
		registry.Register(kind)
	}

	return registry
}

// Register adds or replaces a node kind in the catalog.
func (r *Registry) Register(kind *models.RegisteredNodeKind) {
	if _, exists := r.kinds[kind.Kind]; !exists {
		r.order = append(r.order, kind.Kind)
	}

	r.kinds[kind.Kind] = kind
	r.logger.Debug("Registered node kind", "kind", kind.Kind)
}

// Get retrieves a node kind by its identifier.
func (r *Registry) Get(kind models.NodeKind) (*models.RegisteredNodeKind, bool) {
	registered, exists := r.kinds[kind]

	return registered, exists
}

// IsRegistered checks if a node kind is part of the catalog.
func (r *Registry) IsRegistered(kind models.NodeKind) bool {
	_, exists := r.kinds[kind]

	return exists
}

// Kinds returns every registered node kind in registration order.
func (r *Registry) Kinds() []*models.RegisteredNodeKind {
	kinds := make([]*models.RegisteredNodeKind, 0, len(r.order))
	for _, kind := range r.order {
		kinds = append(kinds, r.kinds[kind])
	}

	return kinds
}

// HealthCheck reports whether the catalog is usable.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.kinds) == 0 {
		return "node kind catalog is empty", false
	}

	return fmt.Sprintf("%d node kinds registered", len(r.kinds)), true
}

// ValidateDefinition checks every node's config against its kind's
// schema and reports violations as warnings. Nodes of unregistered
// kinds are skipped here; the structural validator already flags them.
func (r *Registry) ValidateDefinition(def *models.Definition) *flow.ValidationResult {
	result := &flow.ValidationResult{}

	if def == nil {
		return result
	}

	for i, node := range def.Nodes {
		registered, exists := r.kinds[node.Kind]
		if !exists || registered.Schema == nil {
			continue
		}

		violations, err := validateConfig(registered.Schema, node.Config)
		if err != nil {
			r.logger.Warn("Node config validation failed", "node_id", node.ID, "error", err)

			result.AddWarning(
				fmt.Sprintf("nodes[%d].config", i),
				flow.CodeNodeConfig,
				fmt.Sprintf("node %q config could not be validated: %v", node.ID, err),
			)

			continue
		}

		for _, violation := range violations {
			result.AddWarning(
				fmt.Sprintf("nodes[%d].config", i),
				flow.CodeNodeConfig,
				fmt.Sprintf("node %q: %s", node.ID, violation),
			)
		}
	}

	return result
}

// validateConfig validates a config payload against a JSON schema.
func validateConfig(schema *models.JSONSchema, config map[string]any) ([]string, error) {
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return nil, err
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		violations = append(violations, violation.String())
	}

	return violations, nil
}
