// Package main provides the IVRFlow definition lint tool, a CI gate for
// repositories holding exported flow definitions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"

	"github.com/dialvox/ivrflow/pkg/flow"
	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/registry"
)

var validate *validator.Validate

func main() {
	cmd := &cli.Command{
		Name:                  "ivrflow-lint",
		Usage:                 "Validate exported flow definition files",
		ArgsUsage:             "definition.json [definition.json ...]",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "strict",
				Usage:   "Treat warnings as failures",
				Sources: cli.EnvVars("IVRFLOW_LINT_STRICT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			return runLint(command.Args().Slice(), command.Bool("strict"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runLint(files []string, strict bool) error {
	if len(files) == 0 {
		return fmt.Errorf("no definition files given")
	}

	validate = validator.New(validator.WithRequiredStructEnabled())

	logger := slog.With(
		"module", "ivrflow-lint",
	)

	catalog := registry.NewRegistry(logger)

	fmt.Println("Definition Lint Results:")
	fmt.Println("========================")

	validFiles := 0
	invalidFiles := 0
	warnedFiles := 0

	for _, path := range files {
		fmt.Printf("\nFile: %s\n", path)

		result, err := lintFile(catalog, path)
		if err != nil {
			fmt.Printf("  ❌ INVALID: %v\n", err)
			invalidFiles++

			continue
		}

		for _, issue := range result.Errors {
			fmt.Printf("  ❌ INVALID: %s: %s\n", issue.Path, issue.Message)
		}

		for _, issue := range result.Warnings {
			fmt.Printf("  ⚠️ WARNING: %s: %s\n", issue.Path, issue.Message)
		}

		switch {
		case len(result.Errors) > 0:
			invalidFiles++
		case len(result.Warnings) > 0:
			warnedFiles++

			fmt.Printf("  ✅ VALID (with warnings)\n")
		default:
			validFiles++

			fmt.Printf("  ✅ VALID\n")
		}
	}

	fmt.Printf("\nLint Summary:\n")
	fmt.Printf("  Total files: %d\n", len(files))
	fmt.Printf("  Valid files: %d\n", validFiles+warnedFiles)
	fmt.Printf("  Files with warnings: %d\n", warnedFiles)
	fmt.Printf("  Invalid files: %d\n", invalidFiles)

	if invalidFiles > 0 {
		return fmt.Errorf("found %d invalid definition files", invalidFiles)
	}

	if strict && warnedFiles > 0 {
		return fmt.Errorf("found %d definition files with warnings", warnedFiles)
	}

	fmt.Println("All definitions are valid! ✅")

	return nil
}

func lintFile(catalog *registry.Registry, path string) (*flow.ValidationResult, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	var def models.Definition
	if err := json.Unmarshal(payload, &def); err != nil {
		return nil, fmt.Errorf("not a definition document: %w", err)
	}

	for _, node := range def.Nodes {
		if err := validate.Struct(node); err != nil {
			return nil, fmt.Errorf("malformed node %q: %w", node.ID, err)
		}
	}

	for _, edge := range def.Edges {
		if err := validate.Struct(edge); err != nil {
			return nil, fmt.Errorf("malformed edge %q: %w", edge.ID, err)
		}
	}

	result := flow.Validate(&def)
	result.Merge(catalog.ValidateDefinition(&def))

	return result, nil
}
