package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/dialvox/ivrflow/pkg/flow"
	"github.com/dialvox/ivrflow/pkg/persistence"
	"github.com/dialvox/ivrflow/pkg/services"
	"github.com/dialvox/ivrflow/pkg/session"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func forbidden(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(403).
		WithInstance(c.Path()).
		WithType("permission_denied").
		WithDetail(detail)

	return c.Status(fiber.StatusForbidden).JSON(problem)
}

func conflict(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// validationProblem embeds the structural issue list so the UI can point
// at the offending node or edge.
type validationProblem struct {
	*problems.DefaultProblem

	Validation *flow.ValidationResult `json:"validation"`
}

func validationFailed(c fiber.Ctx, result *flow.ValidationResult) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail("definition failed validation")

	return c.Status(fiber.StatusBadRequest).JSON(validationProblem{
		DefaultProblem: problem,
		Validation:     result,
	})
}

// isGraphError reports whether the error is one of the fine-grained
// graph mutation failures. They map to 400 since the request described
// an edit the definition cannot accept.
func isGraphError(err error) bool {
	return errors.Is(err, flow.ErrDuplicateNodeID) ||
		errors.Is(err, flow.ErrDuplicateEdgeID) ||
		errors.Is(err, flow.ErrDanglingEndpoint) ||
		errors.Is(err, flow.ErrUnknownNode) ||
		errors.Is(err, flow.ErrInvalidStartKind)
}

// handleServiceError provides typed error handling for service, session
// and graph layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return validationFailed(c, validationErr.Result)

	case errors.Is(err, errMissingSessionID):
		return badRequest(c, "Session ID is required")

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case isGraphError(err):
		return badRequest(c, err.Error())

	case errors.Is(err, services.ErrFlowNotFound) || persistence.IsFlowNotFound(err):
		return notFound(c, "flow_not_found", "flow not found")

	case errors.Is(err, session.ErrSessionNotFound):
		return notFound(c, "session_not_found", "session not found")

	case errors.Is(err, session.ErrConcurrentSave):
		return conflict(c, "concurrent_save", "a save is already in flight for this session")

	case errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, session.ErrNoFlowLoaded),
		errors.Is(err, session.ErrNotEditing),
		errors.Is(err, session.ErrAlreadyLoaded),
		errors.Is(err, session.ErrNothingToUndo),
		errors.Is(err, session.ErrNothingToRedo):
		return conflict(c, "session_state", err.Error())

	default:
		return internalError(c, err)
	}
}
