package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/dialvox/ivrflow/pkg/models"
	"github.com/dialvox/ivrflow/pkg/session"
)

// errMissingSessionID marks requests whose path carries no session ID.
var errMissingSessionID = errors.New("session ID is required")

// sessionFromParams resolves the session addressed by the request path.
func (h *APIHandlers) sessionFromParams(c fiber.Ctx) (*session.Session, error) {
	id := c.Params("sid")
	if id == "" {
		return nil, errMissingSessionID
	}

	return h.sessions.Get(id)
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	flowID := c.Params("id")
	if flowID == "" {
		return badRequest(c, "Flow ID is required")
	}

	sess, err := h.sessions.Open(c.Context(), flowID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	sess, err := h.sessionFromParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) CloseSession(c fiber.Ctx) error {
	id := c.Params("sid")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	if err := h.sessions.Close(id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) AddSessionNode(c fiber.Ctx) error {
	sess, err := h.sessionFromParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req AddNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := sess.AddNode(req.ToNode()); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) RemoveSessionNode(c fiber.Ctx) error {
	sess, err := h.sessionFromParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	nodeID := c.Params("nodeId")
	if nodeID == "" {
		return badRequest(c, "Node ID is required")
	}

	if err := sess.RemoveNode(nodeID); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) AddSessionEdge(c fiber.Ctx) error {
	sess, err := h.sessionFromParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req AddEdgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := sess.AddEdge(req.ToEdge()); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) SetSessionStartNode(c fiber.Ctx) error {
	sess, err := h.sessionFromParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req SetStartNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := sess.SetStartNode(req.NodeID); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) SetSessionViewport(c fiber.Ctx) error {
	sess, err := h.sessionFromParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req SetViewportRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	viewport := models.Viewport{X: req.X, Y: req.Y, Zoom: req.Zoom}
	if err := sess.SetViewport(viewport); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) UndoSession(c fiber.Ctx) error {
	sess, err := h.sessionFromParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := sess.Undo(); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) RedoSession(c fiber.Ctx) error {
	sess, err := h.sessionFromParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := sess.Redo(); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(sess))
}

func (h *APIHandlers) SaveSession(c fiber.Ctx) error {
	sess, err := h.sessionFromParams(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	version, result, err := sess.Save(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(SaveSessionResponse{
		Version:    version,
		Validation: result,
		Session:    TransformSessionResponse(sess),
	})
}
