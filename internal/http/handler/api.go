package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"studocs/internal/http/middleware"
	"studocs/internal/service"
)

// ListDocuments answers GET /api/v1/documents?q=.
func ListDocuments(svc service.DocumentService, log *zap.Logger) fiber.Handler {
	log = orNop(log)
	return func(c *fiber.Ctx) error {
		docs, err := svc.List(c.UserContext(), middleware.SessionFromCtx(c), c.Query("q"))
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(fiber.Map{"data": docs})
	}
}

// UploadDocument accepts multipart/form-data with fields title, description and file.
func UploadDocument(svc service.DocumentService, log *zap.Logger) fiber.Handler {
	log = orNop(log)
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), middleware.SessionFromCtx(c), service.UploadInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Filename:    fh.Filename,
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

type updateDocumentRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateDocument answers PATCH /api/v1/documents/:id. A null or missing
// description clears it.
func UpdateDocument(svc service.DocumentService, log *zap.Logger) fiber.Handler {
	log = orNop(log)
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		desc := ""
		if req.Description != nil {
			desc = *req.Description
		}
		if err := svc.Update(c.UserContext(), middleware.SessionFromCtx(c), id, req.Title, desc); err != nil {
			return writeServiceError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteDocument answers DELETE /api/v1/documents/:id.
func DeleteDocument(svc service.DocumentService, log *zap.Logger) fiber.Handler {
	log = orNop(log)
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.SessionFromCtx(c), id); err != nil {
			return writeServiceError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DocumentURL answers GET /api/v1/documents/:id/url with a signed view URL.
func DocumentURL(svc service.DocumentService, ttl time.Duration, log *zap.Logger) fiber.Handler {
	log = orNop(log)
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.ViewURL(c.UserContext(), middleware.SessionFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(fiber.Map{"url": u, "expires_in": int64(ttl.Seconds())})
	}
}

func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
