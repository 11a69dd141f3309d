package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/spec-kit/report-portal/internal/api/dto"
	"github.com/spec-kit/report-portal/internal/auth"
	"github.com/spec-kit/report-portal/internal/service"
	"github.com/spec-kit/report-portal/internal/storage"
	apperrors "github.com/spec-kit/report-portal/pkg/util/errorutil"
)

// ReportsHandler manages report submission and review endpoints.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Submit POST /reports (multipart).
func (h *ReportsHandler) Submit(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var form dto.SubmitReportForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid form payload", map[string]any{"reason": err.Error()})
	}

	input := service.SubmissionInput{
		Year:        form.Year,
		Quarter:     form.Quarter,
		Title:       form.Title,
		Description: form.Description,
	}
	upload, err := readUpload(c)
	if err != nil {
		return err
	}
	input.File = upload

	report, err := h.service.Submit(c.UserContext(), caller, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewReportResponse(report)})
}

// List GET /reports.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	reports, err := h.service.ListVisible(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewReportList(reports),
		"meta": fiber.Map{"total": len(reports)},
	})
}

// Get GET /reports/:id.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := reportID(c)
	if err != nil {
		return err
	}
	report, err := h.service.GetByID(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReportResponse(report)})
}

// Download GET /reports/:id/file.
func (h *ReportsHandler) Download(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := reportID(c)
	if err != nil {
		return err
	}
	report, data, err := h.service.DownloadFile(c.UserContext(), caller, id)
	if err != nil {
		return err
	}

	name := report.StoredFile()
	contentType := mime.TypeByExtension("." + storage.Extension(name))
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	return c.Send(data)
}

func reportID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("report", map[string]any{"id": raw})
	}
	return id, nil
}

func readUpload(c *fiber.Ctx) (*service.FileUpload, error) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("read upload: %w", err))
	}
	return &service.FileUpload{Name: header.Filename, Data: data}, nil
}
