// Package api exposes the converter over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/insightdelivered/statement-tabulator/internal/extractor"
	"github.com/insightdelivered/statement-tabulator/internal/models"
	"github.com/insightdelivered/statement-tabulator/internal/pipeline"
	"github.com/insightdelivered/statement-tabulator/internal/writer"
)

// Version is reported by the health endpoint and conversion responses.
const Version = "1.0.0"

// ConvertRequest is the JSON body for token-based conversion, the path
// for clients that already hold positioned text.
type ConvertRequest struct {
	Tokens      []models.Token `json:"tokens"`
	Institution string         `json:"institution,omitempty"`
	Trace       bool           `json:"trace,omitempty"`
}

// ConvertResponse is the JSON response from /api/convert.
type ConvertResponse struct {
	Success     bool                     `json:"success"`
	Error       string                   `json:"error,omitempty"`
	RequestID   string                   `json:"requestId,omitempty"`
	Segments    []models.DocumentSegment `json:"segments"`
	Diagnostics *models.Diagnostics      `json:"diagnostics,omitempty"`
	CSV         string                   `json:"csv,omitempty"`
	TotalDebit  float64                  `json:"totalDebit"`
	TotalCredit float64                  `json:"totalCredit"`
	Count       int                      `json:"count"`
	Version     string                   `json:"version"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Pipeline *pipeline.Pipeline
	Log      *slog.Logger
}

// Register sets up the API routes on a fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.handleHealth)
	app.Post("/api/convert", h.handleConvert)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
	})
}

// handleConvert accepts either a multipart PDF upload under the form
// field "file" or a JSON ConvertRequest with pre-extracted tokens.
func (h *Handler) handleConvert(c *fiber.Ctx) error {
	requestID := uuid.NewString()
	log := h.Log.With("requestId", requestID)

	var (
		tokens      []models.Token
		institution string
		trace       bool
	)

	switch {
	case strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON):
		var req ConvertRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, requestID, fmt.Sprintf("bad request body: %v", err))
		}
		if len(req.Tokens) == 0 {
			return writeError(c, fiber.StatusBadRequest, requestID, "no tokens in request")
		}
		tokens = req.Tokens
		institution = req.Institution
		trace = req.Trace

	default:
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, requestID, "no file uploaded; use form field 'file' or a JSON token payload")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
			return writeError(c, fiber.StatusBadRequest, requestID, "only PDF files are supported")
		}
		institution = c.FormValue("institution")
		trace = c.FormValue("trace") == "true"

		tokens, err = extractUpload(fileHeader)
		if err != nil {
			log.Warn("extraction failed", "file", fileHeader.Filename, "err", err)
			return writeError(c, fiber.StatusUnprocessableEntity, requestID, err.Error())
		}
	}

	res, err := h.Pipeline.Process(c.Context(), tokens, pipeline.Options{
		Institution: institution,
		Trace:       trace,
	})
	if err != nil {
		log.Warn("conversion failed", "err", err)
		return writeError(c, fiber.StatusUnprocessableEntity, requestID, err.Error())
	}

	var csvBuf strings.Builder
	csvWriter := &writer.CSVWriter{IncludeMetadata: true}
	if err := csvWriter.Write(&csvBuf, res); err != nil {
		log.Error("csv generation failed", "err", err)
		return writeError(c, fiber.StatusInternalServerError, requestID, "csv generation failed")
	}

	var totalDebit, totalCredit float64
	count := 0
	for _, seg := range res.Segments {
		for _, t := range seg.Transactions {
			count++
			if t.Debit != nil {
				totalDebit += *t.Debit
			}
			if t.Credit != nil {
				totalCredit += *t.Credit
			}
		}
	}

	segments := res.Segments
	if segments == nil {
		segments = []models.DocumentSegment{}
	}

	log.Info("conversion ok", "transactions", count, "segments", len(segments))
	return c.JSON(ConvertResponse{
		Success:     true,
		RequestID:   requestID,
		Segments:    segments,
		Diagnostics: &res.Diagnostics,
		CSV:         csvBuf.String(),
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Count:       count,
		Version:     Version,
	})
}

// extractUpload spools the upload to a temp file and runs extraction.
func extractUpload(fileHeader *multipart.FileHeader) ([]models.Token, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("save upload: %w", err)
	}
	tmp.Close()

	return extractor.ExtractTokens(tmp.Name())
}

func writeError(c *fiber.Ctx, status int, requestID, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success:   false,
		RequestID: requestID,
		Error:     msg,
		Version:   Version,
	})
}
