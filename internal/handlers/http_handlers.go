package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"secretsanta/internal/models"
	"secretsanta/internal/services"
)

// TokenIssuer mints bearer tokens for the development helper on the list endpoint.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// HTTPHandler holds the dependencies for the HTTP handlers: the participant
// registry and the draw engine.
type HTTPHandler struct {
	registry  *services.Registry
	engine    *services.DrawEngine
	devTokens TokenIssuer
}

// Option configures an HTTPHandler.
type Option func(*HTTPHandler)

// WithDevTokens makes GET /participants include a freshly minted token.
func WithDevTokens(issuer TokenIssuer) Option {
	return func(h *HTTPHandler) {
		h.devTokens = issuer
	}
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(registry *services.Registry, engine *services.DrawEngine, opts ...Option) *HTTPHandler {
	h := &HTTPHandler{
		registry: registry,
		engine:   engine,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterPublicRoutes registers the routes that need no token.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRoutes) {
	router.GET("/participants", h.ListParticipants)
	router.POST("/participants", h.AddParticipant)
	router.GET("/draw/status", h.DrawStatus)
	router.GET("/draw/participant/:participantId", h.ShowMyAssignment)
}

// RegisterAdminRoutes registers the routes that must sit behind bearer authentication.
func (h *HTTPHandler) RegisterAdminRoutes(router gin.IRoutes) {
	router.POST("/participants/import", h.ImportParticipantsCSV)
	router.DELETE("/participants/:id", h.RemoveParticipant)
	router.POST("/draw", h.PerformDraw)
	router.DELETE("/draw", h.ResetDraw)
	router.GET("/draw/results", h.ShowFullResults)
	router.GET("/draw/results.csv", h.ExportResultsCSV)
}

// ListParticipants handles GET /participants.
func (h *HTTPHandler) ListParticipants(c *gin.Context) {
	resp := models.ParticipantListResponse{Participants: h.registry.List()}

	if h.devTokens != nil {
		token, err := h.devTokens.Issue("dev")
		if err != nil {
			logger.Errorf("Error issuing dev token: %v", err)
			writeError(c, err)
			return
		}
		resp.TestToken = token
		resp.Instructions = "Send this token in the Authorization header as: Bearer <testToken>"
	}

	c.JSON(http.StatusOK, resp)
}

// AddParticipant handles POST /participants.
func (h *HTTPHandler) AddParticipant(c *gin.Context) {
	var req models.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, "request body must be JSON with a name")
		return
	}

	participant, err := h.registry.Add(req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participant)
}

// RemoveParticipant handles DELETE /participants/:id.
func (h *HTTPHandler) RemoveParticipant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	participant, err := h.registry.Remove(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RemoveParticipantResponse{
		Message:     "Participant removed",
		Participant: participant,
	})
}

// ImportParticipantsCSV handles POST /participants/import. The first column
// of each row is taken as a name; an optional "name" header row is skipped.
// The CSV is read from the "participantCSV" form file, or from the body
// when it is sent as text/csv.
func (h *HTTPHandler) ImportParticipantsCSV(c *gin.Context) {
	var src io.Reader
	if strings.HasPrefix(c.ContentType(), "text/csv") {
		src = c.Request.Body
	} else {
		file, _, err := c.Request.FormFile("participantCSV")
		if err != nil {
			writeValidation(c, "participantCSV file is required")
			return
		}
		defer file.Close()
		src = file
	}

	names, err := readNames(src)
	if err != nil {
		logger.Infof("Rejected participant CSV: %v", err)
		writeValidation(c, "malformed CSV")
		return
	}

	added, err := h.registry.Import(names)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.ImportParticipantsResponse{
		Imported:     len(added),
		Participants: added,
	})
}

func readNames(src io.Reader) ([]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var names []string
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}
		name := strings.TrimPrefix(record[0], "\xef\xbb\xbf")
		if row == 0 && strings.EqualFold(strings.TrimSpace(name), "name") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// PerformDraw handles POST /draw.
func (h *HTTPHandler) PerformDraw(c *gin.Context) {
	results, err := h.engine.Execute(h.registry.List())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DrawResponse{
		Message:           "Draw performed successfully!",
		TotalParticipants: len(results),
	})
}

// ResetDraw handles DELETE /draw.
func (h *HTTPHandler) ResetDraw(c *gin.Context) {
	h.engine.Reset()
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Draw reset"})
}

// DrawStatus handles GET /draw/status.
func (h *HTTPHandler) DrawStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status())
}

// ShowFullResults handles GET /draw/results, the admin view of every pairing.
func (h *HTTPHandler) ShowFullResults(c *gin.Context) {
	results, err := h.engine.FullResults()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ShowMyAssignment handles GET /draw/participant/:participantId.
func (h *HTTPHandler) ShowMyAssignment(c *gin.Context) {
	id, ok := parseID(c, "participantId")
	if !ok {
		return
	}

	assignment, err := h.engine.ResultFor(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// ExportResultsCSV handles GET /draw/results.csv.
func (h *HTTPHandler) ExportResultsCSV(c *gin.Context) {
	results, err := h.engine.FullResults()
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment;filename=secret_santa_results.csv")

	// BOM so spreadsheet tools pick up UTF-8 names
	if _, err := c.Writer.Write([]byte("\xef\xbb\xbf")); err != nil {
		logger.Infof("Error writing CSV BOM: %v", err)
		return
	}

	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{"giverId", "giver", "receiverId", "receiver"}); err != nil {
		logger.Infof("Error writing CSV header: %v", err)
		return
	}
	for _, r := range results {
		row := []string{strconv.Itoa(r.GiverID), r.GiverName, strconv.Itoa(r.ReceiverID), r.ReceiverName}
		if err := w.Write(row); err != nil {
			logger.Infof("Error writing CSV row: %v", err)
			return
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		logger.Infof("Error flushing CSV writer: %v", err)
	}
}

// parseID reads an integer path parameter, answering 400 when it is not one.
func parseID(c *gin.Context, param string) (int, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil {
		writeValidation(c, param+" must be a number")
		return 0, false
	}
	return id, true
}

func writeValidation(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: models.CodeValidation, Message: message})
}

// writeError maps a service error to its status code and stable error code.
func writeError(c *gin.Context, err error) {
	var (
		status  int
		code    string
		message string
	)
	switch {
	case errors.Is(err, services.ErrValidation):
		status, code, message = http.StatusBadRequest, models.CodeValidation, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, code, message = http.StatusNotFound, models.CodeNotFound, "Participant not found"
	case errors.Is(err, services.ErrInsufficientParticipants):
		status, code, message = http.StatusBadRequest, models.CodeInsufficientParticipants, services.ErrInsufficientParticipants.Error()
	case errors.Is(err, services.ErrAlreadyDrawn):
		status, code, message = http.StatusBadRequest, models.CodeAlreadyDrawn, services.ErrAlreadyDrawn.Error()
	case errors.Is(err, services.ErrDrawFailed):
		status, code, message = http.StatusBadRequest, models.CodeDrawFailed, "Could not produce a valid draw, try again"
	case errors.Is(err, services.ErrNotDrawn):
		status, code, message = http.StatusNotFound, models.CodeNotDrawn, services.ErrNotDrawn.Error()
	default:
		logger.Errorf("Unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		status, code, message = http.StatusInternalServerError, models.CodeInternal, "Internal server error"
	}
	c.JSON(status, models.ErrorResponse{Error: code, Message: message})
}
