package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"raffle/internal/models"
	"raffle/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

const tenantKey = "tenantID"

var ErrMalformedCSV = errors.New("malformed CSV")

// HTTPHandler holds the dependencies for the HTTP handlers, like the raffle service.
type HTTPHandler struct {
	service      *services.RaffleService
	tenantHeader string
}

// NewHTTPHandler creates a new HTTPHandler. Tenants are identified by the
// given request header.
func NewHTTPHandler(service *services.RaffleService, tenantHeader string) *HTTPHandler {
	return &HTTPHandler{
		service:      service,
		tenantHeader: tenantHeader,
	}
}

type raffleRequest struct {
	Prizes       []string `json:"prizes"`
	Participants []string `json:"participants"`
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type raffleResponse struct {
	ID      string          `json:"id,omitempty"`
	DrawnAt *time.Time      `json:"drawnAt,omitempty"`
	Results []models.Result `json:"results"`
	Report  string          `json:"report"`
}

func newRaffleResponse(r *services.Raffle) raffleResponse {
	return raffleResponse{Results: r.Results(), Report: r.Description()}
}

// RegisterPublicRoutes registers routes that need no tenant.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Health)
	router.POST("/raffle", h.RunRaffle)
}

// RegisterTenantRoutes registers the routes bound to a tenant session.
func (h *HTTPHandler) RegisterTenantRoutes(router gin.IRouter) {
	router.GET("/prizes", h.ListPrizes)
	router.POST("/prizes", h.AddPrize)
	router.POST("/upload-prizes-csv", h.UploadPrizesCSV)
	router.GET("/participants", h.ListParticipants)
	router.POST("/participants", h.AddParticipant)
	router.POST("/upload-participants-csv", h.UploadParticipantsCSV)
	router.POST("/draw", h.PerformDraw)
	router.GET("/results", h.ShowResults)
	router.GET("/export-results-csv", h.ExportResultsCSV)
	router.DELETE("/session", h.ClearSession)
}

// TenantMiddleware reads the tenant ID from the configured header and rejects
// requests without one.
func (h *HTTPHandler) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(h.tenantHeader))
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("missing %s header", h.tenantHeader)})
			return
		}
		c.Set(tenantKey, tenantID)
		c.Next()
	}
}

func tenant(c *gin.Context) string {
	return c.GetString(tenantKey)
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunRaffle draws a one-off raffle from the request body without touching any session.
func (h *HTTPHandler) RunRaffle(c *gin.Context) {
	var req raffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newRaffleResponse(services.NewRaffle(req.Prizes, req.Participants)))
}

func (h *HTTPHandler) ListPrizes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prizes": h.service.GetPrizes(tenant(c))})
}

func (h *HTTPHandler) ListParticipants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"participants": h.service.GetParticipants(tenant(c))})
}

// AddPrize handles the form submission for adding a new prize.
func (h *HTTPHandler) AddPrize(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.AddPrize(tenant(c), req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prizes": h.service.GetPrizes(tenant(c))})
}

// AddParticipant handles the form submission for adding a new participant.
func (h *HTTPHandler) AddParticipant(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.AddParticipant(tenant(c), req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"participants": h.service.GetParticipants(tenant(c))})
}

// UploadPrizesCSV handles the CSV upload for prizes.
func (h *HTTPHandler) UploadPrizesCSV(c *gin.Context) {
	h.uploadNames(c, "prizeCSV", h.service.AddPrize)
}

// UploadParticipantsCSV handles the CSV upload for participants.
func (h *HTTPHandler) UploadParticipantsCSV(c *gin.Context) {
	h.uploadNames(c, "participantCSV", h.service.AddParticipant)
}

// uploadNames reads the first column of every row of an uploaded CSV file and
// adds it through add. Rows with a blank first column are skipped.
func (h *HTTPHandler) uploadNames(c *gin.Context, field string, add func(tenantID, name string) error) {
	file, _, err := c.Request.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("error retrieving file: %v", err)})
		return
	}
	defer file.Close()

	names, err := readNames(file)
	if err != nil {
		writeError(c, err)
		return
	}

	tenantID := tenant(c)
	added := 0
	for _, name := range names {
		if err := add(tenantID, name); err != nil {
			logger.Infof("Skipping CSV record %q: %v", name, err)
			continue
		}
		added++
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

func readNames(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var names []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		names = append(names, record[0])
	}
	return names, nil
}

// PerformDraw runs a raffle over the tenant's prizes and participants.
func (h *HTTPHandler) PerformDraw(c *gin.Context) {
	draw := h.service.Draw(tenant(c))
	resp := newRaffleResponse(draw.Raffle)
	resp.ID = draw.ID
	resp.DrawnAt = &draw.DrawnAt
	c.JSON(http.StatusOK, resp)
}

// ShowResults returns the plain-text report of the tenant's last draw.
func (h *HTTPHandler) ShowResults(c *gin.Context) {
	draw, err := h.service.LastDraw(tenant(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(draw.Raffle.Description()))
}

// ExportResultsCSV handles the request to download the raffle results as a CSV file.
func (h *HTTPHandler) ExportResultsCSV(c *gin.Context) {
	draw, err := h.service.LastDraw(tenant(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=raffle_results.csv")

	// Add BOM to ensure UTF-8 compatibility in Excel
	c.Writer.Write([]byte("\xef\xbb\xbf"))

	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{"participant", "prize", "outcome"}); err != nil {
		logger.Errorf("Error writing CSV header: %v", err)
		return
	}
	for _, result := range draw.Raffle.Results() {
		row := []string{result.ParticipantName(), result.PrizeName(), result.Kind().String()}
		if err := w.Write(row); err != nil {
			logger.Errorf("Error writing CSV row: %v", err)
			return
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		logger.Errorf("Error flushing CSV writer: %v", err)
	}
}

func (h *HTTPHandler) ClearSession(c *gin.Context) {
	h.service.ClearSession(tenant(c))
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrEmptyName), errors.Is(err, ErrMalformedCSV):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNoDraw):
		status = http.StatusNotFound
	default:
		logger.Errorf("Unhandled error: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
