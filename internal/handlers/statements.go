package handlers

import (
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/tropicaldog17/irpf/internal/errors"
	"github.com/tropicaldog17/irpf/internal/models"
	"github.com/tropicaldog17/irpf/internal/report"
	"github.com/tropicaldog17/irpf/internal/services"
	"github.com/tropicaldog17/irpf/internal/statement"
)

// DefaultMaxUploadBytes caps a statement upload when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

const uploadField = "statement"

type StatementHandler struct {
	holdings  services.HoldingsService
	maxUpload int64
	logger    *zap.Logger
}

func NewStatementHandler(holdings services.HoldingsService, maxUpload int64, logger *zap.Logger) *StatementHandler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatementHandler{holdings: holdings, maxUpload: maxUpload, logger: logger}
}

// POST /api/v1/statements?year=2024
// @Summary Build an acquisition cost report
// @Description Parse an IBKR activity statement (CSV) and convert every stock buy to BRL with the PTAX sell rate of its trade date
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Param statement formData file true "IBKR activity statement (CSV)"
// @Param year query int false "Tax year (default: year of the latest buy)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Malformed statement"
// @Failure 413 {object} ErrorResponse "Upload too large"
// @Failure 422 {object} ErrorResponse "No PTAX rate for a trade date"
// @Failure 502 {object} ErrorResponse "PTAX source unavailable"
// @Router /statements [post]
func (h *StatementHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.buildReport(w, r)
	if err != nil {
		h.logFailure(r, err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// HandleIndex serves the upload form.
func (h *StatementHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, pageData{})
}

// HandleReportPage serves POST /statements for the upload form. Failures are
// shown on the page.
func (h *StatementHandler) HandleReportPage(w http.ResponseWriter, r *http.Request) {
	rep, err := h.buildReport(w, r)
	if err != nil {
		h.logFailure(r, err)
		renderPage(w, statusFor(err), pageData{Error: "Error processing statement: " + err.Error()})
		return
	}
	if rep.IsEmpty() {
		renderPage(w, http.StatusOK, pageData{Error: report.NoBuyTradesMessage})
		return
	}

	body, err := report.HTML(report.Markdown(rep))
	if err != nil {
		h.logger.Error("report rendering failed", zap.Error(err))
		renderPage(w, http.StatusInternalServerError, pageData{Error: err.Error()})
		return
	}
	renderPage(w, http.StatusOK, pageData{Report: body, ReportID: rep.ID})
}

func (h *StatementHandler) buildReport(w http.ResponseWriter, r *http.Request) (*models.Report, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, tooLarge
		}
		return nil, &errors.ErrValidation{Field: uploadField, Message: "expected a multipart upload"}
	}

	opts, err := reportOptions(r)
	if err != nil {
		return nil, err
	}

	file, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, &errors.ErrValidation{Field: uploadField, Message: "file is required"}
	}
	defer file.Close()

	parsed, err := statement.Parse(file)
	if err != nil {
		return nil, err
	}
	return h.holdings.BuildReport(r.Context(), parsed, opts)
}

func (h *StatementHandler) logFailure(r *http.Request, err error) {
	status := statusFor(err)
	log := h.logger.Warn
	if status >= http.StatusInternalServerError {
		log = h.logger.Error
	}
	log("statement report failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
}

// reportOptions reads the year from the query string or the parsed form.
func reportOptions(r *http.Request) (models.ReportOptions, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" && r.MultipartForm != nil {
		if v := r.MultipartForm.Value["year"]; len(v) > 0 {
			raw = v[0]
		}
	}
	if raw == "" {
		return models.ReportOptions{}, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1994 || year > 9999 {
		return models.ReportOptions{}, &errors.ErrValidation{Field: "year", Message: fmt.Sprintf("invalid year %q", raw)}
	}
	return models.ReportOptions{Year: year}, nil
}

type pageData struct {
	Error    string
	Report   template.HTML
	ReportID string
}
