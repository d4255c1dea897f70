package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tropicaldog17/irpf/internal/errors"
	"github.com/tropicaldog17/irpf/internal/models"
	"github.com/tropicaldog17/irpf/internal/services"
)

type RateHandler struct {
	rates  services.RateService
	logger *zap.Logger
	now    func() time.Time
}

func NewRateHandler(rates services.RateService, logger *zap.Logger) *RateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateHandler{rates: rates, logger: logger, now: time.Now}
}

// GET /api/v1/rates?start=2023-03-01&end=2023-03-31
// @Summary List PTAX sell rates
// @Description Published PTAX sell rates (BRL per USD) between two dates. Weekends and holidays are absent.
// @Tags rates
// @Produce json
// @Param start query string false "Start date (YYYY-MM-DD, default: 30 days before end)"
// @Param end query string false "End date (YYYY-MM-DD, default: today)"
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Invalid range"
// @Failure 502 {object} ErrorResponse "PTAX source unavailable"
// @Router /rates [get]
func (h *RateHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	end := models.DateOnly(h.now().UTC())
	if raw := q.Get("end"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			respondError(w, &errors.ErrValidation{Field: "end", Message: err.Error()})
			return
		}
		end = d
	}
	start := end.AddDate(0, 0, -30)
	if raw := q.Get("start"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			respondError(w, &errors.ErrValidation{Field: "start", Message: err.Error()})
			return
		}
		start = d
	}

	rates, err := h.rates.ListRange(r.Context(), start, end)
	if err != nil {
		h.logger.Error("rate listing failed", zap.Error(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rates)
}

// GET /api/v1/rates/resolve?date=2023-03-11
// @Summary Resolve the PTAX sell rate of a date
// @Description Returns the rate published on the date, or on the closest earlier business day
// @Tags rates
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Invalid date"
// @Failure 422 {object} ErrorResponse "No rate within the lookback window"
// @Failure 502 {object} ErrorResponse "PTAX source unavailable"
// @Router /rates/resolve [get]
func (h *RateHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		respondError(w, &errors.ErrValidation{Field: "date", Message: "date is required"})
		return
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		respondError(w, &errors.ErrValidation{Field: "date", Message: err.Error()})
		return
	}

	obs, err := h.rates.ResolveDate(r.Context(), date)
	if err != nil {
		h.logger.Warn("rate resolution failed", zap.String("date", raw), zap.Error(err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":      date.Format(models.DateFormat),
		"rate":      obs,
		"fell_back": !obs.Date.Equal(date),
	})
}
