package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropicaldog17/irpf/internal/errors"
	"github.com/tropicaldog17/irpf/internal/models"
	"github.com/tropicaldog17/irpf/internal/services"
)

const statementCSV = `Trades,Header,DataDiscriminator,Asset Category,Currency,Symbol,Date/Time,Quantity,T. Price,C. Price,Proceeds,Comm/Fee,Basis,Realized P/L,MTM P/L,Code
Trades,Data,Order,Stocks,USD,AAPL,"2023-03-10, 10:30:00",10,150,150,-1500,-1,1501,0,0,O
Trades,Data,Order,Stocks,USD,AAPL,"2023-03-11, 10:30:00",5,160,160,-800,-1,801,0,0,O
Trades,Data,Order,Stocks,USD,AAPL,"2023-03-13, 10:30:00",-2,170,170,340,-1,-300,40,0,C
Financial Instrument Information,Header,Asset Category,Symbol,Description
Financial Instrument Information,Data,Stocks,AAPL,APPLE INC
`

type mockRateService struct {
	listed   []models.RateObservation
	resolved models.RateObservation
	err      error

	start, end time.Time
}

func (m *mockRateService) ListRange(_ context.Context, start, end time.Time) ([]models.RateObservation, error) {
	m.start, m.end = start, end
	return m.listed, m.err
}

func (m *mockRateService) ResolveDate(_ context.Context, date time.Time) (models.RateObservation, error) {
	return m.resolved, m.err
}

var _ services.RateService = (*mockRateService)(nil)

type mockHoldingsService struct {
	err error
}

func (m *mockHoldingsService) Run(context.Context, []models.StatementRecord) ([]*models.Holding, error) {
	return nil, m.err
}

func (m *mockHoldingsService) BuildReport(context.Context, *models.Statement, models.ReportOptions) (*models.Report, error) {
	return nil, m.err
}

var _ services.HoldingsService = (*mockHoldingsService)(nil)

func date(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ptax(on, rate string) models.RateObservation {
	return models.RateObservation{Series: models.SeriesPTAXSell, Date: date(on), Rate: decimal.RequireFromString(rate), Source: models.RateSourceBCB}
}

func newTestRouter(holdings services.HoldingsService, rates services.RateService, maxUpload int64) http.Handler {
	return NewRouter(
		NewStatementHandler(holdings, maxUpload, nil),
		NewRateHandler(rates, nil),
		nil,
		nil,
	)
}

func uploadRequest(t *testing.T, target, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if content != "" {
		fw, err := mw.CreateFormFile("statement", "statement.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func realHoldings() services.HoldingsService {
	source := services.NewMemoryRateSource(ptax("2023-03-10", "5.00"), ptax("2023-03-11", "5.10"))
	return services.NewHoldingsService(source, services.HoldingsConfig{}, nil)
}

func TestStatementReport_JSON(t *testing.T) {
	router := newTestRouter(realHoldings(), &mockRateService{}, 0)

	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, uploadRequest(t, "/api/v1/statements", statementCSV, nil))
	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())

	var got struct {
		Year       int    `json:"year"`
		TradeCount int    `json:"trade_count"`
		TotalLocal string `json:"total_cost_local"`
		Holdings   []struct {
			Symbol      string `json:"symbol"`
			Description string `json:"description"`
		} `json:"holdings"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	assert.Equal(t, 2023, got.Year)
	assert.Equal(t, 2, got.TradeCount)
	assert.Equal(t, "11580.00", got.TotalLocal)
	require.Len(t, got.Holdings, 1)
	assert.Equal(t, "APPLE INC", got.Holdings[0].Description)
}

func TestStatementReport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "malformed", err: &errors.ErrMalformedInput{Row: 3, Reason: "bad"}, want: http.StatusBadRequest},
		{name: "rate unavailable", err: &errors.ErrRateUnavailable{Date: date("2023-01-01"), WindowStart: date("2022-12-22")}, want: http.StatusUnprocessableEntity},
		{name: "upstream", err: &errors.ErrUpstreamFetch{Start: date("2023-01-01"), End: date("2023-01-02"), Cause: stderrors.New("503")}, want: http.StatusBadGateway},
		{name: "unknown", err: stderrors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockHoldingsService{err: tt.err}, &mockRateService{}, 0)
			rw := httptest.NewRecorder()
			router.ServeHTTP(rw, uploadRequest(t, "/api/v1/statements", statementCSV, nil))

			assert.Equal(t, tt.want, rw.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body.Error)
		})
	}
}

func TestStatementReport_MalformedRowsListed(t *testing.T) {
	csv := `Trades,Data,Order,Stocks,USD,AAPL,"2023-03-10, 10:30:00",abc,150,150,-1500,-1
Trades,Data,Order,Stocks,EUR,SAP,"2023-03-10, 10:30:00",1,120,120,-120,-1
`
	router := newTestRouter(realHoldings(), &mockRateService{}, 0)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, uploadRequest(t, "/api/v1/statements", csv, nil))

	require.Equal(t, http.StatusBadRequest, rw.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	require.Len(t, body.Details, 2)
	assert.Contains(t, body.Details[0], "row 1")
	assert.Contains(t, body.Details[1], "unsupported currency EUR")
}

func TestStatementReport_RequestValidation(t *testing.T) {
	router := newTestRouter(realHoldings(), &mockRateService{}, 0)

	t.Run("missing file", func(t *testing.T) {
		rw := httptest.NewRecorder()
		router.ServeHTTP(rw, uploadRequest(t, "/api/v1/statements", "", map[string]string{"note": "x"}))
		assert.Equal(t, http.StatusBadRequest, rw.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		rw := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rw, req)
		assert.Equal(t, http.StatusBadRequest, rw.Code)
	})

	t.Run("invalid year", func(t *testing.T) {
		rw := httptest.NewRecorder()
		router.ServeHTTP(rw, uploadRequest(t, "/api/v1/statements?year=20x3", statementCSV, nil))
		assert.Equal(t, http.StatusBadRequest, rw.Code)
	})

	t.Run("upload too large", func(t *testing.T) {
		small := newTestRouter(realHoldings(), &mockRateService{}, 64)
		rw := httptest.NewRecorder()
		small.ServeHTTP(rw, uploadRequest(t, "/api/v1/statements", statementCSV, nil))
		assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest}, rw.Code)
	})
}

func TestStatementReport_YearCutoff(t *testing.T) {
	router := newTestRouter(realHoldings(), &mockRateService{}, 0)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, uploadRequest(t, "/api/v1/statements?year=2022", statementCSV, nil))

	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())
	assert.Contains(t, rw.Body.String(), `"holdings":[]`)
}

func TestStatementPage(t *testing.T) {
	router := newTestRouter(realHoldings(), &mockRateService{}, 0)

	t.Run("index", func(t *testing.T) {
		rw := httptest.NewRecorder()
		router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rw.Code)
		assert.Contains(t, rw.Body.String(), `name="statement"`)
	})

	t.Run("report", func(t *testing.T) {
		rw := httptest.NewRecorder()
		router.ServeHTTP(rw, uploadRequest(t, "/statements", statementCSV, map[string]string{"year": ""}))
		require.Equal(t, http.StatusOK, rw.Code)
		body := rw.Body.String()
		assert.Contains(t, body, "APPLE INC")
		assert.Contains(t, body, "R$ 11.580,00")
		assert.Contains(t, body, "<table>")
	})

	t.Run("no buys", func(t *testing.T) {
		rw := httptest.NewRecorder()
		router.ServeHTTP(rw, uploadRequest(t, "/statements", "Statement,Header,Field Name,Field Value\n", nil))
		assert.Equal(t, http.StatusOK, rw.Code)
		assert.Contains(t, rw.Body.String(), "No buy trades found")
	})

	t.Run("error shown on page", func(t *testing.T) {
		failing := newTestRouter(&mockHoldingsService{err: &errors.ErrUpstreamFetch{Cause: stderrors.New("down")}}, &mockRateService{}, 0)
		rw := httptest.NewRecorder()
		failing.ServeHTTP(rw, uploadRequest(t, "/statements", statementCSV, nil))
		assert.Equal(t, http.StatusBadGateway, rw.Code)
		assert.Contains(t, rw.Body.String(), "Error processing statement")
	})
}

func TestRates_List(t *testing.T) {
	rates := &mockRateService{listed: []models.RateObservation{ptax("2023-03-10", "5.2040")}}
	router := newTestRouter(&mockHoldingsService{}, rates, 0)

	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/rates?start=2023-03-01&end=2023-03-10", nil))
	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `[{"series":"ptax-sell","date":"2023-03-10","rate":"5.204","source":"bcb-sgs"}]`, rw.Body.String())
	assert.Equal(t, date("2023-03-01"), rates.start)
	assert.Equal(t, date("2023-03-10"), rates.end)

	rw = httptest.NewRecorder()
	router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/rates?start=03/01/2023", nil))
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestRates_Resolve(t *testing.T) {
	rates := &mockRateService{resolved: ptax("2023-03-10", "5.2040")}
	router := newTestRouter(&mockHoldingsService{}, rates, 0)

	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/rates/resolve?date=2023-03-11", nil))
	require.Equal(t, http.StatusOK, rw.Code)

	var got struct {
		Date     string `json:"date"`
		FellBack bool   `json:"fell_back"`
		Rate     struct {
			Date string `json:"date"`
		} `json:"rate"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	assert.Equal(t, "2023-03-11", got.Date)
	assert.Equal(t, "2023-03-10", got.Rate.Date)
	assert.True(t, got.FellBack)

	rw = httptest.NewRecorder()
	router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/rates/resolve", nil))
	assert.Equal(t, http.StatusBadRequest, rw.Code)

	rates.err = &errors.ErrRateUnavailable{Date: date("2023-01-01"), WindowStart: date("2022-12-22")}
	rw = httptest.NewRecorder()
	router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/rates/resolve?date=2023-01-01", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rw.Code)
}

func TestHealth(t *testing.T) {
	rw := httptest.NewRecorder()
	newTestRouter(&mockHoldingsService{}, &mockRateService{}, 0).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), `"healthy"`)

	unhealthy := NewRouter(
		NewStatementHandler(&mockHoldingsService{}, 0, nil),
		NewRateHandler(&mockRateService{}, nil),
		func() error { return stderrors.New("db down") },
		nil,
	)
	rw = httptest.NewRecorder()
	unhealthy.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rw.Code)
}
