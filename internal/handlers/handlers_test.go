package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"testing"
	"time"

	"portfoliodash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Member Code,ISIN Code,Sector Name,Broker,Portfolio,Qty,Value At Cost,Value At Market Price\n" +
	"M001,INE040A01034,Banking,Zerodha,Equity,10,1000,1200\n" +
	"M001,INE009A01021,Banking,Zerodha,Equity,5,500,500\n"

func setup(t *testing.T, fallback string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	c := service.NewSourceCache(time.Minute, log)
	d := service.NewDashboard(c, "../../testdata/mappings", log)
	var src service.Source
	if fallback != "" {
		src = service.FileSource(fallback)
	}
	r := gin.New()
	NewHandler(d, c, src, 1<<20, log).Register(r)
	return r
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, r http.Handler, content string) *httptest.ResponseRecorder {
	t.Helper()
	return uploadAs(t, r, content, "application/octet-stream")
}

func uploadAs(t *testing.T, r http.Handler, content, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part := textproto.MIMEHeader{}
	part.Set("Content-Disposition", `form-data; name="file"; filename="portfolio.csv"`)
	part.Set("Content-Type", contentType)
	fw, err := mw.CreatePart(part)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestHealth(t *testing.T) {
	w := get(setup(t, ""), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLanguages(t *testing.T) {
	w := get(setup(t, ""), "/languages")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"tag":"en","name":"English"},{"tag":"ta","name":"தமிழ்"}]`, w.Body.String())
}

func TestTitlesNegotiatesLanguage(t *testing.T) {
	r := setup(t, "")
	w := get(r, "/titles", "Accept-Language", "ta-IN")
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)
	assert.Equal(t, "ta", m["lang"])
	titles := m["titles"].(map[string]any)
	assert.Equal(t, "முதலீடு", titles["Investment"])

	m = decode(t, get(r, "/titles?lang=en", "Accept-Language", "ta"))
	assert.Equal(t, "en", m["lang"])
}

func TestDashboardFromDefaultFile(t *testing.T) {
	r := setup(t, "../../testdata/portfolioinputs.csv")
	w := get(r, "/dashboard?group_by=broker&allocate_by=sector&portfolio=Equity")
	require.Equal(t, http.StatusOK, w.Code)

	m := decode(t, w)
	assert.Equal(t, "ok", m["condition"])
	assert.Equal(t, "broker", m["group_by"])
	assert.Equal(t, "sector", m["allocate_by"])
	summary := m["summary"].(map[string]any)
	assert.Equal(t, "₹ 3,500.00", summary["investment"])
	assert.Len(t, m["table"], 2)
	assert.Len(t, m["details"], 3)
}

func TestDashboardMissingSource(t *testing.T) {
	r := setup(t, "../../testdata/absent.csv")
	m := decode(t, get(r, "/dashboard"))
	assert.Equal(t, "missing_source", m["condition"])
	assert.Equal(t, "Please upload a portfolio CSV file.", m["message"])

	m = decode(t, get(setup(t, ""), "/dashboard"))
	assert.Equal(t, "missing_source", m["condition"])
}

func TestDashboardEmptyResult(t *testing.T) {
	r := setup(t, "../../testdata/portfolioinputs.csv")
	m := decode(t, get(r, "/dashboard?broker=Nobody"))
	assert.Equal(t, "empty_result", m["condition"])
	assert.Equal(t, "No data available for the selected filters.", m["message"])
	assert.Nil(t, m["summary"])
}

func TestDashboardRejectsUnknownDimension(t *testing.T) {
	r := setup(t, "../../testdata/portfolioinputs.csv")
	w := get(r, "/dashboard?group_by=isin")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "group_by")
}

func TestUploadThenDashboard(t *testing.T) {
	r := setup(t, "")
	w := upload(t, r, sampleCSV)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decode(t, w)
	id := m["source_id"].(string)
	assert.Equal(t, float64(2), m["rows"])

	m = decode(t, get(r, "/dashboard?group_by=member&source="+url.QueryEscape(id)))
	assert.Equal(t, "ok", m["condition"])
	table := m["table"].([]any)
	require.Len(t, table, 1)
	row := table[0].(map[string]any)
	assert.Equal(t, "Ravi Kumar", row["key"])
	assert.Equal(t, "₹ 1,500.00", row["investment"])
	assert.Equal(t, "₹ 1,700.00", row["current_value"])
	assert.Equal(t, "13.33%", row["hpr"])
	assert.Equal(t, false, row["highlight"])
}

func TestUnknownUploadIsMissingSource(t *testing.T) {
	r := setup(t, "../../testdata/portfolioinputs.csv")
	m := decode(t, get(r, "/dashboard?source=upload:deadbeef"))
	assert.Equal(t, "missing_source", m["condition"])
}

func TestUploadRejectsBadCSV(t *testing.T) {
	r := setup(t, "")
	w := upload(t, r, "Member Code,Broker\nM001,Zerodha\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "required column missing")
}

func TestUploadRejectsBinary(t *testing.T) {
	r := setup(t, "")
	w := upload(t, r, "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestUploadAcceptsContentTypeParameters(t *testing.T) {
	r := setup(t, "")
	w := uploadAs(t, r, sampleCSV, "text/csv; charset=utf-8")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = uploadAs(t, r, sampleCSV, "Text/CSV")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = uploadAs(t, r, sampleCSV, "image/png; name=x")
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestUploadWithoutFile(t *testing.T) {
	r := setup(t, "")
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAllocationChart(t *testing.T) {
	r := setup(t, "../../testdata/portfolioinputs.csv")
	w := get(r, "/allocation.png?allocate_by=broker")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = get(r, "/allocation.png?broker=Nobody")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "empty_result")
}

func TestReport(t *testing.T) {
	r := setup(t, "../../testdata/portfolioinputs.csv")
	w := get(r, "/report?lang=ta")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "போர்ட்ஃபோலியோ சுருக்கம்")
}

func TestDefaultLanguage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := service.NewSourceCache(time.Minute, log)
	d := service.NewDashboard(c, "../../testdata/mappings", log)
	r := gin.New()
	NewHandler(d, c, nil, 1<<20, log).WithDefaultLang("ta").Register(r)

	assert.Equal(t, "ta", decode(t, get(r, "/titles"))["lang"])
	assert.Equal(t, "en", decode(t, get(r, "/titles", "Accept-Language", "en-GB"))["lang"])
	assert.Equal(t, "en", decode(t, get(r, "/titles?lang=en"))["lang"])
}
