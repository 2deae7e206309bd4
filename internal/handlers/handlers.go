package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"portfoliodash/internal/chart"
	"portfoliodash/internal/i18n"
	"portfoliodash/internal/models"
	"portfoliodash/internal/report"
	"portfoliodash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	dash      *service.Dashboard
	cache     *service.SourceCache
	fallback  service.Source
	maxUpload int64
	lang      string
	log       *logrus.Logger
}

// NewHandler wires the dashboard. fallback is used when a request names no
// uploaded source; it may be nil.
func NewHandler(d *service.Dashboard, c *service.SourceCache, fallback service.Source, maxUpload int64, log *logrus.Logger) *Handler {
	return &Handler{dash: d, cache: c, fallback: fallback, maxUpload: maxUpload, log: log}
}

// WithDefaultLang sets the language used when a request names none and sends
// no Accept-Language header. Unsupported tags are ignored.
func (h *Handler) WithDefaultLang(tag string) *Handler {
	if i18n.Supported(tag) {
		h.lang = tag
	}
	return h
}

func (h *Handler) language(c *gin.Context, explicit string) string {
	accept := c.GetHeader("Accept-Language")
	if explicit == "" && accept == "" && h.lang != "" {
		return h.lang
	}
	return i18n.Match(explicit, accept)
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/languages", h.GetLanguages)
	r.GET("/titles", h.GetTitles)
	r.POST("/upload", h.PostUpload)
	r.GET("/dashboard", h.GetDashboard)
	r.GET("/allocation.png", h.GetAllocationChart)
	r.GET("/report", h.GetReport)
}

type DashboardQuery struct {
	Lang       string `form:"lang"`
	Source     string `form:"source"`
	GroupBy    string `form:"group_by"`
	AllocateBy string `form:"allocate_by"`
	models.FilterSelection
}

func (h *Handler) GetLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, i18n.Languages)
}

func (h *Handler) GetTitles(c *gin.Context) {
	lang := h.language(c, c.Query("lang"))
	c.JSON(http.StatusOK, gin.H{"lang": lang, "titles": h.dash.Store().Texts(lang)})
}

var allowedUploadTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
}

func (h *Handler) PostUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.log.Warnf("upload without file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field 'file'"})
		return
	}
	if fh.Size > h.maxUpload {
		h.log.Warnf("upload %s too large: %d bytes", fh.Filename, fh.Size)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file too large, max %d bytes", h.maxUpload)})
		return
	}
	if ct := mediaType(fh.Header.Get("Content-Type")); ct != "" && !allowedUploadTypes[ct] {
		h.log.Warnf("upload %s has disallowed content type %q", fh.Filename, ct)
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("content type %q is not allowed for CSV upload", ct)})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.log.Errorf("open upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		h.log.Errorf("read upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	if int64(len(data)) > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file too large, max %d bytes", h.maxUpload)})
		return
	}
	if detected := mediaType(http.DetectContentType(data)); !allowedUploadTypes[detected] {
		h.log.Warnf("upload %s detected as %s", fh.Filename, detected)
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "file content is not CSV text"})
		return
	}

	src := service.UploadSource(data)
	rows, err := h.cache.Holdings(c.Request.Context(), src)
	if err != nil {
		h.log.Warnf("parse upload %s failed: %v", fh.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := h.cache.PutUpload(data)
	h.log.Infof("accepted upload %s as %s (%d rows)", fh.Filename, id, len(rows))
	c.JSON(http.StatusCreated, gin.H{"source_id": id, "rows": len(rows)})
}

// mediaType strips parameters such as charset from a Content-Type value.
func mediaType(v string) string {
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mt
}

// request resolves query parameters into a pipeline request. Dimension names
// are validated here so the pipeline only sees the enumerated values.
func (h *Handler) request(c *gin.Context) (service.Request, error) {
	var q DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return service.Request{}, err
	}
	groupBy, err := models.ParseDimension(q.GroupBy)
	if err != nil {
		return service.Request{}, fmt.Errorf("group_by: %w", err)
	}
	allocateBy, err := models.ParseDimension(q.AllocateBy)
	if err != nil {
		return service.Request{}, fmt.Errorf("allocate_by: %w", err)
	}

	req := service.Request{
		Lang:       h.language(c, q.Lang),
		Selection:  q.FilterSelection,
		GroupBy:    groupBy,
		AllocateBy: allocateBy,
		Source:     h.fallback,
	}
	if q.Source != "" {
		req.Source = nil
		if src, ok := h.cache.Upload(q.Source); ok {
			req.Source = src
		} else {
			h.log.Infof("upload %s is unknown or expired", q.Source)
		}
	}
	return req, nil
}

func (h *Handler) build(c *gin.Context) (*service.Report, bool) {
	req, err := h.request(c)
	if err != nil {
		h.log.Warnf("invalid dashboard query: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return h.dash.Build(c.Request.Context(), req), true
}

func (h *Handler) GetDashboard(c *gin.Context) {
	rep, ok := h.build(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) GetAllocationChart(c *gin.Context) {
	rep, ok := h.build(c)
	if !ok {
		return
	}
	if rep.Condition != service.ConditionOK {
		c.JSON(http.StatusNotFound, gin.H{"condition": rep.Condition, "message": rep.Message})
		return
	}
	png, err := chart.RenderPie(rep.Labels.AllocationTitle, rep.Allocation)
	if errors.Is(err, chart.ErrNoSlices) {
		c.JSON(http.StatusNotFound, gin.H{"condition": rep.Condition, "message": err.Error()})
		return
	}
	if err != nil {
		h.log.Errorf("render allocation chart failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) GetReport(c *gin.Context) {
	rep, ok := h.build(c)
	if !ok {
		return
	}
	page, err := report.HTML(rep)
	if err != nil {
		h.log.Errorf("render report failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
