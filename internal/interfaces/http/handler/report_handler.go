package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/YouSangSon/reports-service/internal/application/filter"
	"github.com/YouSangSon/reports-service/internal/domain/schema"
	"github.com/YouSangSon/reports-service/internal/interfaces/http/middleware"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportService는 ReportHandler가 사용하는 리포트 유즈케이스입니다
type ReportService interface {
	Create(ctx context.Context, owner string, in *schema.ReportIn) (*schema.ReportOut, error)
	Get(ctx context.Context, id string) (*schema.ReportOut, error)
	Update(ctx context.Context, owner, id string, update *schema.ReportUpdate) (*schema.ReportOut, error)
	Replace(ctx context.Context, owner, id string, in *schema.ReportIn) (*schema.ReportOut, error)
	Delete(ctx context.Context, owner, id string) error
	ListByObject(ctx context.Context, q *filter.QueryByObject) (*schema.Paginated[schema.ReportByObject], error)
	List(ctx context.Context, q *filter.QueryByReport) (*schema.Paginated[schema.ReportOut], error)
	ExportByObject(ctx context.Context, q *filter.QueryByObject) ([]schema.ReportByObject, error)
	CountByDay(ctx context.Context, q *filter.QueryByDay) ([]schema.ReportByDay, error)
	CountByUser(ctx context.Context, q *filter.QueryByUser) ([]schema.ReportByUser, error)
}

// ReportHandler는 리포트 관련 HTTP 핸들러입니다
type ReportHandler struct {
	reports ReportService
}

// NewReportHandler는 새로운 ReportHandler를 생성합니다
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ListByObject godoc
// @Summary      Query reports grouped by object
// @Tags         queries
// @Produce      json
// @Param        date_after   query     string  false  "Reports on or after this date (ISO 8601)"
// @Param        date_before  query     string  false  "Reports on or before this date (ISO 8601)"
// @Param        object       query     string  false  "Object name regex"
// @Param        type         query     string  false  "Report type"
// @Param        owned        query     bool    false  "Only the caller's reports"
// @Param        order_by     query     string  false  "Sort field"
// @Param        direction    query     int     false  "1 ascending, -1 descending"
// @Param        page         query     int     false  "Page number"
// @Param        page_size    query     int     false  "Page size"
// @Success      200          {object}  schema.Paginated[schema.ReportByObject]
// @Failure      422          {object}  ErrorResponse
// @Failure      503          {object}  ErrorResponse
// @Router       /api/v1/reports [get]
func (h *ReportHandler) ListByObject(c *gin.Context) {
	q := filter.NewQueryByObject()
	if !bindQuery(c, q) {
		return
	}
	q.SetOwner(middleware.CurrentUsername(c))

	result, err := h.reports.ListByObject(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List godoc
// @Summary      Query individual reports
// @Tags         queries
// @Produce      json
// @Param        order_by     query     string  false  "Sort field"
// @Param        page         query     int     false  "Page number"
// @Param        page_size    query     int     false  "Page size"
// @Success      200          {object}  schema.Paginated[schema.ReportOut]
// @Failure      422          {object}  ErrorResponse
// @Router       /api/v1/reports/list [get]
func (h *ReportHandler) List(c *gin.Context) {
	q := filter.NewQueryByReport()
	if !bindQuery(c, q) {
		return
	}
	q.SetOwner(middleware.CurrentUsername(c))

	result, err := h.reports.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CountByDay godoc
// @Summary      Number of reports per day
// @Tags         queries
// @Produce      json
// @Success      200  {array}   schema.ReportByDay
// @Failure      422  {object}  ErrorResponse
// @Router       /api/v1/reports/count_by_day [get]
func (h *ReportHandler) CountByDay(c *gin.Context) {
	q := filter.NewQueryByDay()
	if !bindQuery(c, q) {
		return
	}
	q.SetOwner(middleware.CurrentUsername(c))

	result, err := h.reports.CountByDay(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CountByUser godoc
// @Summary      Number of reports per user
// @Tags         queries
// @Produce      json
// @Success      200  {array}   schema.ReportByUser
// @Failure      422  {object}  ErrorResponse
// @Router       /api/v1/reports/count_by_user [get]
func (h *ReportHandler) CountByUser(c *gin.Context) {
	q := filter.NewQueryByUser()
	if !bindQuery(c, q) {
		return
	}
	q.SetOwner(middleware.CurrentUsername(c))

	result, err := h.reports.CountByUser(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportCSV godoc
// @Summary      Download a page of reports grouped by object as CSV
// @Tags         download
// @Produce      text/csv
// @Success      200  {string}  string
// @Failure      422  {object}  ErrorResponse
// @Router       /api/v1/reports/csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	q := filter.NewQueryByObject()
	if !bindQuery(c, q) {
		return
	}
	q.SetOwner(middleware.CurrentUsername(c))

	rows, err := h.reports.ExportByObject(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}

	prefix := q.Type
	if prefix == "" {
		prefix = "all"
	}
	filename := fmt.Sprintf("%s_%s.csv", prefix, time.Now().UTC().Format("20060102"))

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"object", "first_date", "last_date", "count", "report_types", "sources"})
	for _, row := range rows {
		_ = w.Write([]string{
			row.Object,
			row.FirstDate.UTC().Format(time.RFC3339Nano),
			row.LastDate.UTC().Format(time.RFC3339Nano),
			strconv.FormatInt(row.Count, 10),
			strings.Join(row.ReportTypes, ";"),
			strings.Join(row.Sources, ";"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logger.Error(c.Request.Context(), "failed to write csv", zap.Error(err))
	}
}

// Create godoc
// @Summary      Create a report owned by the caller
// @Tags         report
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      schema.ReportIn  true  "Report"
// @Success      201      {object}  schema.ReportOut
// @Failure      401      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Router       /api/v1/reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var in schema.ReportIn
	if !bindJSON(c, &in) {
		return
	}

	out, err := h.reports.Create(c.Request.Context(), middleware.CurrentUsername(c), &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// Get godoc
// @Summary      Get report by ID
// @Tags         report
// @Produce      json
// @Param        report_id  path      string  true  "Report ID"
// @Success      200        {object}  schema.ReportOut
// @Failure      404        {object}  ErrorResponse
// @Router       /api/v1/reports/{report_id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	out, err := h.reports.Get(c.Request.Context(), c.Param("report_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Update godoc
// @Summary      Partially update a report
// @Tags         report
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        report_id  path      string               true  "Report ID"
// @Param        request    body      schema.ReportUpdate  true  "Fields to change"
// @Success      200        {object}  schema.ReportOut
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /api/v1/reports/{report_id} [patch]
func (h *ReportHandler) Update(c *gin.Context) {
	var update schema.ReportUpdate
	if !bindJSON(c, &update) {
		return
	}

	out, err := h.reports.Update(c.Request.Context(), middleware.CurrentUsername(c), c.Param("report_id"), &update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Replace godoc
// @Summary      Replace a report
// @Tags         report
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        report_id  path      string           true  "Report ID"
// @Param        request    body      schema.ReportIn  true  "Report"
// @Success      200        {object}  schema.ReportOut
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /api/v1/reports/{report_id} [put]
func (h *ReportHandler) Replace(c *gin.Context) {
	var in schema.ReportIn
	if !bindJSON(c, &in) {
		return
	}

	out, err := h.reports.Replace(c.Request.Context(), middleware.CurrentUsername(c), c.Param("report_id"), &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Delete godoc
// @Summary      Delete a report
// @Tags         report
// @Security     BearerAuth
// @Param        report_id  path  string  true  "Report ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/reports/{report_id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.reports.Delete(c.Request.Context(), middleware.CurrentUsername(c), c.Param("report_id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
