package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/poolforyou/poolforyou-api/internal/middleware"
	"github.com/poolforyou/poolforyou-api/internal/model"
	"github.com/poolforyou/poolforyou-api/internal/service"
)

// ReportHandler serves the work report endpoints.
type ReportHandler struct {
	Reports *service.ReportService
}

func NewReportHandler(r *service.ReportService) *ReportHandler { return &ReportHandler{Reports: r} }

type createReportReq struct {
	Location string           `json:"location"`
	Data     model.ReportData `json:"data"`
}

func (h *ReportHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return service.ErrUnauthorized
	}
	var req createReportReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	r, err := h.Reports.CreateReport(c.Request().Context(), u.ID, req.Location, req.Data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": r.ID})
}

func (h *ReportHandler) ListMine(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return service.ErrUnauthorized
	}
	rs, err := h.Reports.ListOwnReports(c.Request().Context(), u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rs)
}

// ListAll filters by status, user_id and a date_from..date_to range of
// whole UTC days (YYYY-MM-DD).
func (h *ReportHandler) ListAll(c echo.Context) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	rs, err := h.Reports.ListAllReports(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rs)
}

func reportFilter(c echo.Context) (model.ReportFilter, error) {
	f := model.ReportFilter{Status: c.QueryParam("status")}
	problems := map[string]string{}

	if s := c.QueryParam("user_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			problems["user_id"] = "must be a positive integer"
		}
		f.UserID = id
	}
	from, _, err := model.ParseDateRange(c.QueryParam("date_from"), "")
	if err != nil {
		problems["date_from"] = "must be YYYY-MM-DD"
	}
	_, before, err := model.ParseDateRange("", c.QueryParam("date_to"))
	if err != nil {
		problems["date_to"] = "must be YYYY-MM-DD"
	}
	if len(problems) > 0 {
		return f, &service.ValidationError{Fields: problems}
	}
	f.CreatedFrom, f.CreatedBefore = from, before
	return f, nil
}

type statusReq struct {
	Status string `query:"status" json:"status"`
}

// UpdateStatus takes the new status from ?status= or a JSON body.
func (h *ReportHandler) UpdateStatus(c echo.Context) error {
	id, err := reportID(c)
	if err != nil {
		return err
	}
	var req statusReq
	b := &echo.DefaultBinder{}
	if err := b.BindQueryParams(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := b.BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	r, err := h.Reports.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"id": r.ID, "status": r.Status})
}

// UploadPhotos stores the multipart "files" and returns their paths.
func (h *ReportHandler) UploadPhotos(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return service.ErrUnauthorized
	}
	id, err := reportID(c)
	if err != nil {
		return err
	}
	mf, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form required")
	}

	uploads, closeAll, err := openUploads(mf.File["files"])
	defer closeAll()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	paths, err := h.Reports.AttachPhotos(c.Request().Context(), u, id, uploads)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"photos": paths})
}

func openUploads(headers []*multipart.FileHeader) ([]service.Upload, func(), error) {
	var opened []io.Closer
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		uploads = append(uploads, service.Upload{Filename: fh.Filename, Body: f})
	}
	return uploads, closeAll, nil
}

func reportID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrReportNotFound
	}
	return id, nil
}
