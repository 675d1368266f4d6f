package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"
	"CPIReg/internal/service/ratelimit"
	"CPIReg/internal/service/report"
	"CPIReg/internal/usecase"
	xhttp "CPIReg/pkg/http"
	xlogger "CPIReg/pkg/logger"

	"github.com/labstack/echo/v4"
)

const uploadField = "performance_file"

// Runner executes pipeline runs and looks up stored reports.
type Runner interface {
	Run(ctx context.Context, in usecase.Input) (*models.Report, error)
	Report(ctx context.Context, id string) (*models.Report, error)
}

// Options carries the server-side defaults for the form.
type Options struct {
	// APIKey is used for live runs when the form leaves the key blank. It is never rendered.
	APIKey            string
	DefaultRange      models.DateRange
	PerformancePath   string
	SyntheticFallback bool
	MaxUploadBytes    int64
	Format            report.FormatOptions
	Title             string
}

// Handler serves the interactive form and the JSON API.
type Handler struct {
	runner  Runner
	limiter *ratelimit.Limiter
	opts    Options
	log     *xlogger.Logger
}

// NewHandler creates a Handler. A nil limiter disables live-mode rate limiting.
func NewHandler(runner Runner, limiter *ratelimit.Limiter, opts Options, log *xlogger.Logger) *Handler {
	if log == nil {
		log = xlogger.Nop()
	}
	if opts.Title == "" {
		opts.Title = "CPI vs Division Performance"
	}
	return &Handler{runner: runner, limiter: limiter, opts: opts, log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Form)
	e.POST("/run", h.SubmitForm)
	e.GET("/runs/:id/plot.png", h.Plot)
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/runs", h.CreateRun)
	g.GET("/runs/:id", h.GetRun)
}

// Form renders the empty form. Live mode is preselected when a key is configured.
func (h *Handler) Form(c echo.Context) error {
	v := h.newPage()
	v.Form = formState{
		IndexSource:       h.defaultIndexSource(),
		StartYear:         h.opts.DefaultRange.StartYear,
		EndYear:           h.opts.DefaultRange.EndYear,
		PerformanceSource: "sample",
	}
	return h.render(c, http.StatusOK, v)
}

// SubmitForm runs the pipeline and renders the result or the error inline.
func (h *Handler) SubmitForm(c echo.Context) error {
	v := h.newPage()
	req := h.newRequest()
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		v.Form = formStateOf(req)
		if list, ok := verr.([]xhttp.ValidationError); ok {
			v.Validation = list
		}
		return h.render(c, http.StatusBadRequest, v)
	}
	v.Form = formStateOf(req)

	rep, notice, appErr := h.execute(c, req)
	v.Notice = notice
	if appErr != nil {
		v.Error = errorViewOf(appErr)
		return h.render(c, appErr.Status, v)
	}
	v.Result = h.resultViewOf(rep)
	return h.render(c, http.StatusOK, v)
}

// CreateRun is the JSON counterpart of SubmitForm.
func (h *Handler) CreateRun(c echo.Context) error {
	req := h.newRequest()
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, notice, appErr := h.execute(c, req)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	out := h.runResponseOf(rep)
	out.Notice = notice
	return xhttp.CreatedResponse(c, out)
}

// GetRun returns a stored run.
func (h *Handler) GetRun(c echo.Context) error {
	rep, appErr := h.lookup(c)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, h.runResponseOf(rep))
}

// Plot serves the PNG of a stored run.
func (h *Handler) Plot(c echo.Context) error {
	rep, appErr := h.lookup(c)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=3600")
	return c.Blob(http.StatusOK, report.PlotContentType, rep.Plot)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) newRequest() *models.RunRequest {
	return &models.RunRequest{
		StartYear: h.opts.DefaultRange.StartYear,
		EndYear:   h.opts.DefaultRange.EndYear,
	}
}

func (h *Handler) defaultIndexSource() string {
	if h.opts.APIKey != "" {
		return string(models.IndexSourceLive)
	}
	return string(models.IndexSourceSample)
}

// execute resolves sources, applies the live rate limit and runs the pipeline.
// The returned notice explains a silent fallback to sample data.
func (h *Handler) execute(c echo.Context, req *models.RunRequest) (*models.Report, string, *xhttp.AppError) {
	key := req.APIKey
	if key == "" {
		key = h.opts.APIKey
	}
	index := models.ResolveIndexSource(req.Live(), key, req.Range())

	var notice string
	if req.Live() && index.Kind != models.IndexSourceLive {
		notice = "No API key provided; using the bundled sample CPI data."
	}

	if index.Kind == models.IndexSourceLive && h.limiter != nil {
		client := c.RealIP()
		if !h.limiter.Allow(client) {
			secs := int(math.Ceil(h.limiter.RetryAfter(client).Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
			h.log.Warn("live run rate limited", xlogger.String("remote", client))
			return nil, notice, xhttp.TooManyRequestsError("too many live requests; try again shortly or use sample data")
		}
	}

	perf, appErr := h.performanceSource(c, req)
	if appErr != nil {
		return nil, notice, appErr
	}

	rep, err := h.runner.Run(c.Request().Context(), usecase.Input{Index: index, Performance: perf})
	if err != nil {
		return nil, notice, appErrorOf(err)
	}
	return rep, notice, nil
}

func (h *Handler) performanceSource(c echo.Context, req *models.RunRequest) (models.PerformanceSource, *xhttp.AppError) {
	if req.PerformanceSource != string(models.PerformanceSourceUpload) {
		return usecase.DefaultPerformanceSource(h.opts.PerformancePath, h.opts.SyntheticFallback), nil
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		return models.PerformanceSource{}, xhttp.UnprocessableError("ERR_INPUT_FORMAT", uploadField, "no performance file uploaded")
	}
	if h.opts.MaxUploadBytes > 0 && fh.Size > h.opts.MaxUploadBytes {
		return models.PerformanceSource{}, xhttp.RequestTooLargeError(
			fmt.Sprintf("performance file exceeds %d bytes", h.opts.MaxUploadBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return models.PerformanceSource{}, xhttp.InternalError("cannot open upload").WithError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.PerformanceSource{}, xhttp.InternalError("cannot read upload").WithError(err)
	}
	return models.UploadSource(fh.Filename, data), nil
}

func (h *Handler) lookup(c echo.Context) (*models.Report, *xhttp.AppError) {
	req := &models.RunLookupRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return nil, xhttp.BadRequestError("invalid run id").WithParam("errors", verr)
	}
	rep, err := h.runner.Report(c.Request().Context(), req.ID)
	if errors.Is(err, drepo.ErrReportNotFound) {
		return nil, xhttp.NotFoundErrorf("run %s not found", req.ID)
	}
	if err != nil {
		h.log.Error("report lookup failed", xlogger.String("run_id", req.ID), xlogger.Error(err))
		return nil, xhttp.InternalError("report lookup failed").WithError(err)
	}
	return rep, nil
}

func (h *Handler) render(c echo.Context, status int, v *pageView) error {
	b, err := renderPage(v)
	if err != nil {
		h.log.Error("render page", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return c.HTMLBlob(status, b)
}
