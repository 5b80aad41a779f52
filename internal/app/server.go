package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/recordfile"
	"github.com/specialistvlad/timeliness/internal/recordstore"
	"github.com/specialistvlad/timeliness/internal/timeliness"
)

// RequestIDHeader carries the id of a request in both directions.
const RequestIDHeader = "X-Request-Id"

// shutdownTimeout bounds graceful shutdown of the HTTP host.
const shutdownTimeout = 5 * time.Second

// badRequest marks errors caused by the client.
type badRequest struct{ err error }

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

func invalid(format string, args ...any) error {
	return &badRequest{err: fmt.Errorf(format, args...)}
}

// httpError is the body of every failed response.
type httpError struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type indexRequest struct {
	Root     string           `json:"root" binding:"required"`
	Records  []lineage.Record `json:"records"`
	Collapse *bool            `json:"collapse"`
}

type batchPredictRequest struct {
	Roots    []string `json:"roots" binding:"required,min=1"`
	At       string   `json:"at"`
	Schedule string   `json:"schedule"`
	Now      string   `json:"now"`
}

type predictRequest struct {
	Root string `json:"root" binding:"required"`
	// RootRecord optionally carries the root's own runs and budget.
	RootRecord *lineage.Record   `json:"rootRecord"`
	Records    []lineage.Record `json:"records"`
	At         string           `json:"at"`
	Schedule   string           `json:"schedule"`
	Now        string           `json:"now"`
}

// Router builds the HTTP routes of the app.
func (a *App) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(a.requestIDMiddleware(), logMiddleware(), errorHandleMiddleware(), recoveryMiddleware())

	r.GET("/health", a.health)
	v1 := r.Group("/v1")
	{
		v1.POST("/index", a.postIndex)
		v1.POST("/predict", a.postPredict)
		v1.POST("/predict/batch", a.postPredictBatch)
		v1.POST("/records", a.postRecords)
		v1.GET("/entities/:urn/index", a.getEntityIndex)
		v1.GET("/entities/:urn/prediction", a.getEntityPrediction)
		v1.GET("/report", a.getReport)
	}
	return r
}

// Serve runs the HTTP host on the configured port until ctx is cancelled,
// then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	logger := ctxlog.FromContext(a.ctx)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	a.httpServer = &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return a.ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "address", ln.Addr().String())
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Shutting down HTTP server...")
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	logger.Debug("HTTP server shut down gracefully.")
	return nil
}

// requestIDMiddleware tags every request with an id and a logger carrying it.
func (a *App) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set("request_id", id)

		logger := a.logger.With("request_id", id)
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), logger))
		c.Next()
	}
}

// logMiddleware logs every request once it is served.
func logMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		c.Next()

		var stdErr error
		if last := c.Errors.Last(); last != nil {
			stdErr = last.Err
		}
		ctxlog.FromContext(c.Request.Context()).Debug("HTTP request served.",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"ip", c.ClientIP(),
			"error", stdErr,
			"duration", time.Since(start),
		)
	}
}

// errorHandleMiddleware turns the error recorded by a handler into the
// response.
func errorHandleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		last := c.Errors.Last()
		if last == nil {
			return
		}

		status := http.StatusInternalServerError
		var br *badRequest
		switch {
		case errors.As(last.Err, &br):
			status = http.StatusBadRequest
		case errors.Is(last.Err, ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(last.Err, ErrNoExecutionInstant), errors.Is(last.Err, recordstore.ErrEmptyURN):
			status = http.StatusBadRequest
		}
		c.JSON(status, httpError{Error: last.Err.Error(), RequestID: c.GetString("request_id")})
		c.Abort()
	}
}

// recoveryMiddleware answers a panicking handler with a 500 in the usual
// error body.
func recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		ctxlog.FromContext(c.Request.Context()).Error("Panic while serving request.", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, httpError{
			Error:     "internal server error",
			RequestID: c.GetString("request_id"),
		})
	})
}

func (a *App) health(c *gin.Context) {
	ctxlog.FromContext(c.Request.Context()).Debug("Health check endpoint hit.", "remote_addr", c.Request.RemoteAddr)
	c.String(http.StatusOK, "OK\n")
}

func (a *App) postIndex(c *gin.Context) {
	var req indexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalid("invalid index request: %w", err))
		return
	}
	idx := a.Index(c.Request.Context(), req.Root, req.Records, req.Collapse)
	c.JSON(http.StatusOK, NewIndexView(idx))
}

func (a *App) postPredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalid("invalid predict request: %w", err))
		return
	}
	at, err := a.instantFromStrings(req.At, req.Schedule, req.Now)
	if err != nil {
		_ = c.Error(err)
		return
	}

	root := lineage.Record{URN: req.Root}
	if req.RootRecord != nil {
		root = *req.RootRecord
		root.URN = req.Root
	}
	res := a.Predict(c.Request.Context(), root, req.Records, at)
	c.JSON(http.StatusOK, NewPredictionView(req.Root, at, res))
}

func (a *App) postPredictBatch(c *gin.Context) {
	var req batchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalid("invalid batch predict request: %w", err))
		return
	}
	at, err := a.instantFromStrings(req.At, req.Schedule, req.Now)
	if err != nil {
		_ = c.Error(err)
		return
	}
	views, err := a.PredictMany(c.Request.Context(), req.Roots, at)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": views})
}

func (a *App) postRecords(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		_ = c.Error(invalid("failed to read body: %w", err))
		return
	}
	records, err := recordfile.Decode(body, ".json")
	if err != nil {
		_ = c.Error(invalid("invalid records: %w", err))
		return
	}
	if err := a.Import(c.Request.Context(), records); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": len(records)})
}

func (a *App) getEntityIndex(c *gin.Context) {
	var collapse *bool
	if raw, ok := c.GetQuery("collapse"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.Error(invalid("invalid collapse %q: %w", raw, err))
			return
		}
		collapse = &v
	}
	idx, err := a.StoredIndex(c.Request.Context(), c.Param("urn"), collapse)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, NewIndexView(idx))
}

func (a *App) getEntityPrediction(c *gin.Context) {
	root := c.Param("urn")
	at, err := a.instantFromStrings(c.Query("at"), c.Query("schedule"), c.Query("now"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	res, err := a.StoredPredict(c.Request.Context(), root, at)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, NewPredictionView(root, at, res))
}

func (a *App) getReport(c *gin.Context) {
	opts := timeliness.Options{Name: c.Query("name")}

	now, err := optionalTime("now", c.Query("now"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	opts.Now = now

	date, err := optionalTime("date", c.Query("date"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if date.IsZero() {
		date = now.Truncate(24 * time.Hour)
	}
	opts.Date = date

	if raw := c.Query("previous"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			_ = c.Error(invalid("invalid previous %q", raw))
			return
		}
		opts.PreviousRuns = n
	}

	report, err := a.Report(c.Request.Context(), opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// instantFromStrings parses the request form of an execution instant.
func (a *App) instantFromStrings(atRaw, expr, nowRaw string) (time.Time, error) {
	at, err := optionalTime("at", atRaw)
	if err != nil {
		return time.Time{}, err
	}
	now, err := optionalTime("now", nowRaw)
	if err != nil {
		return time.Time{}, err
	}
	instant, err := a.ExecutionInstant(at, expr, now)
	if err != nil && !errors.Is(err, ErrNoExecutionInstant) {
		return time.Time{}, &badRequest{err: err}
	}
	return instant, err
}

func optionalTime(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, ok := lineage.ParseTimestamp(raw)
	if !ok {
		return time.Time{}, invalid("invalid %s %q", name, raw)
	}
	return t, nil
}
