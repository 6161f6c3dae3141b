package api

import (
	"bytes"
	"context"
	"io"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "tama/internal/errors"
)

// handleUpload accepts a multipart workbook, registers a progress task, and
// kicks off ingestion in the background — the client polls /progress/:task_id
// for completion, per §4.3's "reported to the caller via a polled task" note.
func (r *Router) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, apperrors.ErrSourceInvalid.WithMessage("missing file field"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, apperrors.Wrap(err, apperrors.ErrSourceInvalid))
		return
	}
	defer file.Close()

	// The payload is read in full here, while the multipart file is still
	// open; ingestion then runs in the background on a context that outlives
	// this request.
	payload, err := io.ReadAll(file)
	if err != nil {
		fail(c, apperrors.Wrap(err, apperrors.ErrSourceInvalid))
		return
	}

	taskID := uuid.New().String()
	task := r.store.ProgressCreate(taskID, fileHeader.Filename)

	go r.ingestor.Ingest(context.Background(), taskID, fileHeader.Filename, bytes.NewReader(payload))

	ok(c, task)
}

func (r *Router) handleProgress(c *gin.Context) {
	taskID := c.Param("task_id")
	task, found := r.store.ProgressGet(taskID)
	if !found {
		fail(c, apperrors.ErrUnknownMonth.WithMessage("unknown or expired task_id"))
		return
	}
	ok(c, task)
}

func (r *Router) handleListMonths(c *gin.Context) {
	months, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, months)
}

func (r *Router) handleDeleteMonth(c *gin.Context) {
	month := c.Param("month")
	emptied, err := r.store.DeleteMonth(month)
	if err != nil {
		fail(c, err)
		return
	}

	for _, rec := range emptied {
		if rmErr := os.Remove(rec.FilePath); rmErr != nil && !os.IsNotExist(rmErr) {
			r.log.WithError(rmErr).WithField("file_path", rec.FilePath).Warn("could not remove emptied upload blob")
		}
	}

	ok(c, gin.H{"emptied_uploads": emptied})
}

// handleAnalyze recomputes the summary for the requested months from the
// rows already in the store, without requiring a fresh upload. It does not
// re-run validation; the stored anomaly rows are counted as they are.
func (r *Router) handleAnalyze(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	summary, err := r.aggregator.Summary(months)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, summary)
}

func (r *Router) handleSummary(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	summary, err := r.aggregator.Summary(months)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, summary)
}

func (r *Router) handleTrends(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	metric := c.Query("metric")
	if metric == "" {
		metric = "total_cost"
	}
	trend, err := r.aggregator.Trends(months, metric)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, trend)
}

func (r *Router) handleAnomalies(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	anomalies, err := r.aggregator.ListAnomalies(months)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, anomalies)
}

func (r *Router) handleListProjects(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	projects, err := r.aggregator.ListProjects(months)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, projects)
}

func (r *Router) handleProjectTopN(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	n := atoiOr(c.Query("n"), 10)
	projects, err := r.aggregator.ProjectTopN(months, n)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, projects)
}

func (r *Router) handleProjectOrders(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	code := c.Param("code")
	orders, err := r.aggregator.ProjectOrders(months, code)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, orders)
}

func (r *Router) handleDepartmentHierarchy(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	hierarchy, err := r.aggregator.DepartmentHierarchy(months)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, hierarchy)
}

func (r *Router) handleDepartmentList(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	level, convErr := strconv.Atoi(c.DefaultQuery("level", "1"))
	if convErr != nil {
		fail(c, apperrors.ErrSourceInvalid.WithMessage("level must be an integer"))
		return
	}
	parent := c.Query("parent")

	list, err := r.aggregator.DepartmentList(months, level, parent)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (r *Router) handleDepartmentDetails(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	name := c.Query("name")
	level, convErr := strconv.Atoi(c.DefaultQuery("level", "1"))
	if convErr != nil {
		fail(c, apperrors.ErrSourceInvalid.WithMessage("level must be an integer"))
		return
	}

	details, err := r.aggregator.DepartmentDetails(months, name, level)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, details)
}

func (r *Router) handleLevel1Statistics(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	stats, err := r.aggregator.Level1Statistics(months, c.Query("name"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stats)
}

func (r *Router) handleLevel2Statistics(c *gin.Context) {
	knownMonths, err := r.store.ListMonths()
	if err != nil {
		fail(c, err)
		return
	}
	months := resolveMonths(c, knownMonths)
	stats, err := r.aggregator.Level2Statistics(months, c.Query("name"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stats)
}
