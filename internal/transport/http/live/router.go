package livehttp

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"strikebot/internal/engine"
	"strikebot/internal/logger"
	"strikebot/internal/store/model"
)

const maxLogLineSize = 1024 * 1024

// CycleReader is the read side of the cycle log.
type CycleReader interface {
	FindByTraceID(ctx context.Context, traceID string) (*model.CycleModel, error)
	ListRecent(ctx context.Context, limit int) ([]model.CycleModel, error)
}

// LastCycle yields the most recent in-memory report.
type LastCycle interface {
	Last() (engine.Report, bool)
}

type Router struct {
	cycles  CycleReader
	last    LastCycle
	status  func() any
	logPath string
}

func NewRouter(cfg ServerConfig) *Router {
	return &Router{cycles: cfg.Cycles, last: cfg.Last, status: cfg.Status, logPath: strings.TrimSpace(cfg.LogPath)}
}

// Register mounts the /api/live routes on group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/status", r.handleStatus)
	group.GET("/cycles", r.handleCycles)
	group.GET("/cycles/last", r.handleLastCycle)
	group.GET("/cycles/:trace_id", r.handleCycleByTrace)
	group.GET("/logs", r.handleLogs)
}

func (r *Router) handleStatus(c *gin.Context) {
	if r.status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "status unavailable"})
		return
	}
	c.JSON(http.StatusOK, r.status())
}

func (r *Router) handleCycles(c *gin.Context) {
	if r.cycles == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cycle store disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	rows, err := r.cycles.ListRecent(ctx, limit)
	cancel()
	if err != nil {
		logger.Errorf("[api] list cycles failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	reports := make([]engine.Report, 0, len(rows))
	for _, row := range rows {
		rep, err := engine.DecodeReport(row)
		if err != nil {
			logger.Warnf("[api] skip cycle %s: %v", row.TraceID, err)
			continue
		}
		reports = append(reports, rep)
	}
	c.JSON(http.StatusOK, gin.H{"cycles": reports, "count": len(reports)})
}

func (r *Router) handleLastCycle(c *gin.Context) {
	if r.last != nil {
		if rep, ok := r.last.Last(); ok {
			c.JSON(http.StatusOK, rep)
			return
		}
	}
	if r.cycles != nil {
		rows, err := r.cycles.ListRecent(c.Request.Context(), 1)
		if err == nil && len(rows) == 1 {
			if rep, err := engine.DecodeReport(rows[0]); err == nil {
				c.JSON(http.StatusOK, rep)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "no cycle yet"})
}

func (r *Router) handleCycleByTrace(c *gin.Context) {
	if r.cycles == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cycle store disabled"})
		return
	}
	id := strings.TrimSpace(c.Param("trace_id"))
	row, err := r.cycles.FindByTraceID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cycle not found", "trace_id": id})
		return
	}
	rep, err := engine.DecodeReport(*row)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (r *Router) handleLogs(c *gin.Context) {
	if r.logPath == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "log file not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	if limit <= 0 {
		limit = 200
	}
	lines, err := readLastLines(r.logPath, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func readLastLines(path string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLogLineSize)
	lines := make([]string, 0, limit)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > limit {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
