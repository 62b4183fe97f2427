package server

import (
	"errors"
	"net/http"

	"monitor-dashboard/src/chart"
	"monitor-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	resp := gin.H{
		"status":        "ok",
		"connections":   s.ClientCount(),
		"latest_update": s.latestUpdate(),
		"keys":          s.deps.Store.Len(),
	}
	if s.deps.Channel != nil {
		resp["realtime"] = s.deps.Channel.Status()
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotMessage("INITIAL", nil))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getStateKey(c *gin.Context) {
	key := c.Param("key")
	value, ok := s.deps.Store.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown key", "key": key})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHistory(c *gin.Context) {
	entity, timeframe := c.Param("entity"), c.Param("timeframe")

	series, ok := s.deps.History.Fetch(c.Request.Context(), entity, timeframe)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no history", "entity": entity, "timeframe": timeframe})
		return
	}
	c.JSON(http.StatusOK, series)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getChart(c *gin.Context) {
	if s.deps.Binding == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chart binding unavailable"})
		return
	}

	view := models.MChartView{
		Width:       queryInt(c, "width", 1024),
		DarkMode:    queryBool(c, "dark"),
		Color:       c.Query("color"),
		ZoomEnabled: queryBool(c, "zoom"),
		Metric:      c.Query("metric"),
	}

	ds, err := s.deps.Binding.Bind(c.Request.Context(), c.Param("entity"), c.Param("timeframe"), view)
	switch {
	case errors.Is(err, chart.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, ds)
	}
}

// -----------------------------------------------------------------------------

// getSamples serves recorded samples, falling back to the live buffers
// when no database is configured
func (s *DashboardServer) getSamples(c *gin.Context) {
	metric := c.Param("metric")
	since := int64(queryInt(c, "since", 0))
	limit := queryInt(c, "limit", 0)

	var samples []models.MMetricSample
	if s.deps.Database != nil {
		var err error
		samples, err = s.deps.Database.QuerySamples(metric, since, limit)
		if err != nil {
			s.Logger.Error("Sample query for %s failed: %v", metric, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sample query failed"})
			return
		}
	} else if s.deps.Series != nil {
		samples = s.deps.Series.GetSince(metric, since)
		if limit > 0 && len(samples) > limit {
			samples = samples[len(samples)-limit:]
		}
	}

	if samples == nil {
		samples = []models.MMetricSample{}
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric, "samples": samples})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postReconnect(c *gin.Context) {
	if s.deps.Channel == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime channel unavailable"})
		return
	}
	s.deps.Channel.Disconnect()
	s.deps.Channel.Connect()
	c.JSON(http.StatusAccepted, s.deps.Channel.Status())
}
