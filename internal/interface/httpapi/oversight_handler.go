package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) activeShifts(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Oversight.ListActiveShifts())
}

func (h *Handler) fleetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Oversight.ComputeFleetMetrics())
}

// activity serves the in-memory feed, or the durable log after ?since=
func (h *Handler) activity(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	since := c.Query("since")
	if since == "" {
		c.JSON(http.StatusOK, h.svc.Oversight.RecentActivity(limit))
		return
	}

	seq, err := strconv.ParseInt(since, 10, 64)
	if err != nil || seq < 0 {
		badRequest(c, fmt.Errorf("invalid since"))
		return
	}
	events, err := h.svc.Oversight.ActivitySince(c.Request.Context(), seq, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) exportActiveShiftsCSV(c *gin.Context) {
	data, err := h.svc.Oversight.ExportActiveShiftsCSV()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	attachment(c, exportName("csv"), "text/csv; charset=utf-8", []byte(data))
}

func (h *Handler) exportActiveShiftsXLSX(c *gin.Context) {
	data, err := h.svc.Oversight.ExportActiveShiftsXLSX()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	attachment(c, exportName("xlsx"), xlsxContentType, data)
}

func exportName(ext string) string {
	return fmt.Sprintf("active-shifts-%s.%s", time.Now().Format("20060102-1504"), ext)
}

func (h *Handler) notifications(c *gin.Context) {
	items, err := h.svc.Inbox.Consume(c.Request.Context(), identityFrom(c), c.Query("consumer"), queryInt(c, "limit", 50))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
