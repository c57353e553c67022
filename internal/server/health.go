package server

import (
	"fmt"
	"net/http"
	"time"

	"futureself/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

var startTime = time.Now()

// healthHandler reports database pool stats alongside host load. A database
// that does not answer its ping turns the whole response into a 503.
func (s *Server) healthHandler(c echo.Context) error {
	dbHealth := s.db.Health()

	resp := map[string]interface{}{
		"status":       "online",
		"uptime":       time.Since(startTime).Round(time.Second).String(),
		"database":     dbHealth,
		"chat_sockets": utility.ActiveChatClients(),
	}

	if v, err := mem.VirtualMemory(); err == nil {
		resp["memory"] = map[string]interface{}{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(v.Total)/1024/1024/1024),
			"used_gb":      fmt.Sprintf("%.2f GB", float64(v.Used)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
		}
	}

	// Zero interval compares against the previous call instead of sleeping.
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		resp["cpu"] = map[string]interface{}{
			"usage_percent": fmt.Sprintf("%.2f%%", cpuPercent[0]),
		}
	}

	if dbHealth["status"] != "up" {
		resp["status"] = "degraded"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
