package controllers

import (
	"fmt"
	"net/http"
	"storybank/internal/services"
	"storybank/internal/structures"
	"time"
)

type HealthController struct {
	cache     services.CacheStoreInterface
	driver    string
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Driver        string  `json:"driver"`
	Keys          int     `json:"keys"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Driver:        hc.driver,
		Keys:          hc.cache.Count(),
	})
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(conf *structures.Config, cache services.CacheStoreInterface) *HealthController {
	driver := conf.Storage.Driver
	if driver == "" {
		driver = "memory"
	}
	return &HealthController{
		cache:     cache,
		driver:    driver,
		startTime: time.Now(),
	}
}
