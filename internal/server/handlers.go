package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dutyboard/internal/schedule"
	"dutyboard/internal/version"
)

// dutyJSON is the wire shape of one day in the weeks grid. date_str is the
// short display form, recomputed from the date rather than taken from the
// spreadsheet label.
type dutyJSON struct {
	Date    string `json:"date"`
	Morning string `json:"morning"`
	Evening string `json:"evening"`
	DateStr string `json:"date_str"`
	Weekday string `json:"weekday"`
}

type todayJSON struct {
	Morning string `json:"morning"`
	Evening string `json:"evening"`
	Date    string `json:"date"`
}

func toDutyJSON(r schedule.DutyRecord) dutyJSON {
	return dutyJSON{
		Date:    r.Date.Format("2006-01-02"),
		Morning: r.Morning,
		Evening: r.Evening,
		DateStr: r.Date.Format("02.01"),
		Weekday: r.Weekday,
	}
}

func (s *Server) handleData(c *gin.Context) {
	now := s.roster.Now()

	var today *todayJSON
	if rec, ok := s.roster.Today(); ok {
		today = &todayJSON{
			Morning: rec.Morning,
			Evening: rec.Evening,
			Date:    rec.Date.Format("2006-01-02"),
		}
	}

	weeks := s.roster.TwoWorkWeeks()
	weeksJSON := make([][]dutyJSON, 0, len(weeks))
	for _, week := range weeks {
		wj := make([]dutyJSON, 0, len(week))
		for _, r := range week {
			wj = append(wj, toDutyJSON(r))
		}
		weeksJSON = append(weeksJSON, wj)
	}

	h := s.roster.Health()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"today":       now.Format("2006-01-02"),
			"today_duty":  today,
			"weeks":       weeksJSON,
			"last_update": unixOrZero(h.LastUpdate),
			"error":       h.LastError,
		},
		"timestamp": float64(time.Now().UnixMilli()) / 1000,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	h := s.roster.Health()
	ntpSynced := false
	var lastNTP time.Time
	if s.clock != nil {
		ntpSynced = s.clock.Synced()
		lastNTP = s.clock.LastSync()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"data_loaded":      h.DataLoaded,
		"last_data_update": unixOrZero(h.LastUpdate),
		"last_error":       h.LastError,
		"ntp_synced":       ntpSynced,
		"last_ntp_sync":    unixOrZero(lastNTP),
		"timestamp":        float64(time.Now().UnixMilli()) / 1000,
	})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": version.Version})
}

type indexWeekDay struct {
	DateStr string
	Weekday string
	Morning string
	Evening string
	IsToday bool
}

func (s *Server) handleIndex(c *gin.Context) {
	now := s.roster.Now()
	todayRec, hasToday := s.roster.Today()
	h := s.roster.Health()

	lastUpdated := "00:00"
	if !h.LastUpdate.IsZero() {
		lastUpdated = h.LastUpdate.Format("15:04")
	}

	weeks := s.roster.TwoWorkWeeks()
	viewWeeks := make([][]indexWeekDay, 0, len(weeks))
	todayDate := schedule.DateOnly(now)
	for _, week := range weeks {
		vw := make([]indexWeekDay, 0, len(week))
		for _, r := range week {
			vw = append(vw, indexWeekDay{
				DateStr: r.Date.Format("02.01"),
				Weekday: r.Weekday,
				Morning: r.Morning,
				Evening: r.Evening,
				IsToday: r.Date.Equal(todayDate),
			})
		}
		viewWeeks = append(viewWeeks, vw)
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"HasToday":    hasToday,
		"Today":       todayRec,
		"Weeks":       viewWeeks,
		"CurrentTime": now.Format("15:04:05"),
		"LastUpdated": lastUpdated,
		"Error":       h.LastError,
		"Version":     version.Version,
	})
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
