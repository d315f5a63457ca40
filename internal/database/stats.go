package database

import (
	"gorm.io/gorm"
)

// JobStats summarizes the job history
type JobStats struct {
	TotalJobs     int64            `json:"total_jobs"`
	Succeeded     int64            `json:"succeeded"`
	Failed        int64            `json:"failed"`
	Pending       int64            `json:"pending"`
	AvgDurationMs float64          `json:"avg_duration_ms"`
	ByMode        map[string]int64 `json:"by_mode"`
}

// GetJobStats returns job statistics
func GetJobStats(db *gorm.DB) (*JobStats, error) {
	stats := &JobStats{ByMode: map[string]int64{}}

	var byStatus []struct {
		Status JobStatus
		Count  int64
	}
	if err := db.Model(&DitherJob{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.TotalJobs += row.Count
		switch row.Status {
		case JobSucceeded:
			stats.Succeeded = row.Count
		case JobFailed:
			stats.Failed = row.Count
		case JobPending:
			stats.Pending = row.Count
		}
	}

	var byMode []struct {
		Mode  string
		Count int64
	}
	if err := db.Model(&DitherJob{}).Select("mode, COUNT(*) AS count").Group("mode").Scan(&byMode).Error; err != nil {
		return nil, err
	}
	for _, row := range byMode {
		stats.ByMode[row.Mode] = row.Count
	}

	// Average over successful runs only
	var avg struct{ Avg float64 }
	if err := db.Model(&DitherJob{}).Select("COALESCE(AVG(duration_ms), 0) AS avg").
		Where("status = ?", JobSucceeded).Scan(&avg).Error; err != nil {
		return nil, err
	}
	stats.AvgDurationMs = avg.Avg

	return stats, nil
}
