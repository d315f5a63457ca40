package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobService handles database operations for dither jobs
type JobService struct {
	db *gorm.DB
}

// NewJobService creates a new job service
func NewJobService(db *gorm.DB) *JobService {
	return &JobService{db: db}
}

// ListOptions filters and pages List
type ListOptions struct {
	Status JobStatus
	Mode   string
	Limit  int
	Offset int
}

// Create stores a new pending job and fills in its ID
func (s *JobService) Create(job *DitherJob) error {
	job.Status = JobPending
	if err := s.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Complete marks a job as succeeded
func (s *JobService) Complete(id uuid.UUID, width, height int, duration time.Duration, outputPath string) error {
	return s.update(id, map[string]interface{}{
		"status":      JobSucceeded,
		"width":       width,
		"height":      height,
		"duration_ms": duration.Milliseconds(),
		"output_path": outputPath,
		"error":       "",
	})
}

// Fail marks a job as failed with the given cause
func (s *JobService) Fail(id uuid.UUID, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.update(id, map[string]interface{}{
		"status": JobFailed,
		"error":  msg,
	})
}

func (s *JobService) update(id uuid.UUID, fields map[string]interface{}) error {
	result := s.db.Model(&DitherJob{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Get returns a job by ID. A missing job yields gorm.ErrRecordNotFound.
func (s *JobService) Get(id uuid.UUID) (*DitherJob, error) {
	var job DitherJob
	if err := s.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns jobs newest first along with the total matching count
func (s *JobService) List(opts ListOptions) ([]DitherJob, int64, error) {
	query := s.db.Model(&DitherJob{})
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Mode != "" {
		query = query.Where("mode = ?", opts.Mode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var jobs []DitherJob
	if err := query.Order("created_at DESC").Limit(limit).Offset(opts.Offset).Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

// DeleteOlderThan removes jobs created before cutoff
func (s *JobService) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", cutoff).Delete(&DitherJob{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
