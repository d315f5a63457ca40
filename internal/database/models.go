package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JobStatus tracks a dither job through its lifetime
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// DitherJob records one dithering request made through the API
type DitherJob struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Mode       string         `gorm:"size:32;not null;index" json:"mode"`
	Palette    datatypes.JSON `json:"palette"` // hex colors
	Reducer    string         `gorm:"size:32" json:"reducer,omitempty"`
	Preset     string         `gorm:"size:64" json:"preset,omitempty"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Status     JobStatus      `gorm:"size:16;not null;default:'pending';index" json:"status"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	OutputPath string         `json:"-"`
	SourceIP   string         `gorm:"size:64" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID if not already set
func (j *DitherJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobPending
	}
	return nil
}

// SetPalette stores colors as a JSON array
func (j *DitherJob) SetPalette(hex []string) error {
	data, err := json.Marshal(hex)
	if err != nil {
		return err
	}
	j.Palette = datatypes.JSON(data)
	return nil
}

// PaletteHex decodes the stored palette
func (j *DitherJob) PaletteHex() []string {
	var hex []string
	if len(j.Palette) == 0 {
		return nil
	}
	if err := json.Unmarshal(j.Palette, &hex); err != nil {
		return nil
	}
	return hex
}

// GetAllModels returns all models for auto-migration
func GetAllModels() []interface{} {
	return []interface{}{
		&DitherJob{},
	}
}
