package entities

import "time"

// Experiment groups the condition arms of one study. Rows are authored by an
// external admin process; this service only reads them.
type Experiment struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID    string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name        string  `gorm:"type:varchar(256);not null"`
	Description *string `gorm:"type:text"`
	Status      string  `gorm:"type:varchar(20);not null;default:'draft'"`
}

// TableName specifies the table name for Experiment.
func (Experiment) TableName() string {
	return "experiments"
}
