package models

import (
	"time"
)

type Resume struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OriginalFilename string    `gorm:"type:text" json:"original_filename"`
	TextContent      string    `gorm:"type:text;not null" json:"-"`
	FileSize         int64     `json:"file_size"`
	UploadedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"uploaded_at"`
}

func (Resume) TableName() string {
	return "resumes"
}
