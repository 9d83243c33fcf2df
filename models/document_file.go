package models

import "time"

// DocumentFile represents the document_files table: uploaded attachments
// belonging to a routable document.
type DocumentFile struct {
	FileID       int        `gorm:"primaryKey;column:file_id" json:"file_id"`
	DocumentID   int        `gorm:"column:document_id" json:"document_id"`
	OriginalName string     `gorm:"column:original_name" json:"original_name"`
	StoredPath   string     `gorm:"column:stored_path" json:"stored_path"`
	FileSize     int64      `gorm:"column:file_size" json:"file_size"`
	MimeType     string     `gorm:"column:mime_type" json:"mime_type"`
	FileHash     string     `gorm:"column:file_hash" json:"file_hash"`
	UploadedBy   int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt   time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Uploader User `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
}

func (DocumentFile) TableName() string {
	return "document_files"
}

// IsValidDocumentMime reports whether the mime type is accepted for upload.
func (f *DocumentFile) IsValidDocumentMime() bool {
	validTypes := []string{
		"application/pdf",
		"image/jpeg",
		"image/jpg",
		"image/png",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	for _, validType := range validTypes {
		if f.MimeType == validType {
			return true
		}
	}
	return false
}

// GetFileSizeInMB returns the size in megabytes for display.
func (f *DocumentFile) GetFileSizeInMB() float64 {
	return float64(f.FileSize) / (1024 * 1024)
}
