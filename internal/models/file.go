package models

import "github.com/google/uuid"

type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

// ValidFileType reports whether value is one of the accepted record types.
func ValidFileType(value string) bool {
	switch FileType(value) {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	default:
		return false
	}
}

// File is a stored file or folder record. LocalPath is the storage key of
// the uploaded bytes; it is set only for non-folder records and is never
// serialized in API responses.
type File struct {
	BaseModel
	Name      string     `json:"name" gorm:"type:varchar(255);not null"`
	Type      FileType   `json:"type" gorm:"type:varchar(20);not null;index"`
	ParentID  *uuid.UUID `json:"parentId,omitempty" gorm:"type:uuid;index"`
	OwnerID   uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	IsPublic  bool       `json:"isPublic" gorm:"not null;default:false"`
	LocalPath string     `json:"-" gorm:"type:text"`

	Parent   *File  `json:"-" gorm:"foreignKey:ParentID"`
	Children []File `json:"-" gorm:"foreignKey:ParentID"`
	Owner    User   `json:"-" gorm:"foreignKey:OwnerID;references:ID"`
}

func (File) TableName() string {
	return "files"
}

func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}
