package models

import "time"

// Attachment limits enforced before any write
const (
	MaxAttachmentsPerPost = 5
	MaxAttachmentSize     = 1 << 20 // 1 MiB, inline Base64 storage
)

// AllowedAttachmentTypes is the closed set of accepted MIME types
var AllowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Post defines the announcement model based on the 'publicaciones' table.
// Archivos is stored inline as JSONB, capped by MaxAttachmentsPerPost; the
// author (MaestroID) is always the owning teacher of the class.
type Post struct {
	ID            int64        `json:"id" db:"id"`
	ClaseID       int64        `json:"claseId" db:"clase_id"`
	Titulo        string       `json:"titulo" db:"titulo"`
	Contenido     string       `json:"contenido" db:"contenido"`
	Archivos      []Attachment `json:"archivos" db:"archivos"`
	MaestroID     int64        `json:"maestroId" db:"maestro_id"`
	MaestroName   string       `json:"maestroName" db:"maestro_name"`
	FechaCreacion time.Time    `json:"fechaCreacion" db:"fecha_creacion"`
	FechaEdicion  *time.Time   `json:"fechaEdicion,omitempty" db:"fecha_edicion"`
}

// Attachment is one inline file on a post. Immutable once persisted; edits
// resubmit the full replacement list.
type Attachment struct {
	Name string `json:"name"` // Original filename
	Type string `json:"type"` // MIME type, member of AllowedAttachmentTypes
	Size int64  `json:"size"` // Decoded size in bytes
	Data string `json:"data"` // data:<mimeType>;base64,<bytes>
}
