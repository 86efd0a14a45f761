package dto

import "time"

// AttachmentPayload is one inline file submitted with a post. Data carries a
// `data:<mimeType>;base64,<bytes>` URI; declared type and size must match the
// decoded payload.
type AttachmentPayload struct {
	Name string `json:"name" binding:"required" example:"syllabus.pdf"`
	Type string `json:"type" binding:"required" example:"application/pdf"`
	Size int64  `json:"size" example:"52441"`
	Data string `json:"data" binding:"required"`
}

// CreatePostRequest represents a post creation request
type CreatePostRequest struct {
	Titulo    string              `json:"titulo" binding:"required" example:"Welcome"`
	Contenido string              `json:"contenido" binding:"required"`
	Archivos  []AttachmentPayload `json:"archivos"`
}

// UpdatePostRequest represents a post edit. Archivos is a full replacement
// list: unchanged attachments are resubmitted alongside any new ones.
type UpdatePostRequest struct {
	Titulo    string              `json:"titulo" binding:"required"`
	Contenido string              `json:"contenido" binding:"required"`
	Archivos  []AttachmentPayload `json:"archivos"`
}

// AttachmentResponse is one stored attachment on a post
type AttachmentResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data string `json:"data"`
}

// PostResponse represents a post in the class feed
type PostResponse struct {
	ID            int64                `json:"id"`
	ClaseID       int64                `json:"claseId"`
	Titulo        string               `json:"titulo"`
	Contenido     string               `json:"contenido"`
	Archivos      []AttachmentResponse `json:"archivos"`
	MaestroID     int64                `json:"maestroId"`
	MaestroName   string               `json:"maestroName"`
	FechaCreacion time.Time            `json:"fechaCreacion"`
	FechaEdicion  *time.Time           `json:"fechaEdicion,omitempty"`
}

// PostListResponse is one feed snapshot, ordered by fechaCreacion descending
type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
}
