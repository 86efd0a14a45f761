package dto

import "time"

// CreateClassRequest represents a class creation request
type CreateClassRequest struct {
	Nombre      string `json:"nombre" binding:"required" example:"Biology 101"`
	Descripcion string `json:"descripcion" example:"Intro to cell biology"`
}

// UpdateClassRequest represents a class metadata patch. The join code is
// immutable and never part of the patch.
type UpdateClassRequest struct {
	Nombre      *string `json:"nombre,omitempty"`
	Descripcion *string `json:"descripcion,omitempty"`
}

// RosterEntryResponse is one enrolled student on a class
type RosterEntryResponse struct {
	AlumnoID         int64     `json:"alumnoId"`
	AlumnoEmail      string    `json:"alumnoEmail"`
	FechaInscripcion time.Time `json:"fechaInscripcion"`
}

// ClassResponse represents a class as returned to members
type ClassResponse struct {
	ID            int64                 `json:"id"`
	Nombre        string                `json:"nombre"`
	Descripcion   string                `json:"descripcion"`
	Codigo        string                `json:"codigo"`
	MaestroID     int64                 `json:"maestroId"`
	MaestroName   string                `json:"maestroName"`
	FechaCreacion time.Time             `json:"fechaCreacion"`
	FechaEdicion  *time.Time            `json:"fechaEdicion,omitempty"`
	AlumnoCount   int                   `json:"alumnoCount"`
	Alumnos       []RosterEntryResponse `json:"alumnos,omitempty"`
}

// ClassListResponse wraps the classes visible to a user
type ClassListResponse struct {
	Classes []ClassResponse `json:"classes"`
}
