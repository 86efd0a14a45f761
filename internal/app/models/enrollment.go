package models

import "time"

// Enrollment defines the enrollment model based on the 'inscripciones' table.
// It is the authoritative record that a student belongs to a class; a student
// holds at most one enrollment per class.
type Enrollment struct {
	ID               int64     `json:"id" db:"id"`
	ClaseID          int64     `json:"claseId" db:"clase_id"`
	AlumnoID         int64     `json:"alumnoId" db:"alumno_id"`
	AlumnoEmail      string    `json:"alumnoEmail" db:"alumno_email"`
	FechaInscripcion time.Time `json:"fechaInscripcion" db:"fecha_inscripcion"`
}
