package models

import "time"

// Class defines the class model based on the 'clases' table. Persisted field
// names stay domain-specific (nombre, codigo, maestroId...) to match the
// stored records 1:1.
type Class struct {
	ID            int64      `json:"id" db:"id"`
	Nombre        string     `json:"nombre" db:"nombre"`                         // Class display name
	Descripcion   string     `json:"descripcion" db:"descripcion"`               // Free-form description, may be empty
	Codigo        string     `json:"codigo" db:"codigo"`                         // 6-char uppercase alphanumeric join code, unique and immutable
	MaestroID     int64      `json:"maestroId" db:"maestro_id"`                  // Owning teacher's user id
	MaestroName   string     `json:"maestroName" db:"maestro_name"`              // Denormalized owner display name
	FechaCreacion time.Time  `json:"fechaCreacion" db:"fecha_creacion"`          // Creation timestamp
	FechaEdicion  *time.Time `json:"fechaEdicion,omitempty" db:"fecha_edicion"`  // Last metadata edit, nil if never edited

	// Roster is computed from enrollments on read; it is never stored on the
	// class row, so it cannot drift from the enrollment records.
	Alumnos []RosterEntry `json:"alumnos,omitempty"`
}

// RosterEntry is one enrolled student as exposed on a class
type RosterEntry struct {
	AlumnoID         int64     `json:"alumnoId" db:"alumno_id"`
	AlumnoEmail      string    `json:"alumnoEmail" db:"alumno_email"`
	FechaInscripcion time.Time `json:"fechaInscripcion" db:"fecha_inscripcion"`
}
