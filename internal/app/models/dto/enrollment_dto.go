package dto

// JoinClassRequest represents a join-by-code request. The code is normalized
// to uppercase before lookup.
type JoinClassRequest struct {
	Codigo string `json:"codigo" binding:"required" example:"A1B2C3"`
}
