package dto

type ReferenceRequest struct {
	Name string `json:"name" binding:"required,trimmin=3,max=100"`
}
