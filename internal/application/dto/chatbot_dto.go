package dto

import "time"

// KnowledgeEntryRequest alta o modificación de una entrada de la base de conocimiento.
type KnowledgeEntryRequest struct {
	Question string   `json:"question" validate:"required,max=500"`
	Answer   string   `json:"answer" validate:"required,max=4000"`
	Tags     []string `json:"tags" validate:"dive,max=40"`
	Active   *bool    `json:"active"`
}

// KnowledgeEntryResponse salida de una entrada.
type KnowledgeEntryResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Tags      []string  `json:"tags"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AskRequest pregunta de un cliente al chatbot.
type AskRequest struct {
	Question string `json:"question" validate:"required,max=1000"`
}

// AskResponse respuesta del chatbot con las entradas usadas como contexto.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}
