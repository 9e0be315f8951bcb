package entity

import "time"

// KnowledgeEntry pregunta/respuesta con la que se entrena el chatbot de la tienda.
type KnowledgeEntry struct {
	ID        string
	Question  string
	Answer    string
	Tags      []string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
