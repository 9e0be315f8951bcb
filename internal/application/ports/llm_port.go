package ports

import "context"

// LLMService define el puerto de salida hacia el modelo de lenguaje del chatbot.
// La aplicación solo conoce este contrato, no el proveedor concreto.
type LLMService interface {
	// Answer responde question usando system como instrucciones y contexto.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	Answer(ctx context.Context, system, question string) (string, error)
}
