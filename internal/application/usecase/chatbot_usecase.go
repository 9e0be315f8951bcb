package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/textfold"
)

const (
	maxContextEntries = 8
	llmTimeout        = 10 * time.Second
)

const chatbotSystemPrompt = `Sos el asistente de atención al cliente de la tienda.
Respondé en español, en forma breve y cordial, usando SOLO la información de la base de conocimiento.
Si la respuesta no está en la base, decí que no tenés ese dato y sugerí contactar a la tienda.

Base de conocimiento:
`

// ChatbotUseCase base de conocimiento del chatbot y consultas al modelo.
type ChatbotUseCase struct {
	repo repository.KnowledgeRepository
	llm  ports.LLMService
}

// NewChatbotUseCase construye el caso de uso. llm puede ser nil si el chatbot no está habilitado.
func NewChatbotUseCase(repo repository.KnowledgeRepository, llm ports.LLMService) *ChatbotUseCase {
	return &ChatbotUseCase{repo: repo, llm: llm}
}

// Create agrega una entrada (activa por defecto).
func (uc *ChatbotUseCase) Create(ctx context.Context, in dto.KnowledgeEntryRequest) (*dto.KnowledgeEntryResponse, error) {
	now := time.Now()
	e := &entity.KnowledgeEntry{
		ID:        uuid.New().String(),
		Question:  strings.TrimSpace(in.Question),
		Answer:    strings.TrimSpace(in.Answer),
		Tags:      normalizeTags(in.Tags),
		Active:    in.Active == nil || *in.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if e.Question == "" || e.Answer == "" {
		return nil, fmt.Errorf("%w: pregunta y respuesta son obligatorias", domain.ErrInvalidInput)
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return toKnowledgeResponse(e), nil
}

// Update reemplaza la entrada.
func (uc *ChatbotUseCase) Update(ctx context.Context, id string, in dto.KnowledgeEntryRequest) (*dto.KnowledgeEntryResponse, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	e.Question = strings.TrimSpace(in.Question)
	e.Answer = strings.TrimSpace(in.Answer)
	e.Tags = normalizeTags(in.Tags)
	if in.Active != nil {
		e.Active = *in.Active
	}
	if e.Question == "" || e.Answer == "" {
		return nil, fmt.Errorf("%w: pregunta y respuesta son obligatorias", domain.ErrInvalidInput)
	}
	e.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return toKnowledgeResponse(e), nil
}

// Delete elimina la entrada.
func (uc *ChatbotUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// List lista las entradas; onlyActive filtra las desactivadas.
func (uc *ChatbotUseCase) List(ctx context.Context, onlyActive bool) ([]dto.KnowledgeEntryResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.KnowledgeEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, *toKnowledgeResponse(e))
	}
	return out, nil
}

// Ask responde la pregunta con las entradas activas más afines como contexto.
func (uc *ChatbotUseCase) Ask(ctx context.Context, in dto.AskRequest) (*dto.AskResponse, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: pregunta vacía", domain.ErrInvalidInput)
	}
	if uc.llm == nil {
		return nil, fmt.Errorf("chatbot: ANTHROPIC_API_KEY no configurado")
	}
	entries, err := uc.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	selected := selectEntries(entries, question, maxContextEntries)

	var b strings.Builder
	b.WriteString(chatbotSystemPrompt)
	sources := make([]string, 0, len(selected))
	for i, e := range selected {
		fmt.Fprintf(&b, "\n%d. P: %s\n   R: %s\n", i+1, e.Question, e.Answer)
		sources = append(sources, e.ID)
	}

	// Timeout de 10 s: las llamadas al LLM pueden demorar varios segundos.
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	answer, err := uc.llm.Answer(ctx, b.String(), question)
	if err != nil {
		return nil, fmt.Errorf("chatbot: %w", err)
	}
	return &dto.AskResponse{Answer: strings.TrimSpace(answer), Sources: sources}, nil
}

// selectEntries ordena por cantidad de palabras compartidas con la pregunta (pregunta, respuesta y tags).
// Sin coincidencias devuelve las primeras limit entradas.
func selectEntries(entries []*entity.KnowledgeEntry, question string, limit int) []*entity.KnowledgeEntry {
	words := textfold.Tokens(question, 3)
	type scored struct {
		e     *entity.KnowledgeEntry
		score int
	}
	ranked := make([]scored, 0, len(entries))
	for _, e := range entries {
		haystack := textfold.Fold(e.Question + " " + e.Answer + " " + strings.Join(e.Tags, " "))
		score := 0
		for _, w := range words {
			if strings.Contains(haystack, w) {
				score++
			}
		}
		ranked = append(ranked, scored{e, score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]*entity.KnowledgeEntry, len(ranked))
	for i, r := range ranked {
		out[i] = r.e
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = textfold.Fold(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func toKnowledgeResponse(e *entity.KnowledgeEntry) *dto.KnowledgeEntryResponse {
	return &dto.KnowledgeEntryResponse{
		ID:        e.ID,
		Question:  e.Question,
		Answer:    e.Answer,
		Tags:      e.Tags,
		Active:    e.Active,
		UpdatedAt: e.UpdatedAt,
	}
}
