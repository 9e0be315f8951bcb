package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.KnowledgeRepository = (*KnowledgeRepo)(nil)

// KnowledgeRepo persistencia de la base de conocimiento del chatbot.
type KnowledgeRepo struct {
	q Querier
}

// NewKnowledgeRepository construye el adaptador.
func NewKnowledgeRepository(q Querier) *KnowledgeRepo {
	return &KnowledgeRepo{q: q}
}

func scanKnowledge(row pgx.Row) (*entity.KnowledgeEntry, error) {
	var k entity.KnowledgeEntry
	if err := row.Scan(&k.ID, &k.Question, &k.Answer, &k.Tags, &k.Active, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	return &k, nil
}

func tagsArg(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (r *KnowledgeRepo) Create(ctx context.Context, entry *entity.KnowledgeEntry) error {
	query := `
		INSERT INTO knowledge_entries (id, question, answer, tags, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, entry.ID, entry.Question, entry.Answer, tagsArg(entry.Tags), entry.Active,
		entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert knowledge entry: %w", mapPgError(err, ""))
	}
	return nil
}

func (r *KnowledgeRepo) GetByID(ctx context.Context, id string) (*entity.KnowledgeEntry, error) {
	k, err := scanKnowledge(r.q.QueryRow(ctx,
		`SELECT id, question, answer, tags, active, created_at, updated_at FROM knowledge_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get knowledge entry: %w", err)
	}
	return k, nil
}

func (r *KnowledgeRepo) Update(ctx context.Context, entry *entity.KnowledgeEntry) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE knowledge_entries SET question = $2, answer = $3, tags = $4, active = $5, updated_at = $6 WHERE id = $1`,
		entry.ID, entry.Question, entry.Answer, tagsArg(entry.Tags), entry.Active, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update knowledge entry: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *KnowledgeRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM knowledge_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete knowledge entry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *KnowledgeRepo) List(ctx context.Context, onlyActive bool) ([]*entity.KnowledgeEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, question, answer, tags, active, created_at, updated_at
		FROM knowledge_entries
		WHERE NOT $1 OR active
		ORDER BY created_at`, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list knowledge entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.KnowledgeEntry
	for rows.Next() {
		k, err := scanKnowledge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan knowledge entry: %w", err)
		}
		list = append(list, k)
	}
	return list, rows.Err()
}
