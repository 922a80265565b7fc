package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) FetchItems(ctx context.Context, containerID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, container_id, type, group_id, position_in_group, ordinal,
		prompt_html, choices_json, answer_key_json, explanation, points
		FROM questions WHERE container_id=$1 ORDER BY id`, containerID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var (
			q                    Question
			typ                  string
			gid, pos, ord        sql.NullInt64
			choicesJSON, keyJSON string
		)
		if err := rows.Scan(&q.ID, &q.ContainerID, &typ, &gid, &pos, &ord,
			&q.PromptHTML, &choicesJSON, &keyJSON, &q.Explanation, &q.Points); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = Type(typ)
		q.GroupID = fromNull(gid)
		q.PositionInGroup = fromNull(pos)
		q.Ordinal = fromNull(ord)
		if choicesJSON != "" {
			if err := json.Unmarshal([]byte(choicesJSON), &q.Choices); err != nil {
				return nil, fmt.Errorf("question %s choices: %w", q.ID, err)
			}
		}
		if keyJSON != "" {
			if err := json.Unmarshal([]byte(keyJSON), &q.AnswerKey); err != nil {
				return nil, fmt.Errorf("question %s answer key: %w", q.ID, err)
			}
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateItem(ctx context.Context, q Question) error {
	if q.ID == "" {
		return fmt.Errorf("update question: %w", ErrNotFound)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("update question %s: unknown type %q", q.ID, q.Type)
	}
	cj, err := marshalOrEmpty(q.Choices)
	if err != nil {
		return err
	}
	kj, err := marshalOrEmpty(q.AnswerKey)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questions
		(id, container_id, type, group_id, position_in_group, ordinal,
		 prompt_html, choices_json, answer_key_json, explanation, points, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET container_id=EXCLUDED.container_id, type=EXCLUDED.type,
		 group_id=EXCLUDED.group_id, position_in_group=EXCLUDED.position_in_group, ordinal=EXCLUDED.ordinal,
		 prompt_html=EXCLUDED.prompt_html, choices_json=EXCLUDED.choices_json,
		 answer_key_json=EXCLUDED.answer_key_json, explanation=EXCLUDED.explanation,
		 points=EXCLUDED.points, updated_at=EXCLUDED.updated_at`,
		q.ID, q.ContainerID, string(q.Type), toNull(q.GroupID), toNull(q.PositionInGroup), toNull(q.Ordinal),
		q.PromptHTML, cj, kj, q.Explanation, q.Points, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert question %s: %w", q.ID, err)
	}
	return nil
}

func marshalOrEmpty(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "", nil
	}
	return string(b), nil
}

func fromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return IntPtr(int(n.Int64))
}

func toNull(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
