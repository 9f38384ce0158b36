package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initTaskSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initTaskSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			description TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'NORMAL',
			status TEXT NOT NULL DEFAULT 'TODO',
			deadline TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_owner_created ON tasks (owner_id, created_at DESC, id DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init task schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, ownerID string, p CreateParams) (Task, error) {
	p = p.withDefaults()
	task := Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Description: p.Description,
		Priority:    p.Priority,
		Status:      p.Status,
		Deadline:    p.Deadline,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO tasks (id, owner_id, description, priority, status, deadline, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		task.ID,
		task.OwnerID,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.Deadline,
		task.CreatedAt,
	)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (s *PostgresStore) Get(ctx context.Context, taskID string) (Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, description, priority, status, deadline, created_at
		   FROM tasks WHERE id=$1`,
		taskID,
	)
	task, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Task{}, ErrStoreNotFound
		}
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *PostgresStore) FindMany(ctx context.Context, ownerID string, f Filter, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 20
	}

	query := strings.Builder{}
	query.WriteString(
		`SELECT id, owner_id, description, priority, status, deadline, created_at
		   FROM tasks WHERE owner_id=$1`)
	args := []any{ownerID}
	if f.Priority != nil {
		args = append(args, string(*f.Priority))
		fmt.Fprintf(&query, ` AND priority=$%d`, len(args))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		fmt.Fprintf(&query, ` AND status=$%d`, len(args))
	}
	args = append(args, limit)
	fmt.Fprintf(&query, ` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]Task, 0, limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, taskID string, p UpdateParams) (Task, error) {
	set := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if p.Description != nil {
		args = append(args, *p.Description)
		set = append(set, fmt.Sprintf("description=$%d", len(args)))
	}
	if p.Priority != nil {
		args = append(args, string(*p.Priority))
		set = append(set, fmt.Sprintf("priority=$%d", len(args)))
	}
	if p.Status != nil {
		args = append(args, string(*p.Status))
		set = append(set, fmt.Sprintf("status=$%d", len(args)))
	}
	if p.Deadline != nil {
		args = append(args, *p.Deadline)
		set = append(set, fmt.Sprintf("deadline=$%d", len(args)))
	}
	if len(set) == 0 {
		return s.Get(ctx, taskID)
	}

	args = append(args, taskID)
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(
			`UPDATE tasks SET %s WHERE id=$%d
			 RETURNING id, owner_id, description, priority, status, deadline, created_at`,
			strings.Join(set, ", "), len(args)),
		args...,
	)
	task, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Task{}, ErrStoreNotFound
		}
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *PostgresStore) Delete(ctx context.Context, taskID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, taskID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanTask(row pgx.Row) (Task, error) {
	var (
		task             Task
		priority         string
		status           string
		deadlineNullable *time.Time
	)
	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Description,
		&priority,
		&status,
		&deadlineNullable,
		&task.CreatedAt,
	); err != nil {
		return Task{}, err
	}
	task.Priority = Priority(priority)
	task.Status = Status(status)
	task.Deadline = deadlineNullable
	return task, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
