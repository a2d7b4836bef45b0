// Package session persists question/answer history.
//
// A session groups the exchanges of one conversation; each exchange records
// the question, the generated answer, and the dataset names it cited. History
// lives in PostgreSQL so the web UI, the API, and CLI runs share it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samarthdata/samarth/internal/log"
)

// ErrNotFound indicates the session does not exist.
var ErrNotFound = errors.New("session: not found")

// Session is one conversation.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Exchange is one question and its answer within a session.
type Exchange struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}

// Querier is the subset of pgx operations the store needs.
// *pgxpool.Pool satisfies this; tests substitute a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists sessions and exchanges. Safe for concurrent use.
type Store struct {
	q      Querier
	logger log.Logger
}

// New creates a session store.
func New(q Querier, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{q: q, logger: logger}
}

// Create starts a new session. An empty title is allowed; the UI derives one
// from the first question later.
func (s *Store) Create(ctx context.Context, title string) (Session, error) {
	sess := Session{ID: uuid.New(), Title: title}

	err := s.q.QueryRow(ctx, `
		INSERT INTO qa_sessions (id, title)
		VALUES ($1, $2)
		RETURNING created_at, updated_at`,
		sess.ID, sess.Title).Scan(&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Debug("created session", "id", sess.ID, "title", sess.Title)
	return sess, nil
}

// Get returns one session by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	var sess Session
	err := s.q.QueryRow(ctx,
		`SELECT id, title, created_at, updated_at FROM qa_sessions WHERE id = $1`, id).
		Scan(&sess.ID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("getting session %s: %w", id, err)
	}
	return sess, nil
}

// List returns sessions ordered by most recently updated.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.q.Query(ctx, `
		SELECT id, title, created_at, updated_at
		FROM qa_sessions
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return out, nil
}

// Delete removes a session and its exchanges (CASCADE).
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM qa_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Debug("deleted session", "id", id)
	return nil
}

// AddExchange records one question/answer pair and bumps the session's
// updated_at. If the session has no title yet, the question becomes it.
func (s *Store) AddExchange(ctx context.Context, sessionID uuid.UUID, question, answer string, sources []string) (Exchange, error) {
	if sources == nil {
		sources = []string{}
	}
	ex := Exchange{
		ID:        uuid.New(),
		SessionID: sessionID,
		Question:  question,
		Answer:    answer,
		Sources:   sources,
	}

	err := s.q.QueryRow(ctx, `
		INSERT INTO qa_exchanges (id, session_id, question, answer, sources)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		ex.ID, ex.SessionID, ex.Question, ex.Answer, ex.Sources).Scan(&ex.CreatedAt)
	if err != nil {
		return Exchange{}, fmt.Errorf("adding exchange to session %s: %w", sessionID, err)
	}

	_, err = s.q.Exec(ctx, `
		UPDATE qa_sessions
		SET updated_at = now(),
		    title = CASE WHEN title = '' THEN $2 ELSE title END
		WHERE id = $1`,
		sessionID, truncateTitle(question))
	if err != nil {
		return Exchange{}, fmt.Errorf("updating session %s: %w", sessionID, err)
	}

	s.logger.Debug("added exchange", "session_id", sessionID, "exchange_id", ex.ID)
	return ex, nil
}

// Exchanges returns a session's exchanges in chronological order.
func (s *Store) Exchanges(ctx context.Context, sessionID uuid.UUID) ([]Exchange, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, session_id, question, answer, sources, created_at
		FROM qa_exchanges
		WHERE session_id = $1
		ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.ID, &ex.SessionID, &ex.Question, &ex.Answer, &ex.Sources, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exchanges: %w", err)
	}
	return out, nil
}

// maxTitleLen keeps derived titles short enough for list views.
const maxTitleLen = 80

// truncateTitle shortens a question to a list-view title. The cut lands on a
// rune boundary; a byte cut through a Devanagari question would produce
// invalid UTF-8 that Postgres rejects.
func truncateTitle(q string) string {
	if len(q) <= maxTitleLen {
		return q
	}

	cut := maxTitleLen - 3
	for cut > 0 && !utf8.RuneStart(q[cut]) {
		cut--
	}
	return q[:cut] + "..."
}
