package chat_store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
)

// ErrNotFound is returned when a referenced session or message is absent.
var ErrNotFound = errors.New("not found")

// Store persists chat sessions, messages and extracted user facts.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) CreateSession(ctx context.Context, userID, title string) (chat_type.ChatSession, error) {
	var session chat_type.ChatSession
	err := s.db.QueryRow(ctx, `
        INSERT INTO chat_sessions (user_id, title)
        VALUES ($1, $2)
        RETURNING id, user_id, title, created_at, updated_at
    `, userID, title).Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return chat_type.ChatSession{}, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (s *Store) GetSessionsByUser(ctx context.Context, userID string) ([]chat_type.ChatSession, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, title, created_at, updated_at
        FROM chat_sessions
        WHERE user_id = $1
        ORDER BY updated_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]chat_type.ChatSession, 0)
	for rows.Next() {
		var session chat_type.ChatSession
		if err := rows.Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SaveMessage(ctx context.Context, sessionID, role, content string) (chat_type.ChatMessage, error) {
	var msg chat_type.ChatMessage
	err := s.db.QueryRow(ctx, `
        INSERT INTO chat_messages (session_id, role, content)
        VALUES ($1, $2, $3)
        RETURNING id, session_id, role, content, created_at
    `, sessionID, role, content).Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt)
	if err != nil {
		return chat_type.ChatMessage{}, fmt.Errorf("failed to save message: %w", err)
	}

	if _, err := s.db.Exec(ctx, `UPDATE chat_sessions SET updated_at = NOW() WHERE id = $1`, sessionID); err != nil {
		s.logger.Warn("Failed to bump session updated_at",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
	return msg, nil
}

func (s *Store) GetMessages(ctx context.Context, sessionID string) ([]chat_type.ChatMessage, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM chat_sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.Query(ctx, `
        SELECT id, session_id, role, content, created_at
        FROM chat_messages
        WHERE session_id = $1
        ORDER BY created_at ASC
    `, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]chat_type.ChatMessage, 0)
	for rows.Next() {
		var msg chat_type.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// RecentMessages returns the last limit messages in chronological order.
func (s *Store) RecentMessages(ctx context.Context, sessionID string, limit int) ([]chat_type.ChatMessage, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, session_id, role, content, created_at
        FROM (
            SELECT id, session_id, role, content, created_at
            FROM chat_messages
            WHERE session_id = $1
            ORDER BY created_at DESC
            LIMIT $2
        ) recent
        ORDER BY created_at ASC
    `, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %w", err)
	}
	defer rows.Close()

	messages := make([]chat_type.ChatMessage, 0, limit)
	for rows.Next() {
		var msg chat_type.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *Store) FactsForUser(ctx context.Context, userID string) ([]chat_type.UserFact, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, fact, category, created_at
        FROM user_facts
        WHERE user_id = $1
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user facts: %w", err)
	}
	defer rows.Close()

	facts := make([]chat_type.UserFact, 0)
	for rows.Next() {
		var fact chat_type.UserFact
		if err := rows.Scan(&fact.ID, &fact.UserID, &fact.Fact, &fact.Category, &fact.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user fact: %w", err)
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

func (s *Store) UpsertUserFact(ctx context.Context, userID, fact, category string) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO user_facts (user_id, fact, category)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, fact) DO UPDATE SET category = EXCLUDED.category
    `, userID, fact, category)
	if err != nil {
		return fmt.Errorf("failed to upsert user fact: %w", err)
	}
	return nil
}

// IsNoRows reports a pgx empty-result error.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
