package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/ayadav/gojo/internal/profile"
	"github.com/ayadav/gojo/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_message (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_message_session ON chat_message (session_id, id);
`

// DB is the sqlite driver.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a sqlite database at the profile's DSN and bootstraps the schema.
func NewDB(profile *profile.Profile) (*DB, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	sqliteDB, err := sql.Open("sqlite", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := &DB{db: sqliteDB, profile: profile}
	if _, err := driver.db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "failed to bootstrap chat_message schema")
	}
	return driver, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) ListChatMessages(ctx context.Context, sessionID string) ([]*store.ChatMessage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT uid, session_id, role, content, created_ts
		FROM chat_message
		WHERE session_id = ?
		ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat messages")
	}
	defer rows.Close()

	var messages []*store.ChatMessage
	for rows.Next() {
		message := &store.ChatMessage{}
		if err := rows.Scan(&message.UID, &message.SessionID, &message.Role, &message.Content, &message.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan chat message")
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate chat messages")
	}
	return messages, nil
}

func (d *DB) AppendChatMessage(ctx context.Context, create *store.ChatMessage) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chat_message (uid, session_id, role, content, created_ts)
		VALUES (?, ?, ?, ?, ?)`,
		create.UID, create.SessionID, create.Role, create.Content, create.CreatedTs,
	); err != nil {
		return errors.Wrap(err, "failed to insert chat message")
	}

	// Prune in the same transaction so the retention invariant holds under
	// concurrent appends.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM chat_message
		WHERE session_id = ? AND id NOT IN (
			SELECT id FROM chat_message
			WHERE session_id = ?
			ORDER BY id DESC
			LIMIT ?
		)`,
		create.SessionID, create.SessionID, store.MaxHistory,
	); err != nil {
		return errors.Wrap(err, "failed to prune chat messages")
	}

	return tx.Commit()
}

var _ store.Driver = (*DB)(nil)
