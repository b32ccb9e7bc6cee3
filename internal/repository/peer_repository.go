package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
)

const peerColumns = `platform, chat_id, selected_schedule, selected_schedule_type, selecting_schedule, created_at, updated_at`

// PeerRepository persists messenger dialogue state. Rows are created on
// first contact and updated per interaction, never deleted.
type PeerRepository struct {
	db *sqlx.DB
}

// NewPeerRepository creates a new peer repository.
func NewPeerRepository(db *sqlx.DB) *PeerRepository {
	return &PeerRepository{db: db}
}

// GetOrCreate returns the peer row for the platform chat, inserting a
// blank one on first contact. The second return reports whether the row
// was just created.
func (r *PeerRepository) GetOrCreate(ctx context.Context, platform models.Platform, chatID int64) (models.Peer, bool, error) {
	const insert = `INSERT INTO peers (platform, chat_id, selected_schedule, selected_schedule_type, selecting_schedule, created_at, updated_at)
		VALUES ($1, $2, '', 'group', FALSE, NOW(), NOW())
		ON CONFLICT (platform, chat_id) DO NOTHING
		RETURNING ` + peerColumns

	var peer models.Peer
	err := r.db.GetContext(ctx, &peer, insert, platform, chatID)
	if err == nil {
		return peer, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Peer{}, false, fmt.Errorf("create peer: %w", err)
	}

	// The row already existed, so ON CONFLICT swallowed the insert and
	// RETURNING produced nothing.
	const query = `SELECT ` + peerColumns + ` FROM peers WHERE platform = $1 AND chat_id = $2`
	if err := r.db.GetContext(ctx, &peer, query, platform, chatID); err != nil {
		return models.Peer{}, false, fmt.Errorf("load peer: %w", err)
	}
	return peer, false, nil
}

// Update persists the peer's selection state.
func (r *PeerRepository) Update(ctx context.Context, peer *models.Peer) error {
	peer.UpdatedAt = time.Now().UTC()

	const query = `UPDATE peers SET
			selected_schedule = :selected_schedule,
			selected_schedule_type = :selected_schedule_type,
			selecting_schedule = :selecting_schedule,
			updated_at = :updated_at
		WHERE platform = :platform AND chat_id = :chat_id`
	if _, err := r.db.NamedExecContext(ctx, query, peer); err != nil {
		return fmt.Errorf("update peer: %w", err)
	}
	return nil
}
