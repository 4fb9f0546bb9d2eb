package storage

import (
	"context"

	"github.com/plvieira/agendabarber/libs/db"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
)

type ClientRepository struct {
	pool *db.Pool
}

func NewClientRepository(pool *db.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// Upsert creates or refreshes the client record keyed by phone. Bookings
// call this so the client list grows without a separate signup flow.
func (r *ClientRepository) Upsert(ctx context.Context, c model.Client) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clients (phone, name, clipper_size, notes, last_topic)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (phone) DO UPDATE
		SET name = EXCLUDED.name,
			clipper_size = CASE WHEN EXCLUDED.clipper_size <> '' THEN EXCLUDED.clipper_size ELSE clients.clipper_size END,
			notes = CASE WHEN EXCLUDED.notes <> '' THEN EXCLUDED.notes ELSE clients.notes END,
			last_topic = CASE WHEN EXCLUDED.last_topic <> '' THEN EXCLUDED.last_topic ELSE clients.last_topic END,
			updated_at = now()
	`, c.Phone, c.Name, c.ClipperSize, c.Notes, c.LastTopic)
	return err
}

func (r *ClientRepository) Get(ctx context.Context, phone string) (model.Client, error) {
	var c model.Client
	err := r.pool.QueryRow(ctx, `
		SELECT phone, name, clipper_size, notes, last_topic, updated_at
		FROM clients
		WHERE phone = $1
	`, phone).Scan(&c.Phone, &c.Name, &c.ClipperSize, &c.Notes, &c.LastTopic, &c.UpdatedAt)
	if noRows(err) {
		return model.Client{}, ErrNotFound
	}
	if err != nil {
		return model.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context, limit int) ([]model.Client, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT phone, name, clipper_size, notes, last_topic, updated_at
		FROM clients
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.Phone, &c.Name, &c.ClipperSize, &c.Notes, &c.LastTopic, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ClientRepository) Delete(ctx context.Context, phone string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE phone = $1`, phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
