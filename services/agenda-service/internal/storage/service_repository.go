package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/plvieira/agendabarber/libs/db"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
)

type ServiceRepository struct {
	pool *db.Pool
}

func NewServiceRepository(pool *db.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

func (r *ServiceRepository) Create(ctx context.Context, name string, price float64, durationMinutes int) (model.Service, error) {
	svc := model.Service{
		ID:              uuid.NewString(),
		Name:            name,
		Price:           price,
		DurationMinutes: durationMinutes,
		Active:          true,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (id, name, price, duration_minutes)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, svc.ID, svc.Name, svc.Price, svc.DurationMinutes).Scan(&svc.CreatedAt)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) Get(ctx context.Context, id string) (model.Service, error) {
	var svc model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, price::float8, duration_minutes, active, created_at
		FROM services
		WHERE id = $1
	`, id).Scan(&svc.ID, &svc.Name, &svc.Price, &svc.DurationMinutes, &svc.Active, &svc.CreatedAt)
	if noRows(err) {
		return model.Service{}, ErrNotFound
	}
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, price::float8, duration_minutes, active, created_at
		FROM services
		WHERE NOT $1 OR active
		ORDER BY name ASC
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Price, &svc.DurationMinutes, &svc.Active, &svc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ServiceRepository) Update(ctx context.Context, svc model.Service) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET name = $2, price = $3, duration_minutes = $4, active = $5
		WHERE id = $1
	`, svc.ID, svc.Name, svc.Price, svc.DurationMinutes, svc.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
