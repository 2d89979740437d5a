package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// StudentRepository persists students with their schedule and evaluations
// stored as JSONB documents.
type StudentRepository struct {
	db sqlx.ExtContext
}

// NewStudentRepository constructs the repository over a DB or a transaction.
func NewStudentRepository(db sqlx.ExtContext) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student in creation order.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, name, email, phone, address_street, address_number, address_locality,
birth_date, join_date, status, schedule, evaluations, notes
FROM students ORDER BY created_at ASC, id ASC`
	var rows []studentRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	out := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		student, err := row.model()
		if err != nil {
			return nil, err
		}
		out = append(out, student)
	}
	return out, nil
}

// Upsert inserts or replaces a student.
func (r *StudentRepository) Upsert(ctx context.Context, student models.Student) error {
	const query = `INSERT INTO students (id, name, email, phone, address_street, address_number, address_locality,
birth_date, join_date, status, schedule, evaluations, notes, updated_at)
VALUES (:id, :name, :email, :phone, :address_street, :address_number, :address_locality,
:birth_date, :join_date, :status, :schedule, :evaluations, :notes, NOW())
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
address_street = EXCLUDED.address_street, address_number = EXCLUDED.address_number,
address_locality = EXCLUDED.address_locality, birth_date = EXCLUDED.birth_date,
join_date = EXCLUDED.join_date, status = EXCLUDED.status, schedule = EXCLUDED.schedule,
evaluations = EXCLUDED.evaluations, notes = EXCLUDED.notes`
	row, err := newStudentRow(student)
	if err != nil {
		return err
	}
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("upsert student %s: %w", student.ID, err)
	}
	return nil
}
