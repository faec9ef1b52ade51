package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/ybooking/internal/model"
	"github.com/Freeeeeet/ybooking/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const personColumns = `id, COALESCE(telegram_id, 0), username, first_name, last_name, patronymic, birthday, sex, is_doctor, is_active, created_at`

type PersonRepository struct {
	*base.Repository
}

func NewPersonRepository(db base.DB) *PersonRepository {
	return &PersonRepository{Repository: base.NewRepository(db)}
}

// Create создаёт нового человека, роль берётся из варианта
func (r *PersonRepository) Create(ctx context.Context, person model.Person) error {
	query := `
		INSERT INTO persons (telegram_id, username, first_name, last_name, patronymic, birthday, sex, is_doctor, is_active)
		VALUES (NULLIF($1, 0), $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	p := person.Base()
	err := r.DB().QueryRow(
		ctx, query,
		p.TelegramID,
		p.Username,
		p.FirstName,
		p.LastName,
		p.Patronymic,
		p.Birthday,
		p.Sex,
		model.IsDoctor(person),
		p.IsActive,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return fmt.Errorf("create person: %w", err)
	}

	return nil
}

// GetByID получает человека по ID, nil если не найден
func (r *PersonRepository) GetByID(ctx context.Context, id int64) (model.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE id = $1`

	person, err := scanPerson(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get person by id: %w", err)
	}

	return person, nil
}

// GetByTelegramID получает человека по Telegram ID, nil если не найден
func (r *PersonRepository) GetByTelegramID(ctx context.Context, telegramID int64) (model.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE telegram_id = $1`

	person, err := scanPerson(r.DB().QueryRow(ctx, query, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get person by telegram id: %w", err)
	}

	return person, nil
}

// UpdateProfile обновляет имя и username
func (r *PersonRepository) UpdateProfile(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE persons
		SET username = $1, first_name = $2, last_name = $3
		WHERE id = $4
	`

	affected, err := r.ExecAffected(ctx, query, p.Username, p.FirstName, p.LastName, p.ID)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}

	if affected == 0 {
		return model.ErrNotFound.WithMessage("person %d not found", p.ID)
	}

	return nil
}

// SetActive блокирует или разблокирует человека
func (r *PersonRepository) SetActive(ctx context.Context, id int64, active bool) error {
	affected, err := r.ExecAffected(ctx, `UPDATE persons SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set person active: %w", err)
	}

	if affected == 0 {
		return model.ErrNotFound.WithMessage("person %d not found", id)
	}

	return nil
}

// SetDoctor меняет роль человека
func (r *PersonRepository) SetDoctor(ctx context.Context, id int64, isDoctor bool) error {
	affected, err := r.ExecAffected(ctx, `UPDATE persons SET is_doctor = $1 WHERE id = $2`, isDoctor, id)
	if err != nil {
		return fmt.Errorf("set person role: %w", err)
	}

	if affected == 0 {
		return model.ErrNotFound.WithMessage("person %d not found", id)
	}

	return nil
}

// ListActiveDoctors получает всех активных врачей
func (r *PersonRepository) ListActiveDoctors(ctx context.Context) ([]*model.Doctor, error) {
	query := `
		SELECT ` + personColumns + `
		FROM persons
		WHERE is_doctor = true AND is_active = true
		ORDER BY last_name, first_name
	`

	rows, err := r.DB().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*model.Doctor
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		if doctor, ok := person.(*model.Doctor); ok {
			doctors = append(doctors, doctor)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctors: %w", err)
	}

	return doctors, nil
}

func scanPerson(row pgx.Row) (model.Person, error) {
	var (
		p        model.Profile
		isDoctor bool
	)

	err := row.Scan(
		&p.ID,
		&p.TelegramID,
		&p.Username,
		&p.FirstName,
		&p.LastName,
		&p.Patronymic,
		&p.Birthday,
		&p.Sex,
		&isDoctor,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return model.NewPerson(p, isDoctor), nil
}
