package data

import (
	"database/sql"
	"errors"

	"queryforge/internal/core"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, name, role, theme_preference, created_at, updated_at`

func (r *UserRepo) Create(u *core.User) error {
	_, err := r.db.Exec(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, string(u.Role), u.ThemePreference, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *UserRepo) GetByID(id string) (*core.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByEmail(email string) (*core.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepo) Update(u *core.User) error {
	res, err := r.db.Exec(`UPDATE users SET name=?, theme_preference=?, updated_at=? WHERE id=?`,
		u.Name, u.ThemePreference, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *UserRepo) getOne(query string, arg any) (*core.User, error) {
	var u core.User
	var role string
	var updatedAt sql.NullTime
	err := r.db.QueryRow(query, arg).
		Scan(&u.ID, &u.Email, &u.Name, &role, &u.ThemePreference, &u.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = core.UserRole(role)
	if updatedAt.Valid {
		t := updatedAt.Time
		u.UpdatedAt = &t
	}
	return &u, nil
}
