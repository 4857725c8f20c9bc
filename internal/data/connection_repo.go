package data

import (
	"database/sql"
	"errors"
	"time"

	"queryforge/internal/core"
)

type ConnectionRepo struct {
	db *sql.DB
}

func NewConnectionRepo(db *sql.DB) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

const connectionColumns = `id, user_id, name, dialect, host, port, database_name, username, secret_enc, is_primary, created_at, updated_at`

// Create inserts a connection. The duplicate-name check and the
// first-connection-is-primary decision happen in the same transaction as the
// insert, so a concurrent create for the same user cannot produce two
// primaries or two connections with the same name.
func (r *ConnectionRepo) Create(conn *core.Connection) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var clash int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM connections WHERE user_id = ? AND name = ?`, conn.UserID, conn.Name).Scan(&clash); err != nil {
		return err
	}
	if clash > 0 {
		return core.ErrDuplicateName
	}

	var total int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM connections WHERE user_id = ?`, conn.UserID).Scan(&total); err != nil {
		return err
	}
	conn.IsPrimary = total == 0

	isPrimary := 0
	if conn.IsPrimary {
		isPrimary = 1
	}
	_, err = tx.Exec(`INSERT INTO connections (`+connectionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conn.ID, conn.UserID, conn.Name, string(conn.Dialect), conn.Host, conn.Port,
		conn.Database, conn.Username, conn.SecretEnc, isPrimary, conn.CreatedAt, conn.UpdatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ListByUser returns the user's connections, primary first, then newest first.
func (r *ConnectionRepo) ListByUser(userID string) ([]core.Connection, error) {
	rows, err := r.db.Query(`SELECT `+connectionColumns+` FROM connections WHERE user_id = ? ORDER BY is_primary DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var connections []core.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		connections = append(connections, *c)
	}
	return connections, rows.Err()
}

func (r *ConnectionRepo) GetByID(userID, id string) (*core.Connection, error) {
	row := r.db.QueryRow(`SELECT `+connectionColumns+` FROM connections WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanConnection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update writes the mutable fields. The primary flag is deliberately not
// updatable here; single-primary maintenance goes through SetPrimary.
func (r *ConnectionRepo) Update(conn *core.Connection) error {
	res, err := r.db.Exec(`UPDATE connections SET name=?, host=?, port=?, database_name=?, username=?, secret_enc=?, updated_at=? WHERE id=? AND user_id=?`,
		conn.Name, conn.Host, conn.Port, conn.Database, conn.Username, conn.SecretEnc, conn.UpdatedAt, conn.ID, conn.UserID)
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

// Delete removes a connection. Dependent queries keep their records with a
// nulled connection reference (ON DELETE SET NULL). Deleting the primary
// leaves the user with zero primaries; there is no auto-promotion.
func (r *ConnectionRepo) Delete(userID, id string) error {
	res, err := r.db.Exec(`DELETE FROM connections WHERE id = ? AND user_id = ?`, id, userID)
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

// SetPrimary demotes every current primary for the user and promotes the
// target connection in one transaction.
func (r *ConnectionRepo) SetPrimary(userID, id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM connections WHERE id = ? AND user_id = ?`, id, userID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return core.ErrNotFound
	}

	if _, err := tx.Exec(`UPDATE connections SET is_primary = 0 WHERE user_id = ? AND is_primary = 1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE connections SET is_primary = 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
		return err
	}
	return tx.Commit()
}

// NameInUse reports whether another connection of the user already has the
// name. excludeID skips the connection being renamed.
func (r *ConnectionRepo) NameInUse(userID, name, excludeID string) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM connections WHERE user_id = ? AND name = ? AND id != ?`, userID, name, excludeID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (*core.Connection, error) {
	var c core.Connection
	var dialect string
	var isPrimary int
	var updatedAt sql.NullTime
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &dialect, &c.Host, &c.Port,
		&c.Database, &c.Username, &c.SecretEnc, &isPrimary, &c.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.Dialect = core.Dialect(dialect)
	c.IsPrimary = isPrimary == 1
	if updatedAt.Valid {
		t := updatedAt.Time
		c.UpdatedAt = &t
	}
	return &c, nil
}
