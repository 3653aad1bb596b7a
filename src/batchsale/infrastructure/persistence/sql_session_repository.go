package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storepos/src/batchsale/domain/entity"
)

// Dialectos soportados
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// SQLSessionRepository implementa SessionRepository sobre PostgreSQL o MySQL
// Una fila por clave, el documento JSON completo en una columna de texto
type SQLSessionRepository struct {
	db      *sql.DB
	dialect string
	table   string
	queries sessionQueries
}

// sessionQueries consultas armadas una vez con los placeholders nativos del dialecto
type sessionQueries struct {
	load   string
	save   string
	delete string
}

func buildSessionQueries(dialect, table string) sessionQueries {
	if dialect == DialectMySQL {
		return sessionQueries{
			load: fmt.Sprintf(`SELECT document FROM %s WHERE session_key = ?`, table),
			save: fmt.Sprintf(`
				INSERT INTO %s (session_key, document, updated_at)
				VALUES (?, ?, ?)
				ON DUPLICATE KEY UPDATE document = VALUES(document), updated_at = VALUES(updated_at)
			`, table),
			delete: fmt.Sprintf(`DELETE FROM %s WHERE session_key = ?`, table),
		}
	}
	return sessionQueries{
		load: fmt.Sprintf(`SELECT document FROM %s WHERE session_key = $1`, table),
		save: fmt.Sprintf(`
			INSERT INTO %s (session_key, document, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (session_key)
			DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
		`, table),
		delete: fmt.Sprintf(`DELETE FROM %s WHERE session_key = $1`, table),
	}
}

// NewSQLSessionRepository crea una nueva instancia del repositorio
func NewSQLSessionRepository(db *sql.DB, dialect, table string) (*SQLSessionRepository, error) {
	if dialect != DialectPostgres && dialect != DialectMySQL {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if table == "" {
		table = "batch_sale_sessions"
	}
	return &SQLSessionRepository{
		db:      db,
		dialect: dialect,
		table:   table,
		queries: buildSessionQueries(dialect, table),
	}, nil
}

// EnsureSchema crea la tabla si no existe
func (r *SQLSessionRepository) EnsureSchema(ctx context.Context) error {
	documentType := "TEXT"
	timeType := "TIMESTAMPTZ"
	if r.dialect == DialectMySQL {
		documentType = "LONGTEXT"
		timeType = "DATETIME(6)"
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			session_key VARCHAR(128) PRIMARY KEY,
			document %s NOT NULL,
			updated_at %s NOT NULL
		)
	`, r.table, documentType, timeType)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error creating %s: %w", r.table, err)
	}
	return nil
}

// Load lee la sesión guardada
func (r *SQLSessionRepository) Load(ctx context.Context, key string) (*entity.BatchSale, error) {
	var document string
	err := r.db.QueryRowContext(ctx, r.queries.load, key).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", r.table, err)
	}
	return decodeSession([]byte(document))
}

// Save inserta o reemplaza la sesión
func (r *SQLSessionRepository) Save(ctx context.Context, key string, sale *entity.BatchSale) error {
	data, err := encodeSession(sale)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, r.queries.save, key, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("error saving %s: %w", r.table, err)
	}
	return nil
}

// Delete borra la sesión
func (r *SQLSessionRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.queries.delete, key); err != nil {
		return fmt.Errorf("error deleting from %s: %w", r.table, err)
	}
	return nil
}
