// Package common содержит общие помощники для SQL-хранилищ.
package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникальности.
const uniqueViolation = "23505"

// GetByID - универсальная функция для получения строки по ID.
func GetByID[T any](ctx context.Context, db *sqlx.DB, table string, id interface{}, notFoundErr error) (*T, error) {
	var row T
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", table)

	if err := db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("get by id from %s: %w", table, err)
	}

	return &row, nil
}

// SelectOrdered выбирает строки таблицы в порядке создания.
func SelectOrdered[T any](ctx context.Context, db *sqlx.DB, table string, w *Where) ([]T, error) {
	var rows []T
	query := fmt.Sprintf("SELECT * FROM %s%s ORDER BY created_at ASC", table, w.String())

	if err := db.SelectContext(ctx, &rows, query, w.Args()...); err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	return rows, nil
}

// ExpectAffected возвращает notFoundErr, если запрос не изменил ни одной строки.
func ExpectAffected(res sql.Result, notFoundErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}

// IsUniqueViolation проверяет нарушение уникального ключа.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Where накапливает условия выборки с позиционными параметрами.
type Where struct {
	conds []string
	args  []interface{}
}

// Add добавляет условие; %d в cond заменяется номером параметра.
func (w *Where) Add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// Param регистрирует параметр и возвращает его плейсхолдер.
func (w *Where) Param(arg interface{}) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

// Raw добавляет условие без параметров.
func (w *Where) Raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *Where) Args() []interface{} {
	if w == nil {
		return nil
	}
	return w.args
}

func (w *Where) String() string {
	if w == nil || len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
