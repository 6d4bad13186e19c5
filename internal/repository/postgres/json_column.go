package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonColumn хранит вложенные списки и структуры в колонке JSONB.
type jsonColumn[T any] struct {
	V T
}

func (j jsonColumn[T]) Value() (driver.Value, error) {
	raw, err := json.Marshal(j.V)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось сериализовать jsonb: %w", err)
	}
	return raw, nil
}

func (j *jsonColumn[T]) Scan(src any) error {
	var zero T
	switch v := src.(type) {
	case nil:
		j.V = zero
		return nil
	case []byte:
		j.V = zero
		return json.Unmarshal(v, &j.V)
	case string:
		j.V = zero
		return json.Unmarshal([]byte(v), &j.V)
	default:
		return fmt.Errorf("postgres: неподдерживаемый тип jsonb %T", src)
	}
}
