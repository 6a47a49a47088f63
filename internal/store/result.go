package store

import "github.com/jmoiron/sqlx"

// Rows is a forward-only cursor over a result set. The caller owns it and
// must Close it (Collect does so on the caller's behalf).
type Rows struct {
	rows *sqlx.Rows
}

// Next advances to the next row, returning false when the set is exhausted.
func (r *Rows) Next() bool {
	return r.rows.Next()
}

// Scan returns the current row as a column-name to value mapping.
func (r *Rows) Scan() (map[string]any, error) {
	m := map[string]any{}
	if err := r.rows.MapScan(m); err != nil {
		return nil, err
	}
	// MapScan surfaces text protocol values as []byte; strings are what
	// callers of a convenience layer expect.
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			m[k] = string(b)
		}
	}
	return m, nil
}

// Columns returns the result column names in result order.
func (r *Rows) Columns() ([]string, error) {
	return r.rows.Columns()
}

// Err reports any error encountered during iteration.
func (r *Rows) Err() error {
	return r.rows.Err()
}

// Close releases the cursor.
func (r *Rows) Close() error {
	return r.rows.Close()
}

// Collect drains the cursor into a slice of row maps and closes it.
func (r *Rows) Collect() ([]map[string]any, error) {
	defer r.rows.Close()

	var out []map[string]any
	for r.Next() {
		row, err := r.Scan()
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, r.Err()
}
