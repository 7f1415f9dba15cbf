package database

import "github.com/TobiSchelling/domar/internal/court"

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{ByCourt: make(map[court.Court]int)}

	rows, err := db.conn.Query("SELECT court, COUNT(*) FROM verdicts GROUP BY court")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		s.ByCourt[court.Court(name)] = count
		s.TotalVerdicts += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM verdicts WHERE verdict_url IS NOT NULL AND verdict_url != ''", &s.WithURL},
		{"SELECT COUNT(*) FROM verdicts WHERE superseded_by IS NOT NULL", &s.Superseded},
		{"SELECT COUNT(*) FROM lawyers", &s.Lawyers},
		{"SELECT COUNT(*) FROM case_lawyers", &s.Appearances},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return s, nil
}
