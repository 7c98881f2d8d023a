package daily

import (
	"context"
	"database/sql"
)

// Result is one player's completed daily grid.
type Result struct {
	UserID     string `json:"userId"`
	Date       string `json:"date"`
	Score      int    `json:"score"`
	WordsFound int    `json:"wordsFound"`
	ElapsedS   int    `json:"elapsedSeconds"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records r; a second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, score, words_found, elapsed_s)
		VALUES(?,?,?,?,?)`, r.UserID, r.Date, r.Score, r.WordsFound, r.ElapsedS,
	)
	return err
}

type LBRow struct {
	UserID     string `json:"userId"`
	Score      int    `json:"score"`
	WordsFound int    `json:"wordsFound"`
	ElapsedS   int    `json:"elapsedSeconds"`
}

// Leaderboard returns the best results of a date: highest score, then
// fastest, then earliest. A non-positive limit defaults to 20.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, score, words_found, elapsed_s
		FROM daily_results
		WHERE date=?
		ORDER BY score DESC, elapsed_s ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Score, &r.WordsFound, &r.ElapsedS); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
