package sqlite

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/maloquacious/mealmax/internal/meal"
)

const leaderboardQuery = `
SELECT id, meal, cuisine, price, difficulty, battles, wins, (wins * 1.0 / battles) AS win_pct
  FROM meals
 WHERE deleted = FALSE AND battles > 0`

// GetLeaderboard ranks active meals with at least one battle by wins or
// win percentage, descending.
func (s *SQLiteStore) GetLeaderboard(ctx context.Context, sortBy string) (entries []meal.LeaderboardEntry, err error) {
	defer s.observe("get_leaderboard", time.Now(), &err)

	key, err := meal.ParseSortKey(sortBy)
	if err != nil {
		s.log.Error("invalid sort_by parameter: %s", sortBy)
		return nil, err
	}

	query := leaderboardQuery
	switch key {
	case meal.SortByWinPct:
		query += " ORDER BY win_pct DESC"
	case meal.SortByWins:
		query += " ORDER BY wins DESC"
	}

	entries = []meal.LeaderboardEntry{}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e          meal.LeaderboardEntry
				difficulty string
				ratio      float64
			)
			if err := rows.Scan(&e.ID, &e.Name, &e.Cuisine, &e.Price, &difficulty, &e.Battles, &e.Wins, &ratio); err != nil {
				return err
			}
			e.Difficulty = meal.Difficulty(difficulty)
			e.WinPct = winPercent(ratio)
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, s.fail(err)
	}

	s.log.Info("leaderboard retrieved successfully")
	return entries, nil
}

// winPercent converts a wins/battles ratio to a percentage rounded to one
// decimal, with exact halves going to the even digit.
func winPercent(ratio float64) float64 {
	return math.RoundToEven(ratio*1000) / 10
}
