package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maloquacious/mealmax/internal/meal"
	"github.com/maloquacious/mealmax/internal/metrics"
	"github.com/maloquacious/mealmax/internal/store"
)

// CreateMeal inserts a new meal with zeroed statistics and returns its id.
func (s *SQLiteStore) CreateMeal(ctx context.Context, name, cuisine string, price float64, difficulty string) (id int64, err error) {
	defer s.observe("create_meal", time.Now(), &err)

	if err := meal.ValidateNew(price, difficulty); err != nil {
		s.log.Error("rejected meal %q: %v", name, err)
		return 0, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO meals (meal, cuisine, price, difficulty) VALUES (?, ?, ?, ?)`,
			name, cuisine, price, difficulty,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		if isMealNameUniqueViolation(err) {
			s.log.Error("duplicate meal name: %s", name)
			return 0, meal.WrapError(meal.CodeDuplicateName, fmt.Sprintf("meal with name '%s' already exists", name), err)
		}
		return 0, s.fail(err)
	}

	s.log.Info("meal successfully added to the database: %s", name)
	return id, nil
}

// DeleteMeal marks a meal as deleted. The row keeps its id and name.
func (s *SQLiteStore) DeleteMeal(ctx context.Context, id int64) (err error) {
	defer s.observe("delete_meal", time.Now(), &err)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkActive(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE meals SET deleted = TRUE WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return s.fail(err)
	}

	s.log.Info("meal with ID %d marked as deleted", id)
	return nil
}

// GetMealByID returns the active meal with the given id.
func (s *SQLiteStore) GetMealByID(ctx context.Context, id int64) (m meal.Meal, err error) {
	defer s.observe("get_meal_by_id", time.Now(), &err)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, meal, cuisine, price, difficulty, deleted FROM meals WHERE id = ?`, id)
		found, deleted, scanErr := scanMeal(row)
		if errors.Is(scanErr, sql.ErrNoRows) {
			s.log.Info("meal with ID %d not found", id)
			return meal.NewError(meal.CodeNotFound, fmt.Sprintf("meal with ID %d not found", id))
		}
		if scanErr != nil {
			return scanErr
		}
		if deleted {
			s.log.Info("meal with ID %d has been deleted", id)
			return meal.NewError(meal.CodeDeleted, fmt.Sprintf("meal with ID %d has been deleted", id))
		}
		m = found
		return nil
	})
	if err != nil {
		return meal.Meal{}, s.fail(err)
	}
	return m, nil
}

// GetMealByName returns the active meal with the given name. Matching is case-sensitive.
func (s *SQLiteStore) GetMealByName(ctx context.Context, name string) (m meal.Meal, err error) {
	defer s.observe("get_meal_by_name", time.Now(), &err)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, meal, cuisine, price, difficulty, deleted FROM meals WHERE meal = ?`, name)
		found, deleted, scanErr := scanMeal(row)
		if errors.Is(scanErr, sql.ErrNoRows) {
			s.log.Info("meal with name %s not found", name)
			return meal.NewError(meal.CodeNotFound, fmt.Sprintf("meal with name %s not found", name))
		}
		if scanErr != nil {
			return scanErr
		}
		if deleted {
			s.log.Info("meal with name %s has been deleted", name)
			return meal.NewError(meal.CodeDeleted, fmt.Sprintf("meal with name %s has been deleted", name))
		}
		m = found
		return nil
	})
	if err != nil {
		return meal.Meal{}, s.fail(err)
	}
	return m, nil
}

// UpdateMealStats records one battle for the meal; result is "win" or "loss".
func (s *SQLiteStore) UpdateMealStats(ctx context.Context, id int64, result string) (err error) {
	defer s.observe("update_meal_stats", time.Now(), &err)

	var outcome meal.Outcome
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkActive(ctx, tx, id); err != nil {
			return err
		}
		parsed, err := meal.ParseOutcome(result)
		if err != nil {
			s.log.Error("meal with ID %d: %v", id, err)
			return err
		}
		outcome = parsed

		query := `UPDATE meals SET battles = battles + 1 WHERE id = ?`
		if outcome == meal.OutcomeWin {
			query = `UPDATE meals SET battles = battles + 1, wins = wins + 1 WHERE id = ?`
		}
		_, err = tx.ExecContext(ctx, query, id)
		return err
	})
	if err != nil {
		return s.fail(err)
	}

	metrics.BattlesRecordedTotal.WithLabelValues(string(outcome)).Inc()
	s.log.Info("meal with ID %d recorded a %s", id, outcome)
	return nil
}

// ClearMeals drops and recreates the meals table from the create table
// script, discarding every row including soft-deleted ones.
func (s *SQLiteStore) ClearMeals(ctx context.Context) (err error) {
	defer s.observe("clear_meals", time.Now(), &err)

	script, err := store.ReadCreateTableScript(s.createTablePath)
	if err != nil {
		s.log.Error("database error while clearing meals: %v", err)
		return meal.WrapError(meal.CodeStorage, "database error", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, script)
		return err
	})
	if err != nil {
		s.log.Error("database error while clearing meals: %v", err)
		return meal.WrapError(meal.CodeStorage, "database error", err)
	}

	s.log.Info("meals cleared successfully")
	return nil
}

// checkActive fails with not found or deleted unless the row is live.
func (s *SQLiteStore) checkActive(ctx context.Context, tx *sql.Tx, id int64) error {
	var deleted bool
	err := tx.QueryRowContext(ctx, `SELECT deleted FROM meals WHERE id = ?`, id).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Info("meal with ID %d not found", id)
		return meal.NewError(meal.CodeNotFound, fmt.Sprintf("meal with ID %d not found", id))
	}
	if err != nil {
		return err
	}
	if deleted {
		s.log.Info("meal with ID %d has already been deleted", id)
		return meal.NewError(meal.CodeDeleted, fmt.Sprintf("meal with ID %d has been deleted", id))
	}
	return nil
}

func scanMeal(row *sql.Row) (meal.Meal, bool, error) {
	var (
		id         int64
		name       string
		cuisine    string
		price      float64
		difficulty string
		deleted    bool
	)
	if err := row.Scan(&id, &name, &cuisine, &price, &difficulty, &deleted); err != nil {
		return meal.Meal{}, false, err
	}
	m, err := meal.NewMeal(id, name, cuisine, price, difficulty)
	if err != nil {
		return meal.Meal{}, false, err
	}
	return m, deleted, nil
}
