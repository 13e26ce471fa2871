package main

import (
	"fmt"
	"strconv"

	"github.com/maloquacious/mealmax/internal/meal"
	"github.com/spf13/cobra"
)

func newMealCmd() *cobra.Command {
	mealCmd := &cobra.Command{
		Use:   "meal",
		Short: "Meal catalogue commands",
	}

	var (
		name, cuisine, difficulty string
		price                     float64
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a meal to the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := db.CreateMeal(cmd.Context(), name, cuisine, price, difficulty)
			if err != nil {
				return err
			}
			return printJSON(cmd, meal.Meal{ID: id, Name: name, Cuisine: cuisine, Price: price, Difficulty: meal.Difficulty(difficulty)})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "meal name (unique)")
	createCmd.Flags().StringVar(&cuisine, "cuisine", "", "cuisine")
	createCmd.Flags().Float64Var(&price, "price", 0, "price, must be positive")
	createCmd.Flags().StringVar(&difficulty, "difficulty", "", "LOW, MED or HIGH")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("price")
	_ = createCmd.MarkFlagRequired("difficulty")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Mark a meal as deleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			return db.DeleteMeal(cmd.Context(), id)
		},
	}

	var byName string
	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show a meal by id or --name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (byName == "") {
				return fmt.Errorf("give exactly one of an id or --name")
			}
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			var m meal.Meal
			if byName != "" {
				m, err = db.GetMealByName(cmd.Context(), byName)
			} else {
				id, perr := parseID(args[0])
				if perr != nil {
					return perr
				}
				m, err = db.GetMealByID(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	}
	getCmd.Flags().StringVar(&byName, "name", "", "look up by meal name")

	battleCmd := &cobra.Command{
		Use:   "battle <id> <win|loss>",
		Short: "Record a battle result for a meal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			return db.UpdateMealStats(cmd.Context(), id, args[1])
		},
	}

	var sortBy string
	leaderboardCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank meals by wins or win percentage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.GetLeaderboard(cmd.Context(), sortBy)
			if err != nil {
				return err
			}
			return printJSON(cmd, entries)
		},
	}
	leaderboardCmd.Flags().StringVar(&sortBy, "sort-by", string(meal.SortByWins), "wins or win_pct")

	mealCmd.AddCommand(createCmd, deleteCmd, getCmd, battleCmd, leaderboardCmd)
	return mealCmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, meal.NewError(meal.CodeInvalidArgument, fmt.Sprintf("meal id must be an integer, got %q", s))
	}
	return id, nil
}
