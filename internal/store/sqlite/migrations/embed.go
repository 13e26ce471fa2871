package migrations

import _ "embed"

// CreateMealTable drops and recreates the meals table. It is the script
// installed as SQL_CREATE_TABLE_PATH and printed by `mealmax db script`.
//
//go:embed create_meal_table.sql
var CreateMealTable string
