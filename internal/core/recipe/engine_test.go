package recipe

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(name, ingredients, diet string, prep, cook any, course, state string) Row {
	return Row{
		ColumnName:        name,
		ColumnIngredients: ingredients,
		ColumnDiet:        diet,
		ColumnPrepTime:    prep,
		ColumnCookTime:    cook,
		ColumnCourse:      course,
		ColumnState:       state,
	}
}

func dataset(rows ...Row) Dataset {
	return Dataset{Columns: append([]string(nil), RequiredColumns...), Rows: rows}
}

func names(results []MatchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}

func TestEvaluate_KheerScenario(t *testing.T) {
	ds := dataset(row("Kheer", "milk, sugar, rice, cardamom", "vegetarian", 10, 40, "dessert", "Punjab"))

	results, err := Evaluate(ds, Query{Ingredients: []string{"milk", "sugar"}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Kheer", results[0].Name)
	assert.Equal(t, []string{"rice", "cardamom"}, results[0].MissingIngredients)
	assert.Equal(t, 2, results[0].MissingCount)
	assert.Equal(t, "https://www.youtube.com/results?search_query=Kheer", results[0].YoutubeLink)
}

func TestEvaluate_PantryIsConjunctiveSubstring(t *testing.T) {
	ds := dataset(
		row("Baingan Bharta", "Eggplant, onion, tomato", "vegetarian", 10, 30, "main course", "Punjab"),
		row("Egg Curry", "egg, onion, garam masala", "non vegetarian", 10, 30, "main course", "Bengal"),
		row("Aloo Gobi", "potato, cauliflower", "vegetarian", 10, 20, "main course", "Punjab"),
	)

	results, err := Evaluate(ds, Query{Ingredients: []string{"EGG", " onion "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Baingan Bharta", "Egg Curry"}, names(results))

	for _, r := range results {
		text := strings.ToLower(r.Ingredients)
		assert.Contains(t, text, "egg")
		assert.Contains(t, text, "onion")
	}
}

func TestEvaluate_MissingIngredientsUseContainment(t *testing.T) {
	ds := dataset(row("Barfi", "Milk Powder, sugar, milk, ghee, , sugar", "vegetarian", 5, 15, "dessert", "Gujarat"))

	results, err := Evaluate(ds, Query{Ingredients: []string{"milk"}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// "milk powder" contains "milk" so it is covered; duplicates and empties are dropped
	assert.Equal(t, []string{"sugar", "ghee"}, results[0].MissingIngredients)
	assert.Equal(t, 2, results[0].MissingCount)

	phrases := SplitPhrases(ds.Rows[0][ColumnIngredients].(string))
	for _, m := range results[0].MissingIngredients {
		assert.NotContains(t, m, "milk")
		assert.Contains(t, phrases, m)
	}
}

func TestEvaluate_StableRanking(t *testing.T) {
	ds := dataset(
		row("A", "rice, a1, a2", "", nil, nil, "", ""),
		row("B", "rice, b1", "", nil, nil, "", ""),
		row("C", "rice, c1", "", nil, nil, "", ""),
		row("D", "rice", "", nil, nil, "", ""),
		row("E", "rice, e1, e2", "", nil, nil, "", ""),
	)

	results, err := Evaluate(ds, Query{Ingredients: []string{"rice"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "C", "A", "E"}, names(results))

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].MissingCount, results[i].MissingCount)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	ds := dataset(
		row("Kheer", "milk, sugar, rice", "vegetarian", 10, 40, "dessert", "Punjab"),
		row("Rasgulla", "milk, sugar, lemon", "vegetarian", 20, 60, "dessert", "Bengal"),
		row("Halwa", "milk, sugar, carrot, ghee", "vegetarian", 15, 45, "dessert", "Punjab"),
	)
	q := Query{Ingredients: []string{"milk", "sugar"}, Course: "Dessert"}

	first, err := Evaluate(ds, q)
	require.NoError(t, err)
	second, err := Evaluate(ds, q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluate_OptionalFilters(t *testing.T) {
	ds := dataset(
		row("Paneer Tikka", "paneer, yogurt, chilli", "vegetarian", 15, 20, "starter", "Punjab"),
		row("Chicken Tikka", "chicken, yogurt, chilli", "Non Vegetarian", 15, 20, "starter", "Punjab"),
		row("Dahi Vada", "urad dal, yogurt", "Vegetarian", 10, 30, "snack", "Delhi"),
		row("Raita", "yogurt, cucumber", "vegetarian", "abc", nil, "side dish", "punjab"),
	)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name:  "diet is case-insensitive exact match",
			query: Query{Ingredients: []string{"yogurt"}, Diet: "vegetarian"},
			want:  []string{"Dahi Vada", "Raita", "Paneer Tikka"},
		},
		{
			name:  "non vegetarian diet does not match vegetarian substring",
			query: Query{Ingredients: []string{"yogurt"}, Diet: "Non Vegetarian"},
			want:  []string{"Chicken Tikka"},
		},
		{
			name:  "name is substring match",
			query: Query{Ingredients: []string{"yogurt"}, Name: "tikka"},
			want:  []string{"Paneer Tikka", "Chicken Tikka"},
		},
		{
			name:  "prep ceiling excludes absent prep time",
			query: Query{Ingredients: []string{"yogurt"}, PrepTimeMax: "15"},
			want:  []string{"Dahi Vada", "Paneer Tikka", "Chicken Tikka"},
		},
		{
			name:  "cook ceiling",
			query: Query{Ingredients: []string{"yogurt"}, CookTimeMax: "20.0"},
			want:  []string{"Paneer Tikka", "Chicken Tikka"},
		},
		{
			name:  "course exact match",
			query: Query{Ingredients: []string{"yogurt"}, Course: "SNACK"},
			want:  []string{"Dahi Vada"},
		},
		{
			name:  "course substring is not enough",
			query: Query{Ingredients: []string{"yogurt"}, Course: "side"},
			want:  []string{},
		},
		{
			name:  "state exact match ignores case",
			query: Query{Ingredients: []string{"yogurt"}, State: "Punjab"},
			want:  []string{"Raita", "Paneer Tikka", "Chicken Tikka"},
		},
		{
			name:  "filters combine",
			query: Query{Ingredients: []string{"yogurt", "chilli"}, Diet: "vegetarian", State: "punjab", PrepTimeMax: "20"},
			want:  []string{"Paneer Tikka"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Evaluate(ds, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(results))
		})
	}
}

func TestEvaluate_PrepTimeCeilingBoundary(t *testing.T) {
	ds := dataset(
		row("Slow", "rice", "", 15, nil, "", ""),
		row("Exact", "rice", "", "10", nil, "", ""),
	)

	results, err := Evaluate(ds, Query{Ingredients: []string{"rice"}, PrepTimeMax: "10"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Exact"}, names(results))
}

func TestEvaluate_InvalidQuery(t *testing.T) {
	ds := dataset(row("Kheer", "milk", "", nil, nil, "", ""))

	tests := []struct {
		name  string
		query Query
		field string
	}{
		{"nil ingredients", Query{}, "ingredients"},
		{"empty ingredients", Query{Ingredients: []string{}}, "ingredients"},
		{"blank ingredients", Query{Ingredients: []string{"  ", ""}}, "ingredients"},
		{"non numeric prep ceiling", Query{Ingredients: []string{"milk"}, PrepTimeMax: "ten"}, "prep_time_max"},
		{"fractional cook ceiling", Query{Ingredients: []string{"milk"}, CookTimeMax: "7.5"}, "cook_time_max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(ds, tt.query)
			var qe *QueryError
			require.True(t, errors.As(err, &qe), "expected QueryError, got %v", err)
			assert.Equal(t, tt.field, qe.Field)
		})
	}
}

func TestEvaluate_SchemaError(t *testing.T) {
	ds := Dataset{
		Columns: []string{ColumnName, ColumnIngredients, ColumnDiet, ColumnPrepTime, ColumnCookTime, ColumnState},
		Rows:    []Row{{ColumnName: "Kheer", ColumnIngredients: "milk"}},
	}

	_, err := Evaluate(ds, Query{Ingredients: []string{"milk"}})
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{ColumnCourse}, se.Missing)
	assert.Contains(t, err.Error(), "course")
}

func TestEvaluate_QueryCheckedBeforeSchema(t *testing.T) {
	_, err := Evaluate(Dataset{}, Query{})
	var qe *QueryError
	assert.True(t, errors.As(err, &qe))
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	ds := dataset(row("Kheer", "Milk, Sugar", "vegetarian", "10", nil, "dessert", "Punjab"))

	_, err := Evaluate(ds, Query{Ingredients: []string{"milk"}})
	require.NoError(t, err)
	assert.Equal(t, "Milk, Sugar", ds.Rows[0][ColumnIngredients])
	assert.Equal(t, "10", ds.Rows[0][ColumnPrepTime])
	assert.Len(t, ds.Rows[0], 7)
}

func TestEvaluate_NoMatchesReturnsEmptySlice(t *testing.T) {
	ds := dataset(row("Kheer", "milk", "", nil, nil, "", ""))

	results, err := Evaluate(ds, Query{Ingredients: []string{"saffron"}})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestYoutubeLink(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Kheer", YoutubeSearchURL + "Kheer"},
		{"  Paneer   Butter Masala ", YoutubeSearchURL + "Paneer+Butter+Masala"},
		{"Dal & Rice", YoutubeSearchURL + "Dal+%26+Rice"},
		{"", YoutubeSearchURL},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, YoutubeLink(tt.name))
	}
}

func TestMinutes(t *testing.T) {
	ten := 10.0
	tests := []struct {
		in   any
		want *float64
	}{
		{nil, nil},
		{10, &ten},
		{"10", &ten},
		{" 10.0 ", &ten},
		{"", nil},
		{"abc", nil},
		{"NaN", nil},
		{true, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Minutes(tt.in), "input %#v", tt.in)
	}
}

func TestSplitPhrases(t *testing.T) {
	assert.Equal(t, []string{"rice", "dal", "ghee"}, SplitPhrases(" Rice ,dal,, RICE, ghee ,"))
	assert.Empty(t, SplitPhrases(""))
}
