package query_test

import (
	"testing"
	"time"

	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type attrs map[string]interface{}

func (a attrs) Attribute(name string) interface{} {
	return a[name]
}

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

var dateRecipe = query.NewRecipe("date", []string{query.OpGte, query.OpLte}, []string{"date_after", "date_before"})

func TestRecipePair_OmitsAbsentAttributes(t *testing.T) {
	after := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	field, clause := dateRecipe.Pair(attrs{"date_after": after})

	assert.Equal(t, "date", field)
	assert.Equal(t, bson.M{"$gte": after}, clause)
}

func TestRecipePair_AllAbsentYieldsEmptyClause(t *testing.T) {
	var nilTime *time.Time

	field, clause := dateRecipe.Pair(attrs{"date_before": nilTime})

	assert.Equal(t, "date", field)
	assert.Empty(t, clause)
}

func TestNewRecipe_PanicsOnMismatchedLengths(t *testing.T) {
	assert.Panics(t, func() {
		query.NewRecipe("object", []string{query.OpRegex}, nil)
	})
}

func TestPlan_MatchStageDropsEmptyClauses(t *testing.T) {
	plan := query.Plan{
		Source: attrs{"object": "^M"},
		Recipes: []query.Recipe{
			dateRecipe,
			query.NewRecipe("object", []string{query.OpRegex}, []string{"object"}),
		},
	}

	match := plan.MatchStage()

	require.Len(t, match, 1)
	assert.Equal(t, "$match", match[0].Key)
	assert.Equal(t, bson.D{{Key: "object", Value: bson.M{"$regex": "^M"}}}, match[0].Value)
}

func TestPlan_NoClausesMatchesEverything(t *testing.T) {
	plan := query.Plan{Source: attrs{}, Recipes: []query.Recipe{dateRecipe}}

	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{}}}, plan.MatchStage())
}

func TestPlan_StageOrder(t *testing.T) {
	group := bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$object"}}}}
	project := bson.D{{Key: "$project", Value: bson.D{{Key: "object", Value: "$_id"}}}}

	tests := []struct {
		name     string
		plan     query.Plan
		pipeline []string
		count    []string
	}{
		{
			name:     "base",
			plan:     query.Plan{Source: attrs{}},
			pipeline: []string{"$match"},
			count:    []string{"$match", "$count"},
		},
		{
			name:     "sorted",
			plan:     query.Plan{Source: attrs{}, Sort: &query.Sort{Field: "date", Direction: query.Descending}},
			pipeline: []string{"$match", "$sort"},
			count:    []string{"$match", "$count"},
		},
		{
			name: "grouped, sorted and paginated",
			plan: query.Plan{
				Source: attrs{},
				Stages: []bson.D{group, project},
				Sort:   &query.Sort{Field: "last_date", Direction: query.Descending},
				Window: &query.Window{Skip: 20, Limit: 10},
			},
			pipeline: []string{"$match", "$group", "$project", "$sort", "$skip", "$limit"},
			count:    []string{"$match", "$group", "$project", "$count"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pipeline, stageNames(tt.plan.Pipeline()))
			assert.Equal(t, tt.count, stageNames(tt.plan.CountPipeline()))
		})
	}
}

func TestPlan_SortSkipLimitValues(t *testing.T) {
	p := query.Pagination{PageNumber: 3, PageSize: 25}
	plan := query.Plan{
		Source: attrs{},
		Sort:   &query.Sort{Field: "date", Direction: query.Ascending},
		Window: p.Window(),
	}

	pipeline := plan.Pipeline()

	require.Len(t, pipeline, 4)
	assert.Equal(t, bson.D{{Key: "date", Value: 1}}, pipeline[1][0].Value)
	assert.Equal(t, int64(50), pipeline[2][0].Value)
	assert.Equal(t, int64(25), pipeline[3][0].Value)
	assert.Equal(t, query.CountField, plan.CountPipeline()[1][0].Value)
}

func TestPagination_SkipAndLimit(t *testing.T) {
	for page := 1; page <= 5; page++ {
		for size := 1; size <= 5; size++ {
			p := query.Pagination{PageNumber: page, PageSize: size}
			assert.Equal(t, int64((page-1)*size), p.Skip())
			assert.Equal(t, int64(size), p.Limit())
		}
	}
}

func TestPagination_Validate(t *testing.T) {
	assert.NoError(t, query.NewPagination().Validate())

	err := query.Pagination{PageNumber: 0, PageSize: 10}.Validate()
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	err = query.Pagination{PageNumber: 1, PageSize: 0}.Validate()
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestSorting_ValidateAgainst(t *testing.T) {
	legal := []string{"date", "object"}

	assert.NoError(t, query.NewSorting("").ValidateAgainst(legal))
	assert.NoError(t, query.Sorting{OrderBy: "object", Direction: query.Ascending}.ValidateAgainst(legal))

	err := query.Sorting{OrderBy: "users", Direction: query.Descending}.ValidateAgainst(legal)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	for _, dir := range []query.Direction{0, 2, -2} {
		err = query.Sorting{OrderBy: "date", Direction: dir}.ValidateAgainst(legal)
		assert.True(t, errors.Is(err, errors.ErrCodeValidation), "direction %d", dir)
	}
}

func TestSorting_SortFallsBackToDefaultField(t *testing.T) {
	s := query.NewSorting("").Sort("last_date")

	assert.Equal(t, "last_date", s.Field)
	assert.Equal(t, query.Descending, s.Direction)
}

type window struct {
	query.Plan
	query.Pagination
}

func TestPageLinks(t *testing.T) {
	tests := []struct {
		total    int64
		page     int
		size     int
		next     *int
		previous *int
	}{
		{total: 0, page: 1, size: 10},
		{total: 3, page: 1, size: 2, next: intPtr(2)},
		{total: 3, page: 2, size: 2, previous: intPtr(1)},
		{total: 4, page: 2, size: 2, previous: intPtr(1)},
		{total: 5, page: 2, size: 2, next: intPtr(3), previous: intPtr(1)},
		{total: 1, page: 4, size: 10, previous: intPtr(3)},
	}

	for _, tt := range tests {
		q := window{Pagination: query.Pagination{PageNumber: tt.page, PageSize: tt.size}}

		links := query.PageLinks(tt.total, q)

		assert.Equal(t, tt.next, links.Next, "total=%d page=%d size=%d", tt.total, tt.page, tt.size)
		assert.Equal(t, tt.previous, links.Previous, "total=%d page=%d size=%d", tt.total, tt.page, tt.size)
	}
}

func TestTimestamp_UnmarshalParam(t *testing.T) {
	var ts query.Timestamp

	require.NoError(t, ts.UnmarshalParam("2023-01-01T12:00:01"))
	assert.Equal(t, time.Date(2023, 1, 1, 12, 0, 1, 0, time.UTC), ts.Time())

	require.NoError(t, ts.UnmarshalParam("2023-01-01T12:00:01+02:00"))
	assert.Equal(t, time.Date(2023, 1, 1, 10, 0, 1, 0, time.UTC), ts.Time())

	require.NoError(t, ts.UnmarshalParam(""))
	assert.True(t, ts.IsZero())
	assert.Nil(t, ts.Value())

	assert.Error(t, ts.UnmarshalParam("yesterday"))
}

func TestFieldNames(t *testing.T) {
	type row struct {
		ID     string `bson:"_id,omitempty"`
		Object string `bson:"object"`
		Hidden string `bson:"-"`
		Count  int
		skip   int
	}

	assert.Equal(t, []string{"_id", "object", "count"}, query.FieldNames(&row{}))
}

func intPtr(i int) *int {
	return &i
}
