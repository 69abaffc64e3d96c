package schema_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/YouSangSon/reports-service/internal/domain/schema"
	"github.com/YouSangSon/reports-service/internal/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type page struct {
	query.Pagination
}

func (page) Pipeline() mongo.Pipeline      { return nil }
func (page) CountPipeline() mongo.Pipeline { return nil }

func TestNewPaginated_EmptyResult(t *testing.T) {
	result := schema.NewPaginated[schema.ReportOut](0, page{query.NewPagination()}, nil)

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, string(body))
}

func TestNewPaginated_Links(t *testing.T) {
	q := page{query.Pagination{PageNumber: 2, PageSize: 2}}

	result := schema.NewPaginated(5, q, []schema.ReportByUser{{User: "a", Count: 1}})

	require.NotNil(t, result.Next)
	require.NotNil(t, result.Previous)
	assert.Equal(t, 3, *result.Next)
	assert.Equal(t, 1, *result.Previous)
	assert.Len(t, result.Results, 1)
}

func TestDecode_ReportOut(t *testing.T) {
	id := primitive.NewObjectID()
	date := time.Date(2023, 1, 1, 12, 0, 1, 0, time.UTC)
	doc := bson.M{
		"_id":         id,
		"date":        primitive.NewDateTimeFromTime(date),
		"object":      "M31",
		"solved":      true,
		"source":      "ZTF",
		"observation": "bright",
		"report_type": "TOM",
		"owner":       "alice",
		"extra":       "dropped",
	}

	out, err := schema.Decode[schema.ReportOut](doc)

	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.True(t, date.Equal(out.Date))
	assert.Equal(t, "M31", out.Object)
	assert.True(t, out.Solved)
	assert.Equal(t, "alice", out.Owner)
}

func TestDecodeAll_NeverNil(t *testing.T) {
	out, err := schema.DecodeAll[schema.ReportByDay](nil)

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestReportUpdate_OmitsNilFields(t *testing.T) {
	solved := false
	update := schema.ReportUpdate{Solved: &solved}

	raw, err := bson.Marshal(update)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, bson.M{"solved": false}, doc)
}

func TestReportIn_ToUpdateSetsEveryField(t *testing.T) {
	in := schema.ReportIn{Object: "M1", Source: "s", Observation: "o", ReportType: "t"}

	raw, err := bson.Marshal(in.ToUpdate())
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Len(t, doc, 5)
	assert.Equal(t, false, doc["solved"])
}

func TestUserSignup_ToModel(t *testing.T) {
	signup := schema.UserSignup{FirstName: "Ada", LastName: "Lovelace", Username: "ada", Email: "ada@example.com"}

	user := signup.ToModel("$2a$10$hash")

	assert.Equal(t, "password", user.AuthSource.Name)
	assert.Equal(t, "$2a$10$hash", user.AuthSource.Password)
	assert.True(t, user.Active)
	assert.False(t, user.Verified)
}
