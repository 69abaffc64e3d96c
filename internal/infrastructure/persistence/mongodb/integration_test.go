//go:build integration

package mongodb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/YouSangSon/reports-service/internal/application/filter"
	"github.com/YouSangSon/reports-service/internal/domain/model"
	"github.com/YouSangSon/reports-service/internal/domain/schema"
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMongo는 테스트용 MongoDB 컨테이너를 띄우고 연결된 저장소를 반환합니다
func startMongo(t *testing.T) *DocumentStore {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			Env: map[string]string{
				"MONGO_INITDB_ROOT_USERNAME": "test",
				"MONGO_INITDB_ROOT_PASSWORD": "test",
			},
			WaitingFor: wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	cfg, err := ParseConfig(map[string]interface{}{
		"host":        host,
		"port":        port.Port(),
		"username":    "test",
		"password":    "test",
		"database":    "reports_it",
		"auth_source": "admin",
	})
	require.NoError(t, err)

	registry, err := model.DefaultRegistry()
	require.NoError(t, err)

	store := NewDocumentStore(cfg, registry)
	require.NoError(t, store.Connect(ctx))
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.CreateDB(ctx))
	t.Cleanup(func() {
		_ = store.DropDB(ctx)
		_ = store.Close(ctx)
	})
	return store
}

func TestDocumentStore_Integration(t *testing.T) {
	store := startMongo(t)
	ctx := context.Background()

	t.Run("empty paginated list", func(t *testing.T) {
		q := filter.NewQueryByReport()

		total, err := store.CountDocuments(ctx, model.ReportBinding, q)
		require.NoError(t, err)
		docs, err := store.PaginateDocuments(ctx, model.ReportBinding, q)
		require.NoError(t, err)
		reports, err := schema.DecodeAll[schema.ReportOut](docs)
		require.NoError(t, err)

		page := schema.NewPaginated(total, q, reports)
		assert.Equal(t, int64(0), page.Count)
		assert.Nil(t, page.Next)
		assert.Nil(t, page.Previous)
		assert.Empty(t, page.Results)
	})

	t.Run("create then read round trip", func(t *testing.T) {
		report := schema.ReportIn{Object: "M31", Source: "ZTF", Observation: "bright", ReportType: "TOM"}.ToModel("bob")

		created, err := store.CreateDocument(ctx, model.ReportBinding, report)
		require.NoError(t, err)

		read, err := store.ReadDocument(ctx, model.ReportBinding, report.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, created, read)

		require.NoError(t, store.DeleteDocument(ctx, model.ReportBinding, report.ID.Hex()))
	})

	t.Run("missing ids", func(t *testing.T) {
		object := "M1"
		_, err := store.UpdateDocument(ctx, model.ReportBinding, "000000000000000000000000", schema.ReportUpdate{Object: &object})
		assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

		err = store.DeleteDocument(ctx, model.ReportBinding, "not-an-object-id")
		assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

		total, err := store.CountDocuments(ctx, model.ReportBinding, filter.NewQueryByReport())
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("duplicate owner, object and type", func(t *testing.T) {
		first := schema.ReportIn{Object: "M42", Source: "ZTF", Observation: "a", ReportType: "TOM"}.ToModel("carol")
		second := schema.ReportIn{Object: "M42", Source: "ATLAS", Observation: "b", ReportType: "TOM"}.ToModel("carol")
		other := schema.ReportIn{Object: "M42", Source: "ATLAS", Observation: "c", ReportType: "SN"}.ToModel("carol")

		_, err := store.CreateDocument(ctx, model.ReportBinding, first)
		require.NoError(t, err)
		_, err = store.CreateDocument(ctx, model.ReportBinding, second)
		assert.True(t, errors.Is(err, errors.ErrCodeDuplicateKey))

		_, err = store.CreateDocument(ctx, model.ReportBinding, other)
		require.NoError(t, err)
		reportType := "TOM"
		_, err = store.UpdateDocument(ctx, model.ReportBinding, other.ID.Hex(), schema.ReportUpdate{ReportType: &reportType})
		assert.True(t, errors.Is(err, errors.ErrCodeDuplicateKey))

		unchanged, err := store.ReadDocument(ctx, model.ReportBinding, other.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "SN", unchanged["report_type"])

		require.NoError(t, store.DeleteDocument(ctx, model.ReportBinding, first.ID.Hex()))
		require.NoError(t, store.DeleteDocument(ctx, model.ReportBinding, other.ID.Hex()))
	})

	t.Run("grouped by object, sorted by last date", func(t *testing.T) {
		base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		for k := 1; k <= 3; k++ {
			for j := 0; j < 3; j++ {
				report := &model.Report{
					Date:        base.Add(time.Duration(k*10+j) * time.Hour),
					Object:      fmt.Sprintf("OBJECT%d", k),
					Source:      "ZTF",
					Observation: "obs",
					ReportType:  fmt.Sprintf("T%d", j),
					Owner:       "dave",
				}
				_, err := store.CreateDocument(ctx, model.ReportBinding, report)
				require.NoError(t, err)
			}
		}

		q := filter.NewQueryByObject()
		q.OrderBy = "last_date"
		q.PageSize = 2

		total, err := store.CountDocuments(ctx, model.ReportBinding, q)
		require.NoError(t, err)
		docs, err := store.PaginateDocuments(ctx, model.ReportBinding, q)
		require.NoError(t, err)
		groups, err := schema.DecodeAll[schema.ReportByObject](docs)
		require.NoError(t, err)
		page := schema.NewPaginated(total, q, groups)

		assert.Equal(t, int64(3), page.Count)
		require.NotNil(t, page.Next)
		assert.Equal(t, 2, *page.Next)
		assert.Nil(t, page.Previous)
		require.Len(t, page.Results, 2)
		assert.Equal(t, "OBJECT3", page.Results[0].Object)
		assert.Equal(t, "OBJECT2", page.Results[1].Object)
		assert.Equal(t, int64(3), page.Results[0].Count)
		assert.True(t, page.Results[0].LastDate.Equal(base.Add(32*time.Hour)))
		assert.ElementsMatch(t, []string{"T0", "T1", "T2"}, page.Results[0].ReportTypes)
		assert.Equal(t, []string{"dave"}, page.Results[0].Users)

		byUser, err := store.ReadDocuments(ctx, model.ReportBinding, filter.NewQueryByUser())
		require.NoError(t, err)
		users, err := schema.DecodeAll[schema.ReportByUser](byUser)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, schema.ReportByUser{User: "dave", Count: 9}, users[0])
	})
}
