package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/YouSangSon/reports-service/internal/domain/model"
	"github.com/YouSangSon/reports-service/internal/domain/repository"
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/YouSangSon/reports-service/internal/pkg/metrics"
	"github.com/YouSangSon/reports-service/internal/pkg/query"
	"github.com/YouSangSon/reports-service/internal/pkg/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore는 MongoDB 기반 문서 저장소입니다.
// 프로세스당 하나의 클라이언트를 공유하며 연결 풀링은 드라이버가 담당합니다.
type DocumentStore struct {
	cfg      *Config
	dbName   string
	registry *model.Registry
	metrics  *metrics.Metrics

	mu         sync.RWMutex
	client     *mongo.Client
	database   *mongo.Database
	ownsClient bool
}

// NewDocumentStore는 설정으로 저장소를 생성합니다. 연결은 Connect에서 수립됩니다.
func NewDocumentStore(cfg *Config, registry *model.Registry) *DocumentStore {
	return &DocumentStore{
		cfg:        cfg,
		dbName:     cfg.Database,
		registry:   registry,
		metrics:    metrics.GetMetrics(),
		ownsClient: true,
	}
}

// NewDocumentStoreWithClient는 이미 연결된 클라이언트로 저장소를 생성합니다.
// 클라이언트의 수명은 호출자가 관리합니다.
func NewDocumentStoreWithClient(client *mongo.Client, database string, registry *model.Registry) *DocumentStore {
	return &DocumentStore{
		dbName:   database,
		registry: registry,
		metrics:  metrics.GetMetrics(),
		client:   client,
		database: client.Database(database),
	}
}

// Connect는 MongoDB 클라이언트를 생성합니다
func (s *DocumentStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}
	if s.cfg == nil {
		return ErrNotConnected
	}

	clientOptions := options.Client().
		ApplyURI(s.cfg.URI()).
		SetReadPreference(readpref.Primary())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Error(ctx, "failed to connect to MongoDB",
			logger.DatabaseHost(s.cfg.Host),
			zap.Error(err),
		)
		return errors.StoreUnavailable(fmt.Errorf("failed to connect to MongoDB: %w", err))
	}

	s.client = client
	s.database = client.Database(s.dbName)
	s.ownsClient = true

	logger.Info(ctx, "MongoDB client created",
		logger.DatabaseHost(s.cfg.Host),
		logger.DatabaseName(s.dbName),
	)
	return nil
}

// Close는 클라이언트 연결을 해제합니다
func (s *DocumentStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}

	var err error
	if s.ownsClient {
		err = s.client.Disconnect(ctx)
	}
	s.client = nil
	s.database = nil

	if err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	logger.Info(ctx, "MongoDB client closed", logger.DatabaseName(s.dbName))
	return nil
}

func (s *DocumentStore) db() (*mongo.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.database == nil {
		return nil, errors.StoreUnavailable(ErrNotConnected)
	}
	return s.database, nil
}

func (s *DocumentStore) collection(binding *model.Binding) (*mongo.Collection, error) {
	if binding == nil || binding.Collection == "" {
		return nil, fmt.Errorf("model binding requires a collection name")
	}
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return db.Collection(binding.Collection), nil
}

// CreateDB는 등록된 모든 모델의 인덱스를 생성합니다.
// 저장소에 도달할 수 없으면 경고만 남기고 계속 진행합니다.
func (s *DocumentStore) CreateDB(ctx context.Context) error {
	for _, binding := range s.registry.Models() {
		if len(binding.Indexes) == 0 {
			continue
		}

		start := time.Now()
		coll, err := s.collection(binding)
		if err == nil {
			_, err = coll.Indexes().CreateMany(ctx, binding.Indexes)
		}
		err = s.finish(ctx, "create_indexes", binding.Collection, start, err)

		if errors.Is(err, errors.ErrCodeServiceUnavailable) {
			logger.Warn(ctx, "skipping index creation, document store unavailable",
				logger.Collection(binding.Collection),
				zap.Error(err),
			)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", binding.Name, err)
		}

		logger.Info(ctx, "indexes ensured",
			logger.Collection(binding.Collection),
			logger.Count(len(binding.Indexes)),
		)
	}
	return nil
}

// DropDB는 데이터베이스 전체를 삭제합니다
func (s *DocumentStore) DropDB(ctx context.Context) error {
	start := time.Now()
	db, err := s.db()
	if err == nil {
		err = db.Drop(ctx)
	}
	return s.finish(ctx, "drop_db", s.dbName, start, err)
}

// Ping은 primary에 ping을 보냅니다
func (s *DocumentStore) Ping(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return normalizeError(ctx, "ping", s.dbName, err)
	}
	return nil
}

// CreateDocument는 payload를 검증하고 기본값을 채운 뒤 저장합니다.
// 반환값은 실제로 저장된 문서(생성된 _id 포함)입니다.
func (s *DocumentStore) CreateDocument(ctx context.Context, binding *model.Binding, payload interface{}) (bson.M, error) {
	const op = "create"
	start := time.Now()

	if d, ok := payload.(model.Defaulter); ok {
		d.SetDefaults()
	}
	if err := validateStruct(payload); err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}

	doc, err := toDocument(payload)
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}

	coll, err := s.collection(binding)
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}

	result, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = result.InsertedID
	}

	return doc, s.finish(ctx, op, binding.Collection, start, nil, logger.DocumentID(idString(doc["_id"])))
}

// ReadDocument는 ID로 문서를 조회합니다
func (s *DocumentStore) ReadDocument(ctx context.Context, binding *model.Binding, id string) (bson.M, error) {
	const op = "read"
	start := time.Now()

	coll, err := s.collection(binding)
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}

	var doc bson.M
	err = coll.FindOne(ctx, bson.M{"_id": parseID(id)}).Decode(&doc)
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, notFound(err, id), logger.DocumentID(id))
	}
	return doc, s.finish(ctx, op, binding.Collection, start, nil, logger.DocumentID(id))
}

// UpdateDocument는 update에 존재하는 필드만 $set으로 덮어쓰고 수정 후 문서를 반환합니다.
// 변경할 필드가 없으면 현재 문서를 그대로 반환합니다.
func (s *DocumentStore) UpdateDocument(ctx context.Context, binding *model.Binding, id string, update interface{}) (bson.M, error) {
	const op = "update"
	start := time.Now()

	if err := validateStruct(update); err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}

	set, err := toDocument(update)
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}
	delete(set, "_id")
	if len(set) == 0 {
		return s.ReadDocument(ctx, binding, id)
	}

	coll, err := s.collection(binding)
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bson.M
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": parseID(id)}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, notFound(err, id), logger.DocumentID(id))
	}
	return doc, s.finish(ctx, op, binding.Collection, start, nil, logger.DocumentID(id))
}

// DeleteDocument는 문서를 삭제합니다
func (s *DocumentStore) DeleteDocument(ctx context.Context, binding *model.Binding, id string) error {
	const op = "delete"
	start := time.Now()

	coll, err := s.collection(binding)
	if err != nil {
		return s.finish(ctx, op, binding.Collection, start, err)
	}

	err = coll.FindOneAndDelete(ctx, bson.M{"_id": parseID(id)}).Err()
	return s.finish(ctx, op, binding.Collection, start, notFound(err, id), logger.DocumentID(id))
}

// CountDocuments는 count pipeline을 실행합니다. 일치하는 문서가 없으면 결과 행이 없으므로 0을 반환합니다.
func (s *DocumentStore) CountDocuments(ctx context.Context, binding *model.Binding, q query.Query) (int64, error) {
	const op = "count"
	start := time.Now()

	rows, err := s.aggregate(ctx, binding, q, q.CountPipeline(), 1)
	if err != nil {
		return 0, s.finish(ctx, op, binding.Collection, start, err)
	}

	var total int64
	if len(rows) > 0 {
		total, err = toInt64(rows[0][query.CountField])
	}
	return total, s.finish(ctx, op, binding.Collection, start, err, zap.Int64("total", total))
}

// ReadDocuments는 pipeline의 모든 결과를 순서대로 반환합니다
func (s *DocumentStore) ReadDocuments(ctx context.Context, binding *model.Binding, q query.Query) ([]bson.M, error) {
	const op = "aggregate"
	start := time.Now()

	docs, err := s.aggregate(ctx, binding, q, q.Pipeline(), 0)
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}
	s.metrics.RecordDocumentsReturned(op, binding.Collection, len(docs))
	return docs, s.finish(ctx, op, binding.Collection, start, nil, logger.Count(len(docs)))
}

// PaginateDocuments는 pipeline 결과를 최대 q.Limit()개까지 반환합니다
func (s *DocumentStore) PaginateDocuments(ctx context.Context, binding *model.Binding, q query.PaginatedQuery) ([]bson.M, error) {
	const op = "paginate"
	start := time.Now()

	docs, err := s.aggregate(ctx, binding, q, q.Pipeline(), q.Limit())
	if err != nil {
		return nil, s.finish(ctx, op, binding.Collection, start, err)
	}
	s.metrics.RecordDocumentsReturned(op, binding.Collection, len(docs))
	return docs, s.finish(ctx, op, binding.Collection, start, nil, logger.Page(q.Page()), logger.Count(len(docs)))
}

// aggregate는 pipeline을 실행하고 최대 limit개(0이면 제한 없음)의 문서를 읽습니다
func (s *DocumentStore) aggregate(ctx context.Context, binding *model.Binding, q query.Query, pipeline mongo.Pipeline, limit int64) ([]bson.M, error) {
	if err := query.Validate(q); err != nil {
		return nil, err
	}

	coll, err := s.collection(binding)
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "running aggregation",
		logger.Collection(binding.Collection),
		logger.Pipeline(pipeline),
	)

	opts := options.Aggregate()
	if limit > 0 && limit <= int64(^uint32(0)>>1) {
		opts.SetBatchSize(int32(limit))
	}
	cursor, err := coll.Aggregate(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]bson.M, 0)
	for (limit == 0 || int64(len(docs)) < limit) && cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// finish는 에러를 정규화하고 메트릭과 로그를 남깁니다
func (s *DocumentStore) finish(ctx context.Context, op, collection string, start time.Time, err error, fields ...zap.Field) error {
	duration := time.Since(start)
	err = normalizeError(ctx, op, collection, err)
	s.metrics.RecordDBOperation(op, collection, statusOf(err), duration)

	if err == nil {
		logger.Debug(ctx, "document store operation completed",
			append(fields,
				logger.Operation(op),
				logger.Collection(collection),
				logger.Duration(duration),
			)...,
		)
	}
	return err
}

// parseID는 유효한 ObjectID 문자열이면 ObjectID로, 아니면 문자열 그대로 비교합니다
func parseID(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}

func notFound(err error, id string) error {
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return errors.DocumentNotFound(id)
	}
	return err
}

// toDocument는 구조체 또는 맵을 bson.M으로 변환합니다. bson 태그가 없는 필드는 저장되지 않습니다.
func toDocument(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, errors.Validation("payload cannot be encoded").WithDetails(err.Error())
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if doc == nil {
		doc = bson.M{}
	}
	return doc, nil
}

// validateStruct는 구조체 payload만 validator로 검증합니다
func validateStruct(v interface{}) error {
	if v == nil {
		return errors.Validation("payload is required")
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validation.Struct(v)
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected count value %v (%T)", v, v)
	}
}
