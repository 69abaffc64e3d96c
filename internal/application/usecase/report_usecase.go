// Package usecase는 HTTP 핸들러와 문서 저장소 사이의 애플리케이션 로직입니다.
package usecase

import (
	"context"

	"github.com/YouSangSon/reports-service/internal/application/filter"
	"github.com/YouSangSon/reports-service/internal/domain/event"
	"github.com/YouSangSon/reports-service/internal/domain/model"
	"github.com/YouSangSon/reports-service/internal/domain/repository"
	"github.com/YouSangSon/reports-service/internal/domain/schema"
	"github.com/YouSangSon/reports-service/internal/pkg/circuitbreaker"
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/YouSangSon/reports-service/internal/pkg/query"
	"github.com/YouSangSon/reports-service/internal/pkg/tracing"
	"github.com/YouSangSon/reports-service/internal/pkg/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReportUseCase는 리포트 관련 유즈케이스입니다
type ReportUseCase struct {
	store          repository.DocumentStore
	events         event.Publisher
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewReportUseCase는 새로운 ReportUseCase를 생성합니다
func NewReportUseCase(store repository.DocumentStore, events event.Publisher) *ReportUseCase {
	if events == nil {
		events = event.NopPublisher{}
	}
	return &ReportUseCase{
		store:          store,
		events:         events,
		circuitBreaker: newStoreBreaker("report_usecase"),
	}
}

// Create는 인증된 사용자를 소유자로 하는 리포트를 생성합니다
func (uc *ReportUseCase) Create(ctx context.Context, owner string, in *schema.ReportIn) (*schema.ReportOut, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportUseCase.Create")
	defer span.End()

	tracing.SetAttributes(ctx, attribute.String("owner", owner))

	if owner == "" {
		return nil, errors.ErrUnauthorized
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	doc, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) (bson.M, error) {
		return uc.store.CreateDocument(ctx, model.ReportBinding, in.ToModel(owner))
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	out, err := schema.Decode[schema.ReportOut](doc)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "report created",
		logger.DocumentID(out.ID.Hex()),
		logger.Owner(owner),
	)
	publish(ctx, uc.events, event.New(event.ReportCreated, model.ReportCollection, out.ID.Hex(), owner, out))
	return out, nil
}

// Get은 ID로 리포트를 조회합니다
func (uc *ReportUseCase) Get(ctx context.Context, id string) (*schema.ReportOut, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportUseCase.Get")
	defer span.End()

	tracing.SetAttributes(ctx, attribute.String("id", id))

	doc, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) (bson.M, error) {
		return uc.store.ReadDocument(ctx, model.ReportBinding, id)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	return schema.Decode[schema.ReportOut](doc)
}

// Update는 소유자의 리포트를 부분 수정합니다. 다른 사용자의 리포트는 FORBIDDEN입니다.
func (uc *ReportUseCase) Update(ctx context.Context, owner, id string, update *schema.ReportUpdate) (*schema.ReportOut, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportUseCase.Update")
	defer span.End()

	tracing.SetAttributes(ctx,
		attribute.String("id", id),
		attribute.String("owner", owner),
	)

	if err := validation.Struct(update); err != nil {
		return nil, err
	}
	if err := uc.authorize(ctx, owner, id); err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	doc, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) (bson.M, error) {
		return uc.store.UpdateDocument(ctx, model.ReportBinding, id, update)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	out, err := schema.Decode[schema.ReportOut](doc)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "report updated", logger.DocumentID(id), logger.Owner(owner))
	publish(ctx, uc.events, event.New(event.ReportUpdated, model.ReportCollection, id, owner, out))
	return out, nil
}

// Replace는 리포트의 모든 수정 가능한 필드를 덮어씁니다
func (uc *ReportUseCase) Replace(ctx context.Context, owner, id string, in *schema.ReportIn) (*schema.ReportOut, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	update := in.ToUpdate()
	return uc.Update(ctx, owner, id, &update)
}

// Delete는 소유자의 리포트를 삭제합니다
func (uc *ReportUseCase) Delete(ctx context.Context, owner, id string) error {
	ctx, span := tracing.StartSpan(ctx, "ReportUseCase.Delete")
	defer span.End()

	tracing.SetAttributes(ctx,
		attribute.String("id", id),
		attribute.String("owner", owner),
	)

	if err := uc.authorize(ctx, owner, id); err != nil {
		tracing.RecordError(ctx, err)
		return err
	}

	_, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, uc.store.DeleteDocument(ctx, model.ReportBinding, id)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return err
	}

	logger.Info(ctx, "report deleted", logger.DocumentID(id), logger.Owner(owner))
	publish(ctx, uc.events, event.New(event.ReportDeleted, model.ReportCollection, id, owner, nil))
	return nil
}

// authorize는 리포트가 존재하고 owner의 것인지 확인합니다
func (uc *ReportUseCase) authorize(ctx context.Context, owner, id string) error {
	if owner == "" {
		return errors.ErrUnauthorized
	}
	current, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Owner != owner {
		logger.Warn(ctx, "report modification denied",
			logger.DocumentID(id),
			logger.Owner(owner),
			zap.String("report_owner", current.Owner),
		)
		return errors.ErrForbidden
	}
	return nil
}

// ListByObject는 천체별로 묶은 리포트를 페이지 단위로 조회합니다
func (uc *ReportUseCase) ListByObject(ctx context.Context, q *filter.QueryByObject) (*schema.Paginated[schema.ReportByObject], error) {
	ctx, span := tracing.StartSpan(ctx, "ReportUseCase.ListByObject")
	defer span.End()

	return paginate[schema.ReportByObject](ctx, uc, q)
}

// List는 개별 리포트를 페이지 단위로 조회합니다
func (uc *ReportUseCase) List(ctx context.Context, q *filter.QueryByReport) (*schema.Paginated[schema.ReportOut], error) {
	ctx, span := tracing.StartSpan(ctx, "ReportUseCase.List")
	defer span.End()

	return paginate[schema.ReportOut](ctx, uc, q)
}

// ExportByObject는 CSV 다운로드용으로 천체별 리포트의 한 페이지를 조회합니다. 전체 개수는 세지 않습니다.
func (uc *ReportUseCase) ExportByObject(ctx context.Context, q *filter.QueryByObject) ([]schema.ReportByObject, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportUseCase.ExportByObject")
	defer span.End()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	docs, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) ([]bson.M, error) {
		return uc.store.PaginateDocuments(ctx, model.ReportBinding, q)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	return schema.DecodeAll[schema.ReportByObject](docs)
}

// CountByDay는 일별 리포트 수를 조회합니다
func (uc *ReportUseCase) CountByDay(ctx context.Context, q *filter.QueryByDay) ([]schema.ReportByDay, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportUseCase.CountByDay")
	defer span.End()

	return readAll[schema.ReportByDay](ctx, uc, q)
}

// CountByUser는 사용자별 리포트 수를 조회합니다
func (uc *ReportUseCase) CountByUser(ctx context.Context, q *filter.QueryByUser) ([]schema.ReportByUser, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportUseCase.CountByUser")
	defer span.End()

	return readAll[schema.ReportByUser](ctx, uc, q)
}

// paginate는 필터를 검증하고 전체 개수를 먼저 센 뒤 요청한 페이지를 읽습니다
func paginate[T any](ctx context.Context, uc *ReportUseCase, q query.PaginatedQuery) (*schema.Paginated[T], error) {
	if err := query.Validate(q); err != nil {
		return nil, err
	}

	total, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) (int64, error) {
		return uc.store.CountDocuments(ctx, model.ReportBinding, q)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	docs, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) ([]bson.M, error) {
		return uc.store.PaginateDocuments(ctx, model.ReportBinding, q)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	results, err := schema.DecodeAll[T](docs)
	if err != nil {
		return nil, err
	}
	return schema.NewPaginated(total, q, results), nil
}

func readAll[T any](ctx context.Context, uc *ReportUseCase, q query.Query) ([]T, error) {
	if err := query.Validate(q); err != nil {
		return nil, err
	}

	docs, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) ([]bson.M, error) {
		return uc.store.ReadDocuments(ctx, model.ReportBinding, q)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	return schema.DecodeAll[T](docs)
}
