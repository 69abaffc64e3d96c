package repository

import (
	"context"

	"github.com/YouSangSon/reports-service/internal/domain/model"
	"github.com/YouSangSon/reports-service/internal/pkg/query"
	"go.mongodb.org/mongo-driver/bson"
)

// DocumentStore는 모델 바인딩 단위로 컬렉션에 접근하는 문서 저장소 인터페이스입니다.
// 모든 메서드는 DocumentNotFound, DuplicateKey, StoreUnavailable, ValidationError 중 하나를
// 변환 없이 그대로 반환하며, 그 외 에러는 로깅 후 원본 그대로 반환합니다.
type DocumentStore interface {
	// Connect는 저장소 연결을 수립합니다. 이미 연결되어 있으면 아무 일도 하지 않습니다.
	Connect(ctx context.Context) error

	// Close는 연결을 해제합니다. 여러 번 호출해도 안전합니다.
	Close(ctx context.Context) error

	// CreateDB는 등록된 모든 모델의 인덱스를 생성합니다
	CreateDB(ctx context.Context) error

	// DropDB는 데이터베이스를 삭제합니다
	DropDB(ctx context.Context) error

	// Ping은 저장소 연결 상태를 확인합니다
	Ping(ctx context.Context) error

	// CreateDocument는 payload를 검증한 뒤 저장하고 저장된 문서를 반환합니다
	CreateDocument(ctx context.Context, binding *model.Binding, payload interface{}) (bson.M, error)

	// ReadDocument는 ID로 문서를 조회합니다
	ReadDocument(ctx context.Context, binding *model.Binding, id string) (bson.M, error)

	// UpdateDocument는 update에 존재하는 필드만 덮어쓰고 수정된 문서를 반환합니다
	UpdateDocument(ctx context.Context, binding *model.Binding, id string, update interface{}) (bson.M, error)

	// DeleteDocument는 문서를 삭제합니다
	DeleteDocument(ctx context.Context, binding *model.Binding, id string) error

	// CountDocuments는 필터의 count pipeline을 실행합니다. 결과가 없으면 0입니다.
	CountDocuments(ctx context.Context, binding *model.Binding, q query.Query) (int64, error)

	// ReadDocuments는 필터 pipeline의 모든 결과를 반환합니다
	ReadDocuments(ctx context.Context, binding *model.Binding, q query.Query) ([]bson.M, error)

	// PaginateDocuments는 필터 pipeline의 결과를 페이지 크기만큼 반환합니다
	PaginateDocuments(ctx context.Context, binding *model.Binding, q query.PaginatedQuery) ([]bson.M, error)
}
