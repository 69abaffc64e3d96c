package mongodb

import (
	"context"
	stderrors "errors"

	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
	"go.uber.org/zap"
)

// ErrNotConnected는 Connect 전이나 Close 후에 작업을 호출했을 때 반환됩니다
var ErrNotConnected = stderrors.New("mongodb: store is not connected")

// normalizeError는 드라이버 에러를 에러 분류 체계로 변환합니다.
// 분류되지 않는 에러는 컨텍스트와 함께 로깅하고 그대로 반환합니다.
func normalizeError(ctx context.Context, operation, collection string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case mongo.IsDuplicateKeyError(err):
		return errors.DuplicateKey(err)
	case isUnavailable(err):
		return errors.StoreUnavailable(err)
	}

	logger.Error(ctx, "unexpected document store failure",
		logger.Operation(operation),
		logger.Collection(collection),
		zap.Error(err),
	)
	return err
}

// isUnavailable은 저장소에 도달하지 못한 에러인지 확인합니다
func isUnavailable(err error) bool {
	if stderrors.Is(err, ErrNotConnected) || stderrors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	var selectionErr topology.ServerSelectionError
	return stderrors.As(err, &selectionErr)
}

// statusOf는 메트릭 라벨에 사용할 작업 결과를 반환합니다
func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, errors.ErrCodeNotFound):
		return "not_found"
	case errors.Is(err, errors.ErrCodeDuplicateKey):
		return "duplicate"
	case errors.Is(err, errors.ErrCodeValidation):
		return "invalid"
	case errors.Is(err, errors.ErrCodeServiceUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
