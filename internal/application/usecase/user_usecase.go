package usecase

import (
	"context"

	"github.com/YouSangSon/reports-service/internal/application/filter"
	"github.com/YouSangSon/reports-service/internal/domain/event"
	"github.com/YouSangSon/reports-service/internal/domain/model"
	"github.com/YouSangSon/reports-service/internal/domain/repository"
	"github.com/YouSangSon/reports-service/internal/domain/schema"
	"github.com/YouSangSon/reports-service/internal/pkg/auth"
	"github.com/YouSangSon/reports-service/internal/pkg/circuitbreaker"
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/logger"
	"github.com/YouSangSon/reports-service/internal/pkg/tracing"
	"github.com/YouSangSon/reports-service/internal/pkg/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var errInvalidCredentials = errors.New(errors.ErrCodeUnauthorized, "invalid username or password")

// UserUseCase는 사용자 계정 관련 유즈케이스입니다
type UserUseCase struct {
	store          repository.DocumentStore
	tokens         *auth.Issuer
	events         event.Publisher
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewUserUseCase는 새로운 UserUseCase를 생성합니다
func NewUserUseCase(store repository.DocumentStore, tokens *auth.Issuer, events event.Publisher) *UserUseCase {
	if events == nil {
		events = event.NopPublisher{}
	}
	return &UserUseCase{
		store:          store,
		tokens:         tokens,
		events:         events,
		circuitBreaker: newStoreBreaker("user_usecase"),
	}
}

// Register는 비밀번호 인증 사용자를 생성합니다
func (uc *UserUseCase) Register(ctx context.Context, in *schema.UserSignup) (*schema.UserOut, error) {
	ctx, span := tracing.StartSpan(ctx, "UserUseCase.Register")
	defer span.End()

	tracing.SetAttributes(ctx, attribute.String("username", in.Username))

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if existing, err := uc.findByAuthSource(ctx, &filter.QueryByAuthSource{Username: in.Username}); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errors.New(errors.ErrCodeDuplicateKey, "username is already registered")
	}
	if existing, err := uc.findByAuthSource(ctx, &filter.QueryByAuthSource{Email: in.Email}); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errors.New(errors.ErrCodeDuplicateKey, "email is already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to register user")
	}

	doc, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) (bson.M, error) {
		return uc.store.CreateDocument(ctx, model.UserBinding, in.ToModel(hash))
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	out, err := schema.Decode[schema.UserOut](doc)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered",
		logger.UserID(out.ID.Hex()),
		zap.String("username", in.Username),
	)
	publish(ctx, uc.events, event.New(event.UserRegistered, model.UserCollection, out.ID.Hex(), in.Username, out))
	return out, nil
}

// Login은 비밀번호를 확인하고 액세스/리프레시 토큰을 발급합니다. 성공하면 last_login을 갱신합니다.
func (uc *UserUseCase) Login(ctx context.Context, in *schema.UserLogin) (*schema.Token, error) {
	ctx, span := tracing.StartSpan(ctx, "UserUseCase.Login")
	defer span.End()

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := uc.findByAuthSource(ctx, &filter.QueryByAuthSource{Username: in.Username})
	if err != nil {
		return nil, err
	}
	if user == nil || user.AuthSource.Name != model.AuthPassword || !auth.CheckPassword(user.AuthSource.Password, in.Password) {
		logger.Warn(ctx, "login failed", zap.String("username", in.Username))
		return nil, errInvalidCredentials
	}
	if !user.Active {
		return nil, errors.New(errors.ErrCodeForbidden, "user is inactive")
	}

	id := user.ID.Hex()
	_, err = call(ctx, uc.circuitBreaker, func(ctx context.Context) (bson.M, error) {
		return uc.store.UpdateDocument(ctx, model.UserBinding, id, schema.UserLastLogin{LastLogin: model.Now()})
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	token, err := uc.issue(id, user.AuthSource.Username)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user logged in", logger.UserID(id))
	return token, nil
}

// VerifyToken은 토큰의 서명과 만료만 확인합니다. 사용자 존재 여부는 확인하지 않습니다.
func (uc *UserUseCase) VerifyToken(ctx context.Context, in *schema.TokenIn) (*schema.TokenValidity, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return &schema.TokenValidity{Valid: uc.tokens.Verify(in.Token) == nil}, nil
}

// Refresh는 리프레시 토큰을 검증하고, 사용자가 여전히 활성 상태이면 새 토큰 쌍을 발급합니다
func (uc *UserUseCase) Refresh(ctx context.Context, in *schema.RefreshIn) (*schema.Token, error) {
	ctx, span := tracing.StartSpan(ctx, "UserUseCase.Refresh")
	defer span.End()

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	claims, err := uc.tokens.ParseRefresh(in.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := uc.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active {
		return nil, errors.New(errors.ErrCodeForbidden, "user is inactive")
	}
	return uc.issue(claims.Subject, user.AuthSource.Username)
}

func (uc *UserUseCase) issue(id, username string) (*schema.Token, error) {
	access, err := uc.tokens.Issue(id, username)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to issue access token")
	}
	refresh, err := uc.tokens.IssueRefresh(id, username)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to issue refresh token")
	}
	return &schema.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    auth.TokenType,
		ExpiresIn:    int64(uc.tokens.TTL().Seconds()),
	}, nil
}

// Get은 ID로 사용자를 조회합니다
func (uc *UserUseCase) Get(ctx context.Context, id string) (*schema.UserOut, error) {
	ctx, span := tracing.StartSpan(ctx, "UserUseCase.Get")
	defer span.End()

	tracing.SetAttributes(ctx, attribute.String("id", id))

	doc, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) (bson.M, error) {
		return uc.store.ReadDocument(ctx, model.UserBinding, id)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	return schema.Decode[schema.UserOut](doc)
}

// Update는 사용자 프로필을 부분 수정합니다
func (uc *UserUseCase) Update(ctx context.Context, id string, update *schema.UserUpdate) (*schema.UserOut, error) {
	ctx, span := tracing.StartSpan(ctx, "UserUseCase.Update")
	defer span.End()

	if err := validation.Struct(update); err != nil {
		return nil, err
	}
	return uc.update(ctx, id, update)
}

// SetFlags는 verified/active 상태를 변경합니다
func (uc *UserUseCase) SetFlags(ctx context.Context, id string, flags *schema.UserFlags) (*schema.UserOut, error) {
	ctx, span := tracing.StartSpan(ctx, "UserUseCase.SetFlags")
	defer span.End()

	out, err := uc.update(ctx, id, flags)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "user flags changed",
		logger.UserID(id),
		zap.Bool("verified", out.Verified),
		zap.Bool("active", out.Active),
	)
	return out, nil
}

func (uc *UserUseCase) update(ctx context.Context, id string, update interface{}) (*schema.UserOut, error) {
	doc, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) (bson.M, error) {
		return uc.store.UpdateDocument(ctx, model.UserBinding, id, update)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	return schema.Decode[schema.UserOut](doc)
}

// Delete는 사용자를 삭제합니다
func (uc *UserUseCase) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "UserUseCase.Delete")
	defer span.End()

	_, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, uc.store.DeleteDocument(ctx, model.UserBinding, id)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return err
	}

	logger.Info(ctx, "user deleted", logger.UserID(id))
	publish(ctx, uc.events, event.New(event.UserDeleted, model.UserCollection, id, "", nil))
	return nil
}

// findByAuthSource는 인증 소스로 사용자를 찾습니다. 없으면 nil을 반환합니다.
func (uc *UserUseCase) findByAuthSource(ctx context.Context, q *filter.QueryByAuthSource) (*model.User, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	docs, err := call(ctx, uc.circuitBreaker, func(ctx context.Context) ([]bson.M, error) {
		return uc.store.ReadDocuments(ctx, model.UserBinding, q)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return schema.Decode[model.User](docs[0])
}
