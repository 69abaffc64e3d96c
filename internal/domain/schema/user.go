package schema

import (
	"time"

	"github.com/YouSangSon/reports-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSignup은 비밀번호 기반 회원가입 요청입니다
type UserSignup struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Institution string `json:"institution"`
	Username    string `json:"username" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

// ToModel은 해시된 비밀번호로 저장 모델을 만듭니다
func (s UserSignup) ToModel(passwordHash string) *model.User {
	return &model.User{
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Institution: s.Institution,
		AuthSource: model.AuthSource{
			Name:     model.AuthPassword,
			Username: s.Username,
			Email:    s.Email,
			Password: passwordHash,
		},
		Active: true,
	}
}

// UserLogin은 로그인 요청입니다
type UserLogin struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UserUpdate는 프로필 부분 수정 요청입니다
type UserUpdate struct {
	FirstName   *string `json:"first_name,omitempty" bson:"first_name,omitempty" validate:"omitempty,min=1"`
	LastName    *string `json:"last_name,omitempty" bson:"last_name,omitempty" validate:"omitempty,min=1"`
	Institution *string `json:"institution,omitempty" bson:"institution,omitempty"`
}

// UserFlags는 관리용 상태 변경 요청입니다
type UserFlags struct {
	Verified *bool `json:"verified,omitempty" bson:"verified,omitempty"`
	Active   *bool `json:"active,omitempty" bson:"active,omitempty"`
}

// UserLastLogin은 마지막 로그인 시각 갱신용입니다
type UserLastLogin struct {
	LastLogin time.Time `bson:"last_login"`
}

// AuthSourceOut은 비밀번호를 제외한 인증 소스입니다
type AuthSourceOut struct {
	Name     string `bson:"name" json:"name"`
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
}

// UserOut은 사용자 응답입니다
type UserOut struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	FirstName   string             `bson:"first_name" json:"first_name"`
	LastName    string             `bson:"last_name" json:"last_name"`
	Institution string             `bson:"institution,omitempty" json:"institution,omitempty"`
	AuthSource  AuthSourceOut      `bson:"auth_source" json:"auth_source"`
	Verified    bool               `bson:"verified" json:"verified"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	LastLogin   *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
}

// Token은 로그인/재발급 응답입니다. ExpiresIn은 액세스 토큰 기준입니다.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshIn은 토큰 재발급 요청입니다
type RefreshIn struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenIn은 토큰 검증 요청입니다
type TokenIn struct {
	Token string `json:"token" validate:"required"`
}

// TokenValidity는 토큰 검증 결과입니다
type TokenValidity struct {
	Valid bool `json:"valid"`
}
