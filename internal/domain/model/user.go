package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserCollection은 사용자 컬렉션 이름입니다
const UserCollection = "users"

// AuthPassword는 비밀번호 인증 소스 이름입니다
const AuthPassword = "password"

// UserBinding은 User 모델의 바인딩입니다
var UserBinding = &Binding{
	Name:       "User",
	Collection: UserCollection,
	Indexes: []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "auth_source.email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("auth_source_email"),
		},
		{
			Keys:    bson.D{{Key: "auth_source.username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("auth_source_username"),
		},
	},
}

// AuthSource는 사용자의 인증 수단입니다. Password는 bcrypt 해시입니다.
type AuthSource struct {
	Name     string `bson:"name" json:"name" validate:"required"`
	Username string `bson:"username" json:"username" validate:"required"`
	Email    string `bson:"email" json:"email" validate:"required,email"`
	Password string `bson:"password,omitempty" json:"-"`
}

// User는 사용자 계정의 저장 모델입니다
type User struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	FirstName   string             `bson:"first_name" json:"first_name" validate:"required"`
	LastName    string             `bson:"last_name" json:"last_name" validate:"required"`
	Institution string             `bson:"institution,omitempty" json:"institution,omitempty"`
	AuthSource  AuthSource         `bson:"auth_source" json:"auth_source"`
	Verified    bool               `bson:"verified" json:"verified"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	LastLogin   *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
}

// SetDefaults는 ID와 생성 시각이 없으면 채웁니다
func (u *User) SetDefaults() {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = Now()
	}
}
