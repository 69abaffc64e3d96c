// Package schema는 저장 모델에서 파생된 입출력 DTO를 정의합니다.
// DTO는 컬렉션을 소유하지 않습니다.
package schema

import (
	"time"

	"github.com/YouSangSon/reports-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportIn은 리포트 생성/전체 수정 요청입니다. id, date, owner는 서버가 채웁니다.
type ReportIn struct {
	Object      string `json:"object" validate:"required"`
	Solved      bool   `json:"solved"`
	Source      string `json:"source" validate:"required"`
	Observation string `json:"observation" validate:"required"`
	ReportType  string `json:"report_type" validate:"required"`
}

// ToModel은 소유자를 지정해 저장 모델을 만듭니다
func (in ReportIn) ToModel(owner string) *model.Report {
	return &model.Report{
		Object:      in.Object,
		Solved:      in.Solved,
		Source:      in.Source,
		Observation: in.Observation,
		ReportType:  in.ReportType,
		Owner:       owner,
	}
}

// ToUpdate는 전체 필드를 덮어쓰는 ReportUpdate로 변환합니다
func (in ReportIn) ToUpdate() ReportUpdate {
	return ReportUpdate{
		Object:      &in.Object,
		Solved:      &in.Solved,
		Source:      &in.Source,
		Observation: &in.Observation,
		ReportType:  &in.ReportType,
	}
}

// ReportUpdate는 부분 수정 요청입니다. nil 필드는 변경하지 않습니다.
type ReportUpdate struct {
	Object      *string `json:"object,omitempty" bson:"object,omitempty" validate:"omitempty,min=1"`
	Solved      *bool   `json:"solved,omitempty" bson:"solved,omitempty"`
	Source      *string `json:"source,omitempty" bson:"source,omitempty" validate:"omitempty,min=1"`
	Observation *string `json:"observation,omitempty" bson:"observation,omitempty" validate:"omitempty,min=1"`
	ReportType  *string `json:"report_type,omitempty" bson:"report_type,omitempty" validate:"omitempty,min=1"`
}

// ReportOut은 리포트 응답입니다
type ReportOut struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Date        time.Time          `bson:"date" json:"date"`
	Object      string             `bson:"object" json:"object"`
	Solved      bool               `bson:"solved" json:"solved"`
	Source      string             `bson:"source" json:"source"`
	Observation string             `bson:"observation" json:"observation"`
	ReportType  string             `bson:"report_type" json:"report_type"`
	Owner       string             `bson:"owner" json:"owner"`
}

// ReportByObject는 천체별로 묶은 리포트 집계입니다
type ReportByObject struct {
	Object      string    `bson:"object" json:"object"`
	FirstDate   time.Time `bson:"first_date" json:"first_date"`
	LastDate    time.Time `bson:"last_date" json:"last_date"`
	Count       int64     `bson:"count" json:"count"`
	ReportTypes []string  `bson:"report_types" json:"report_types"`
	Sources     []string  `bson:"sources" json:"sources"`
	Users       []string  `bson:"users" json:"users"`
}

// ReportByDay는 일별 리포트 수입니다
type ReportByDay struct {
	Day   time.Time `bson:"day" json:"day"`
	Count int64     `bson:"count" json:"count"`
}

// ReportByUser는 사용자별 리포트 수입니다
type ReportByUser struct {
	User  string `bson:"user" json:"user"`
	Count int64  `bson:"count" json:"count"`
}
