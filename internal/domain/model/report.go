package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportCollection은 리포트 컬렉션 이름입니다
const ReportCollection = "reports"

// ReportBinding은 Report 모델의 바인딩입니다.
// 소유자당 (object, report_type) 조합은 하나만 허용됩니다.
var ReportBinding = &Binding{
	Name:       "Report",
	Collection: ReportCollection,
	Indexes: []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "owner", Value: 1},
				{Key: "object", Value: 1},
				{Key: "report_type", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("owner_object_report_type"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: -1}},
			Options: options.Index().SetName("date_desc"),
		},
	},
}

// Report는 천체 관측 리포트의 저장 모델입니다
type Report struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Date        time.Time          `bson:"date" json:"date"`
	Object      string             `bson:"object" json:"object" validate:"required"`
	Solved      bool               `bson:"solved" json:"solved"`
	Source      string             `bson:"source" json:"source" validate:"required"`
	Observation string             `bson:"observation" json:"observation" validate:"required"`
	ReportType  string             `bson:"report_type" json:"report_type" validate:"required"`
	Owner       string             `bson:"owner" json:"owner" validate:"required"`
}

// SetDefaults는 ID와 날짜가 없으면 채웁니다
func (r *Report) SetDefaults() {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.Date.IsZero() {
		r.Date = Now()
	}
}
