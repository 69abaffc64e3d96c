// Package filter는 HTTP 쿼리 파라미터를 받아 aggregation pipeline을 만드는 요청별 필터입니다.
package filter

import (
	"regexp"

	"github.com/YouSangSon/reports-service/internal/domain/schema"
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// reportRecipes는 리포트 필터가 공통으로 사용하는 match 레시피입니다
var reportRecipes = []query.Recipe{
	query.NewRecipe("date", []string{query.OpGte, query.OpLte}, []string{"date_after", "date_before"}),
	query.NewRecipe("object", []string{query.OpRegex}, []string{"object"}),
	query.NewRecipe("report_type", []string{query.OpEq}, []string{"type"}),
	query.NewRecipe("owner", []string{query.OpEq}, []string{"owner"}),
}

// 집계 결과 타입별 정렬 가능한 필드
var (
	reportFields   = query.FieldNames(schema.ReportOut{})
	byObjectFields = query.FieldNames(schema.ReportByObject{})
	byDayFields    = query.FieldNames(schema.ReportByDay{})
	byUserFields   = query.FieldNames(schema.ReportByUser{})
)

// ReportParams는 모든 리포트 조회에 공통인 필터 파라미터입니다
type ReportParams struct {
	DateAfter  query.Timestamp `form:"date_after"`
	DateBefore query.Timestamp `form:"date_before"`
	Object     string          `form:"object"`
	Type       string          `form:"type"`
	Owned      bool            `form:"owned"`

	owner string
}

// SetOwner는 인증된 사용자 이름을 지정합니다. Owned가 true일 때만 필터에 반영됩니다.
func (p *ReportParams) SetOwner(username string) {
	p.owner = username
}

// Owner는 Owned 필터에 사용되는 사용자 이름을 반환합니다
func (p ReportParams) Owner() string {
	return p.owner
}

// Attribute는 query.Source를 구현합니다
func (p ReportParams) Attribute(name string) interface{} {
	switch name {
	case "date_after":
		return p.DateAfter.Value()
	case "date_before":
		return p.DateBefore.Value()
	case "object":
		return nonEmpty(p.Object)
	case "type":
		return nonEmpty(p.Type)
	case "owner":
		if !p.Owned {
			return nil
		}
		return nonEmpty(p.owner)
	}
	return nil
}

func (p ReportParams) validate() error {
	if p.Object != "" {
		if _, err := regexp.Compile(p.Object); err != nil {
			return errors.Validation("invalid object pattern").WithDetails(err.Error())
		}
	}
	if p.Owned && p.owner == "" {
		return errors.ErrUnauthorized
	}
	return nil
}

func nonEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// QueryByReport는 개별 리포트 목록 조회 필터입니다 (정렬, 페이지네이션)
type QueryByReport struct {
	ReportParams
	query.Sorting
	query.Pagination
}

// NewQueryByReport는 기본값이 채워진 QueryByReport를 생성합니다
func NewQueryByReport() *QueryByReport {
	return &QueryByReport{Sorting: query.NewSorting(""), Pagination: query.NewPagination()}
}

// Validate는 store 호출 전에 파라미터를 검증합니다
func (q *QueryByReport) Validate() error {
	return validateAll(q.ReportParams.validate, q.Pagination.Validate, func() error {
		return q.Sorting.ValidateAgainst(reportFields)
	})
}

func (q *QueryByReport) plan() query.Plan {
	return query.Plan{
		Source:  q.ReportParams,
		Recipes: reportRecipes,
		Sort:    q.Sorting.Sort("date"),
		Window:  q.Pagination.Window(),
	}
}

// Pipeline은 조회 pipeline을 반환합니다
func (q *QueryByReport) Pipeline() mongo.Pipeline { return q.plan().Pipeline() }

// CountPipeline은 count pipeline을 반환합니다
func (q *QueryByReport) CountPipeline() mongo.Pipeline { return q.plan().CountPipeline() }

// QueryByObject는 천체별로 묶은 리포트 조회 필터입니다 (그룹, 정렬, 페이지네이션)
type QueryByObject struct {
	ReportParams
	query.Sorting
	query.Pagination
}

// NewQueryByObject는 기본값이 채워진 QueryByObject를 생성합니다
func NewQueryByObject() *QueryByObject {
	return &QueryByObject{Sorting: query.NewSorting(""), Pagination: query.NewPagination()}
}

// Validate는 store 호출 전에 파라미터를 검증합니다
func (q *QueryByObject) Validate() error {
	return validateAll(q.ReportParams.validate, q.Pagination.Validate, func() error {
		return q.Sorting.ValidateAgainst(byObjectFields)
	})
}

func (q *QueryByObject) plan() query.Plan {
	return query.Plan{
		Source:  q.ReportParams,
		Recipes: reportRecipes,
		Stages:  byObjectStages(),
		Sort:    q.Sorting.Sort("last_date"),
		Window:  q.Pagination.Window(),
	}
}

// Pipeline은 조회 pipeline을 반환합니다
func (q *QueryByObject) Pipeline() mongo.Pipeline { return q.plan().Pipeline() }

// CountPipeline은 그룹 수를 세는 pipeline을 반환합니다
func (q *QueryByObject) CountPipeline() mongo.Pipeline { return q.plan().CountPipeline() }

func byObjectStages() []bson.D {
	return []bson.D{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$object"},
			{Key: "first_date", Value: bson.D{{Key: "$min", Value: "$date"}}},
			{Key: "last_date", Value: bson.D{{Key: "$max", Value: "$date"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "report_types", Value: bson.D{{Key: "$addToSet", Value: "$report_type"}}},
			{Key: "sources", Value: bson.D{{Key: "$addToSet", Value: "$source"}}},
			{Key: "users", Value: bson.D{{Key: "$addToSet", Value: "$owner"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "object", Value: "$_id"},
			{Key: "first_date", Value: 1},
			{Key: "last_date", Value: 1},
			{Key: "count", Value: 1},
			{Key: "report_types", Value: 1},
			{Key: "sources", Value: 1},
			{Key: "users", Value: 1},
		}}},
	}
}

// QueryByDay는 일별 리포트 수 조회 필터입니다 (그룹, 정렬)
type QueryByDay struct {
	ReportParams
	query.Sorting
}

// NewQueryByDay는 기본값이 채워진 QueryByDay를 생성합니다
func NewQueryByDay() *QueryByDay {
	return &QueryByDay{Sorting: query.NewSorting("")}
}

// Validate는 store 호출 전에 파라미터를 검증합니다
func (q *QueryByDay) Validate() error {
	return validateAll(q.ReportParams.validate, func() error {
		return q.Sorting.ValidateAgainst(byDayFields)
	})
}

func (q *QueryByDay) plan() query.Plan {
	return query.Plan{
		Source:  q.ReportParams,
		Recipes: reportRecipes,
		Stages: []bson.D{
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: bson.D{{Key: "$dateTrunc", Value: bson.D{
					{Key: "date", Value: "$date"},
					{Key: "unit", Value: "day"},
				}}}},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
			{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 0},
				{Key: "day", Value: "$_id"},
				{Key: "count", Value: 1},
			}}},
		},
		Sort: q.Sorting.Sort("day"),
	}
}

// Pipeline은 조회 pipeline을 반환합니다
func (q *QueryByDay) Pipeline() mongo.Pipeline { return q.plan().Pipeline() }

// CountPipeline은 날짜 버킷 수를 세는 pipeline을 반환합니다
func (q *QueryByDay) CountPipeline() mongo.Pipeline { return q.plan().CountPipeline() }

// QueryByUser는 사용자별 리포트 수 조회 필터입니다 (그룹, 정렬)
type QueryByUser struct {
	ReportParams
	query.Sorting
}

// NewQueryByUser는 기본값이 채워진 QueryByUser를 생성합니다
func NewQueryByUser() *QueryByUser {
	return &QueryByUser{Sorting: query.NewSorting("")}
}

// Validate는 store 호출 전에 파라미터를 검증합니다
func (q *QueryByUser) Validate() error {
	return validateAll(q.ReportParams.validate, func() error {
		return q.Sorting.ValidateAgainst(byUserFields)
	})
}

func (q *QueryByUser) plan() query.Plan {
	return query.Plan{
		Source:  q.ReportParams,
		Recipes: reportRecipes,
		Stages: []bson.D{
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$owner"},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
			{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 0},
				{Key: "user", Value: "$_id"},
				{Key: "count", Value: 1},
			}}},
		},
		Sort: q.Sorting.Sort("count"),
	}
}

// Pipeline은 조회 pipeline을 반환합니다
func (q *QueryByUser) Pipeline() mongo.Pipeline { return q.plan().Pipeline() }

// CountPipeline은 사용자 수를 세는 pipeline을 반환합니다
func (q *QueryByUser) CountPipeline() mongo.Pipeline { return q.plan().CountPipeline() }

func validateAll(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
