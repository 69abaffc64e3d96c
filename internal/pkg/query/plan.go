package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CountField는 count pipeline 결과 문서의 필드명입니다
const CountField = "total"

// Query는 DocumentStore가 실행할 수 있는 필터입니다
type Query interface {
	Pipeline() mongo.Pipeline
	CountPipeline() mongo.Pipeline
}

// PaginatedQuery는 페이지 윈도우를 가진 필터입니다
type PaginatedQuery interface {
	Query
	Page() int
	Skip() int64
	Limit() int64
}

// Validator는 store 호출 전에 필터를 검증할 수 있는 타입입니다
type Validator interface {
	Validate() error
}

// Validate는 q가 Validator를 구현하면 검증 결과를 반환합니다
func Validate(q Query) error {
	if v, ok := q.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// Sort는 정렬 단계 정보입니다
type Sort struct {
	Field     string
	Direction Direction
}

// Window는 skip/limit 단계 정보입니다
type Window struct {
	Skip  int64
	Limit int64
}

// Plan은 하나의 요청에서 만들어지는 pipeline 구성입니다.
// 단계 순서는 match → Stages(group/project) → sort → skip → limit 으로 고정됩니다.
type Plan struct {
	Source  Source
	Recipes []Recipe
	Stages  []bson.D
	Sort    *Sort
	Window  *Window
}

// Filter는 모든 레시피를 평가해 비어 있지 않은 조건만 모은 match 필터를 반환합니다
func (p Plan) Filter() bson.D {
	filter := bson.D{}
	if p.Source == nil {
		return filter
	}
	for _, recipe := range p.Recipes {
		field, clause := recipe.Pair(p.Source)
		if len(clause) == 0 {
			continue
		}
		filter = append(filter, bson.E{Key: field, Value: clause})
	}
	return filter
}

// MatchStage는 $match 단계를 반환합니다. 조건이 없으면 모든 문서와 일치합니다.
func (p Plan) MatchStage() bson.D {
	return bson.D{{Key: "$match", Value: p.Filter()}}
}

// BasePipeline은 match 단계와 그룹/프로젝션 단계를 반환합니다
func (p Plan) BasePipeline() mongo.Pipeline {
	pipeline := mongo.Pipeline{p.MatchStage()}
	return append(pipeline, p.Stages...)
}

// Pipeline은 정렬과 페이지 윈도우까지 포함한 전체 pipeline을 반환합니다
func (p Plan) Pipeline() mongo.Pipeline {
	pipeline := p.BasePipeline()
	if p.Sort != nil {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: p.Sort.Field, Value: int(p.Sort.Direction)}}}})
	}
	if p.Window != nil {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: p.Window.Skip}},
			bson.D{{Key: "$limit", Value: p.Window.Limit}},
		)
	}
	return pipeline
}

// CountPipeline은 페이지 윈도우와 무관하게 결과 수를 세는 pipeline을 반환합니다
func (p Plan) CountPipeline() mongo.Pipeline {
	return append(p.BasePipeline(), bson.D{{Key: "$count", Value: CountField}})
}
