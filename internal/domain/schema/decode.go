package schema

import (
	"fmt"

	"github.com/YouSangSon/reports-service/internal/pkg/query"
	"go.mongodb.org/mongo-driver/bson"
)

// Paginated는 페이지네이션 응답입니다
type Paginated[T any] struct {
	Count    int64 `json:"count"`
	Next     *int  `json:"next"`
	Previous *int  `json:"previous"`
	Results  []T   `json:"results"`
}

// NewPaginated는 전체 개수와 페이지 윈도우로 응답을 구성합니다
func NewPaginated[T any](total int64, q query.PaginatedQuery, results []T) *Paginated[T] {
	if results == nil {
		results = []T{}
	}
	links := query.PageLinks(total, q)
	return &Paginated[T]{
		Count:    total,
		Next:     links.Next,
		Previous: links.Previous,
		Results:  results,
	}
}

// Decode는 저장소 문서를 DTO로 변환합니다
func Decode[T any](doc bson.M) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	out := new(T)
	if err := bson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return out, nil
}

// DecodeAll은 문서 목록을 DTO 목록으로 변환합니다. 결과는 nil이 아닌 슬라이스입니다.
func DecodeAll[T any](docs []bson.M) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := Decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
