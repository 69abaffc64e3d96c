package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/YouSangSon/reports-service/internal/pkg/errors"
)

// 페이지 기본값
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Direction은 정렬 방향입니다 (1 오름차순, -1 내림차순)
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// Valid는 방향이 1 또는 -1인지 확인합니다
func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// Sorting은 정렬 가능한 필터에 임베드되는 파라미터입니다
type Sorting struct {
	// OrderBy가 비어 있으면 필터별 기본 정렬 필드를 사용합니다
	OrderBy   string    `form:"order_by" json:"order_by"`
	Direction Direction `form:"direction,default=-1" json:"direction"`
}

// Sort는 정렬 단계 정보를 반환합니다. OrderBy가 비어 있으면 fallback 필드를 사용합니다.
func (s Sorting) Sort(fallback string) *Sort {
	field := s.OrderBy
	if field == "" {
		field = fallback
	}
	dir := s.Direction
	if dir == 0 {
		dir = Descending
	}
	return &Sort{Field: field, Direction: dir}
}

// ValidateAgainst는 정렬 필드와 방향을 검증합니다
func (s Sorting) ValidateAgainst(legal []string) error {
	if !s.Direction.Valid() {
		return errors.Validation("invalid sort direction").
			WithDetails(fmt.Sprintf("direction must be 1 or -1, got %d", s.Direction))
	}
	if s.OrderBy == "" {
		return nil
	}
	for _, name := range legal {
		if name == s.OrderBy {
			return nil
		}
	}
	return errors.Validation("invalid order_by field").
		WithDetails(fmt.Sprintf("order_by must be one of [%s], got %q", strings.Join(legal, ", "), s.OrderBy))
}

// Pagination은 페이지네이션 가능한 필터에 임베드되는 파라미터입니다
type Pagination struct {
	PageNumber int `form:"page,default=1" json:"page"`
	PageSize   int `form:"page_size,default=10" json:"page_size"`
}

// NewSorting은 기본 방향(내림차순)의 Sorting을 생성합니다
func NewSorting(orderBy string) Sorting {
	return Sorting{OrderBy: orderBy, Direction: Descending}
}

// NewPagination은 기본값이 채워진 Pagination을 생성합니다
func NewPagination() Pagination {
	return Pagination{PageNumber: DefaultPage, PageSize: DefaultPageSize}
}

// Page는 1부터 시작하는 페이지 번호를 반환합니다
func (p Pagination) Page() int {
	return p.PageNumber
}

// Skip은 (page-1)*page_size를 반환합니다
func (p Pagination) Skip() int64 {
	return int64(p.PageNumber-1) * int64(p.PageSize)
}

// Limit은 page_size를 반환합니다
func (p Pagination) Limit() int64 {
	return int64(p.PageSize)
}

// Window는 skip/limit 단계 정보를 반환합니다
func (p Pagination) Window() *Window {
	return &Window{Skip: p.Skip(), Limit: p.Limit()}
}

// Validate는 page와 page_size가 1 이상인지 확인합니다
func (p Pagination) Validate() error {
	if p.PageNumber < 1 {
		return errors.Validation("invalid page").
			WithDetails(fmt.Sprintf("page must be >= 1, got %d", p.PageNumber))
	}
	if p.PageSize < 1 {
		return errors.Validation("invalid page_size").
			WithDetails(fmt.Sprintf("page_size must be >= 1, got %d", p.PageSize))
	}
	return nil
}

// timestampLayouts는 쿼리 파라미터에서 허용하는 시각 형식입니다.
// 타임존이 없는 값은 UTC로 해석합니다.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp는 쿼리 파라미터로 받는 선택적 시각입니다. zero 값은 "지정되지 않음"입니다.
type Timestamp struct {
	t time.Time
}

// NewTimestamp는 주어진 시각으로 Timestamp를 생성합니다
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC()}
}

// UnmarshalParam은 gin의 BindUnmarshaler를 구현합니다
func (ts *Timestamp) UnmarshalParam(param string) error {
	if param == "" {
		*ts = Timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, param); err == nil {
			*ts = NewTimestamp(t)
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", param)
}

// IsZero는 시각이 지정되지 않았는지 확인합니다
func (ts Timestamp) IsZero() bool {
	return ts.t.IsZero()
}

// Time은 UTC 시각을 반환합니다
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Value는 레시피에서 사용할 값을 반환합니다. 지정되지 않았으면 nil입니다.
func (ts Timestamp) Value() interface{} {
	if ts.t.IsZero() {
		return nil
	}
	return ts.t
}
