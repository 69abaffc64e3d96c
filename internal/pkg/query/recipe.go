// Package query는 선언적 필터 레시피를 MongoDB aggregation pipeline으로 변환합니다.
package query

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// 레시피에서 사용하는 MongoDB 비교 연산자입니다
const (
	OpEq    = "$eq"
	OpGte   = "$gte"
	OpLte   = "$lte"
	OpRegex = "$regex"
)

// Source는 레시피가 값을 읽어오는 필터 인스턴스입니다.
// 값이 없으면 nil을 반환해야 합니다.
type Source interface {
	Attribute(name string) interface{}
}

// Recipe는 (필드, 연산자, 속성) 묶음으로 하나의 match 조건을 만듭니다.
// Operators와 Attributes는 같은 길이여야 하며 순서대로 짝지어집니다.
type Recipe struct {
	Field      string
	Operators  []string
	Attributes []string
}

// NewRecipe는 새로운 Recipe를 생성합니다
func NewRecipe(field string, operators, attributes []string) Recipe {
	if len(operators) != len(attributes) {
		panic("query: recipe for " + field + " has mismatched operators and attributes")
	}
	return Recipe{Field: field, Operators: operators, Attributes: attributes}
}

// Pair는 src에서 속성 값을 읽어 {연산자: 값} 조건을 만듭니다.
// 값이 없는 속성은 건너뛰며, 조건이 비어 있어도 필드명은 그대로 반환합니다.
func (r Recipe) Pair(src Source) (string, bson.M) {
	clause := bson.M{}
	for i, op := range r.Operators {
		val := src.Attribute(r.Attributes[i])
		if isAbsent(val) {
			continue
		}
		clause[op] = val
	}
	return r.Field, clause
}

// isAbsent는 nil 인터페이스와 nil 포인터를 모두 "값 없음"으로 봅니다
func isAbsent(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
