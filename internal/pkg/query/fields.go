package query

import (
	"reflect"
	"strings"
)

// FieldNames는 구조체의 bson 태그 이름 목록을 선언 순서대로 반환합니다.
// 정렬 가능한 필드 집합을 스키마 타입에서 직접 얻기 위해 사용합니다.
func FieldNames(model interface{}) []string {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("bson"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		names = append(names, name)
	}
	return names
}
