// Package model은 저장 모델과 컬렉션 바인딩을 정의합니다.
package model

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Binding은 모델 타입과 컬렉션의 정적 연결입니다
type Binding struct {
	// Name은 모델 이름입니다 (로그/에러 메시지용)
	Name string
	// Collection은 모델이 소유하는 컬렉션 이름입니다
	Collection string
	// Indexes는 CreateDB에서 생성할 인덱스 목록입니다
	Indexes []mongo.IndexModel
	// Schema가 true이면 입출력용 파생 타입으로, 컬렉션을 소유하지 않습니다
	Schema bool
}

// Defaulter는 저장 전에 기본값(ID, 생성 시각 등)을 채우는 모델입니다
type Defaulter interface {
	SetDefaults()
}

// Registry는 프로세스에서 사용하는 모델 바인딩의 명시적 목록입니다
type Registry struct {
	bindings     []*Binding
	byCollection map[string]*Binding
}

// NewRegistry는 주어진 바인딩으로 Registry를 구성합니다
func NewRegistry(bindings ...*Binding) (*Registry, error) {
	r := &Registry{byCollection: make(map[string]*Binding)}
	for _, b := range bindings {
		if err := r.Bind(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Bind는 바인딩을 등록합니다.
// 이미 사용 중인 컬렉션에 다른 모델을 바인딩하면 에러이며, Schema 바인딩은 등록되지 않습니다.
func (r *Registry) Bind(b *Binding) error {
	if b == nil || b.Collection == "" {
		return fmt.Errorf("model binding requires a collection name")
	}
	if b.Schema {
		return nil
	}
	if existing, ok := r.byCollection[b.Collection]; ok {
		return fmt.Errorf("collection %q is already bound to model %s, cannot bind %s",
			b.Collection, existing.Name, b.Name)
	}
	r.byCollection[b.Collection] = b
	r.bindings = append(r.bindings, b)
	return nil
}

// Models는 등록된 바인딩을 등록 순서대로 반환합니다
func (r *Registry) Models() []*Binding {
	out := make([]*Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// Lookup은 컬렉션 이름으로 바인딩을 찾습니다
func (r *Registry) Lookup(collection string) (*Binding, bool) {
	b, ok := r.byCollection[collection]
	return b, ok
}

// Collections는 등록된 컬렉션 이름을 정렬해서 반환합니다
func (r *Registry) Collections() []string {
	names := make([]string, 0, len(r.byCollection))
	for name := range r.byCollection {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry는 서비스의 모든 저장 모델을 담은 Registry를 반환합니다
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(ReportBinding, UserBinding)
}

// Now는 밀리초 단위로 자른 현재 UTC 시각을 반환합니다. MongoDB datetime 정밀도와 맞춥니다.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
