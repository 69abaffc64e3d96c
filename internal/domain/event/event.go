// Package event는 리포트/사용자 변경 시 발행되는 도메인 이벤트입니다.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type은 이벤트 종류입니다
type Type string

const (
	ReportCreated  Type = "report.created"
	ReportUpdated  Type = "report.updated"
	ReportDeleted  Type = "report.deleted"
	UserRegistered Type = "user.registered"
	UserDeleted    Type = "user.deleted"
)

// Event는 컬렉션의 문서 하나에 대한 변경 이벤트입니다
type Event struct {
	ID         string      `json:"event_id"`
	Type       Type        `json:"event_type"`
	Timestamp  time.Time   `json:"timestamp"`
	Collection string      `json:"collection"`
	DocumentID string      `json:"document_id"`
	Actor      string      `json:"actor,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// New는 ID와 시각이 채워진 이벤트를 생성합니다
func New(t Type, collection, documentID, actor string, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Timestamp:  time.Now().UTC(),
		Collection: collection,
		DocumentID: documentID,
		Actor:      actor,
		Data:       data,
	}
}

// Publisher는 이벤트를 외부로 발행합니다
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher는 Kafka가 비활성화되었을 때 사용하는 발행자입니다
type NopPublisher struct{}

// Publish는 아무 일도 하지 않습니다
func (NopPublisher) Publish(context.Context, Event) error { return nil }
