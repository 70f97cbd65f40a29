package broker

import (
	"context"
	"time"
)

// TaskEvent is published whenever a task is assigned to an agent, either at
// creation or because its property (or the property's owner) changed.
type TaskEvent struct {
	Type       string    `json:"type"`
	TaskID     string    `json:"task_id"`
	PropertyID string    `json:"property_id"`
	AssignedTo string    `json:"assigned_to"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	EventTaskAssigned = "task.assigned"
	EventTaskDeleted  = "task.deleted"
)

// EventPublisher delivers task events to interested subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event TaskEvent) error
	Close() error
}

// NoopPublisher drops every event. Used when no Redis is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, TaskEvent) error { return nil }
func (NoopPublisher) Close() error                             { return nil }
