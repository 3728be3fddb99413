package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fixerhub/models"

	"github.com/hibiken/asynq"
)

const (
	TypeEmailSend      = "email:send"
	TypePushSend       = "push:send"
	TypeScoreReconcile = "certification:reconcile"

	QueueNotifications = "notifications"
	QueueMaintenance   = "maintenance"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewEmailTask(payload models.EmailPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode email payload: %w", err)
	}
	return asynq.NewTask(TypeEmailSend, b,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}

func NewPushTask(payload models.PushPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode push payload: %w", err)
	}
	return asynq.NewTask(TypePushSend, b,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(3),
		asynq.Timeout(15*time.Second),
	), nil
}

// NewReconcileTask recomputes provider scores. Unique keeps overlapping triggers from stacking.
func NewReconcileTask() *asynq.Task {
	return asynq.NewTask(TypeScoreReconcile, nil,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(30*time.Minute),
	)
}

func DecodeEmail(task *asynq.Task) (models.EmailPayload, error) {
	var p models.EmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid email payload: %v: %w", err, asynq.SkipRetry)
	}
	return p, nil
}

func DecodePush(task *asynq.Task) (models.PushPayload, error) {
	var p models.PushPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid push payload: %v: %w", err, asynq.SkipRetry)
	}
	return p, nil
}

// IsDuplicate reports whether Enqueue rejected a task because a unique copy is already queued.
func IsDuplicate(err error) bool {
	return errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict)
}
