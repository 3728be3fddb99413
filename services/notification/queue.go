package notification

import (
	"context"

	"fixerhub/models"
	"fixerhub/services/tasks"
	"fixerhub/utils"

	"go.uber.org/zap"
)

// QueueNotifier enqueues messages on the asynq notifications queue.
type QueueNotifier struct {
	client tasks.Enqueuer
}

func NewQueueNotifier(client tasks.Enqueuer) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) Push(ctx context.Context, payload models.PushPayload) {
	task, err := tasks.NewPushTask(payload)
	if err == nil {
		_, err = n.client.Enqueue(task)
	}
	if err != nil {
		utils.GetLogger().Warn("failed to enqueue push", zap.String("userId", payload.UserID), zap.Error(err))
	}
}

func (n *QueueNotifier) Email(ctx context.Context, payload models.EmailPayload) {
	task, err := tasks.NewEmailTask(payload)
	if err == nil {
		_, err = n.client.Enqueue(task)
	}
	if err != nil {
		utils.GetLogger().Warn("failed to enqueue email", zap.String("subject", payload.Subject), zap.Error(err))
	}
}
