package tasks

import (
	"testing"

	"fixerhub/models"

	"github.com/hibiken/asynq"
)

func TestEmailTaskRoundTrip(t *testing.T) {
	in := models.EmailPayload{To: "a@b.lk", Subject: "Hi", HTML: "<p>x</p>"}
	task, err := NewEmailTask(in)
	if err != nil {
		t.Fatalf("NewEmailTask: %v", err)
	}
	if task.Type() != TypeEmailSend {
		t.Fatalf("type = %q", task.Type())
	}
	out, err := DecodeEmail(task)
	if err != nil {
		t.Fatalf("DecodeEmail: %v", err)
	}
	if out != in {
		t.Fatalf("decoded %+v, want %+v", out, in)
	}
}

func TestDecodePushRejectsGarbage(t *testing.T) {
	_, err := DecodePush(asynq.NewTask(TypePushSend, []byte("{not json")))
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
