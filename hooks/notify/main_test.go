package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/repcounter/internal/exercise"
	"github.com/ayusman/repcounter/internal/hook"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name  string
		req   hook.Request
		title string
		body  string
	}{
		{
			name: "target reached",
			req: hook.Request{
				Event: hook.EventTargetReached, Exercise: exercise.Curl,
				Reps: 10, TargetReps: 10, DurationMs: 61_400,
			},
			title: "Congratulations!",
			body:  "You completed 10 reps of CURL in 1m1s.",
		},
		{
			name: "stopped early",
			req: hook.Request{
				Event: hook.EventSessionStopped, Exercise: exercise.Squat,
				Reps: 4, TargetReps: 12, DurationMs: 30_000,
			},
			title: "Session stopped",
			body:  "SQUAT: 4 of 12 reps in 30s.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := message(&tt.req)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.body, body)
		})
	}
}
