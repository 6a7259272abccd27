// Package main provides a hook that shows a desktop notification when a
// session reaches its target or stops. It uses osascript on macOS and
// notify-send elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/ayusman/repcounter/internal/hook"
)

func main() {
	var req hook.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	title, body := message(&req)
	writeResponse(notify(title, body))
}

// message returns the notification title and body for req.
func message(req *hook.Request) (string, string) {
	duration := (time.Duration(req.DurationMs) * time.Millisecond).Round(time.Second)

	if req.Event == hook.EventTargetReached {
		return "Congratulations!",
			fmt.Sprintf("You completed %d reps of %s in %s.", req.Reps, req.Exercise, duration)
	}
	return "Session stopped",
		fmt.Sprintf("%s: %d of %d reps in %s.", req.Exercise, req.Reps, req.TargetReps, duration)
}

// writeResponse writes the hook response to stdout.
func writeResponse(err error) {
	resp := hook.Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func notify(title, body string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	} else {
		cmd = exec.Command("notify-send", title, body)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
