package app

import (
	"context"
	"log/slog"
	"time"
)

// SafetyDelay is how long after startup the safety net fires.
const SafetyDelay = 9 * time.Second

// InputUnlocker re-enables controls left disabled by a hung action.
type InputUnlocker interface {
	EnableInput()
}

// ModalHider hides the notification modal if it is still up.
type ModalHider interface {
	Acknowledge()
}

// ArmSafetyNet fires once after d: it re-enables input and hides the modal.
// In-flight requests are left alone. The returned func disarms it; so does
// cancelling ctx.
func ArmSafetyNet(ctx context.Context, d time.Duration, input InputUnlocker, modal ModalHider) func() {
	timer := time.AfterFunc(d, func() {
		if ctx.Err() != nil {
			return
		}
		slog.Debug("safety net fired", "after", d)
		if input != nil {
			input.EnableInput()
		}
		if modal != nil {
			modal.Acknowledge()
		}
	})
	stopOnCancel := context.AfterFunc(ctx, func() { timer.Stop() })
	return func() {
		stopOnCancel()
		timer.Stop()
	}
}
