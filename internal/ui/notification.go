package ui

import (
	"os"
	"os/exec"
)

// For a list of possible icons, see: https://specifications.freedesktop.org/icon-naming-spec/icon-naming-spec-latest.html
const (
	IconDialogError = "dialog-error"
	IconDialogInfo  = "dialog-information"
	IconDialogWarn  = "dialog-warning"

	UrgencyLow      = "low"
	UrgencyNormal   = "normal"
	UrgencyCritical = "critical"
)

func NotifyInfo(title, text string) {
	NotifySend(UrgencyLow, title, text, IconDialogInfo)
}

func NotifyWarn(title, text string) {
	NotifySend(UrgencyNormal, title, text, IconDialogWarn)
}

func NotifyError(title, text string) {
	NotifySend(UrgencyCritical, title, text, IconDialogError)
}

// NotifySend shows a desktop notification for the user running epfa.
// Slicers run post-processing scripts without a visible terminal, so this is
// the only way to report results in that case.
func NotifySend(urgency, title, text, icon string) {
	_, hasDisplay := os.LookupEnv("DISPLAY")
	_, hasWayland := os.LookupEnv("WAYLAND_DISPLAY")
	if !hasDisplay && !hasWayland {
		Debug("Cannot send notification, no display session detected")
		return
	}

	notifySend, err := exec.LookPath("notify-send")
	if err != nil {
		Warning("Cannot send notification, notify-send not found: %v", err)
		return
	}

	cmd := exec.Command(notifySend,
		"-a", "epfa",
		"-u", urgency,
		"-i", icon,
		title, text,
	)
	err = cmd.Run()
	if err != nil {
		Error("Error sending notification: %v", err)
	}
}
