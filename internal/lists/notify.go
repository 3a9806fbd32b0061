package lists

import "strings"

// NotificationType classifies a notification for display.
type NotificationType string

const (
	TypeMatch   NotificationType = "match"
	TypeAlert   NotificationType = "alert"
	TypeSuccess NotificationType = "success"
	TypeSystem  NotificationType = "system"
)

// DetectType guesses the type from title keywords; the backend does not
// store one reliably.
func DetectType(title string) NotificationType {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "match") || strings.Contains(t, "found"):
		return TypeMatch
	case strings.Contains(t, "alert") || strings.Contains(t, "warning") || strings.Contains(t, "failed"):
		return TypeAlert
	case strings.Contains(t, "success") || strings.Contains(t, "verified") || strings.Contains(t, "claimed"):
		return TypeSuccess
	default:
		return TypeSystem
	}
}
