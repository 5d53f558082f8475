package gdrive

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var lockedReasons = map[string]bool{
	"locked":         true,
	"fileLocked":     true,
	"resourceLocked": true,
	"lockedFile":     true,
}

// IsLocked reports whether err means the remote file is open for editing
// elsewhere. It is the single place lock errors are classified.
func IsLocked(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusLocked {
			return true
		}
		for _, item := range apiErr.Errors {
			if lockedReasons[item.Reason] {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") || strings.Contains(msg, "being edited")
}
