package story

import (
	"errors"
	"fmt"

	storysvc "github.com/zhouzirui/z-fairytale/backend/internal/service/story"
)

// Level 提示级别
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-visible message with an optional remediation hint.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

const (
	msgConnectionUnavailable = "Keboola connection not available. Please check your configuration."
	hintCredentials          = "Make sure KBC_URL and KBC_TOKEN are set in the environment."
	hintUpload               = "Make sure you're running this app in a Keboola environment with proper authentication."
	msgUploaded              = "Story configuration uploaded to Keboola storage!"
	msgNoStories             = "No fairytales found in the storage. Generate some stories first!"
	msgNoTextColumn          = "No 'fairytale' column found in the data. Available columns:"
	msgLoaded                = "Fairytale loaded successfully!"
)

func connectionBanner(err error) *Notice {
	if err == nil {
		return nil
	}
	return &Notice{
		Level:   LevelError,
		Message: fmt.Sprintf("Failed to initialize Keboola connection: %v", err),
		Hint:    hintCredentials,
	}
}

func submitNotice(err error) Notice {
	switch {
	case err == nil:
		return Notice{Level: LevelSuccess, Message: msgUploaded}
	case errors.Is(err, storysvc.ErrConnectionUnavailable):
		return Notice{Level: LevelError, Message: msgConnectionUnavailable, Hint: hintCredentials}
	default:
		return Notice{Level: LevelError, Message: fmt.Sprintf("Error uploading to Keboola: %v", remoteCause(err)), Hint: hintUpload}
	}
}

func fetchErrorNotice(err error, tableID string) Notice {
	if errors.Is(err, storysvc.ErrConnectionUnavailable) {
		return Notice{Level: LevelError, Message: msgConnectionUnavailable, Hint: hintCredentials}
	}
	return Notice{
		Level:   LevelError,
		Message: fmt.Sprintf("Error reading from Keboola: %v", remoteCause(err)),
		Hint:    fmt.Sprintf("Make sure the table '%s' exists and contains fairytale data.", tableID),
	}
}

func latestNotice(kind storysvc.LatestKind) Notice {
	switch kind {
	case storysvc.LatestStory:
		return Notice{Level: LevelSuccess, Message: msgLoaded}
	case storysvc.LatestRaw:
		return Notice{Level: LevelWarning, Message: msgNoTextColumn}
	default:
		return Notice{Level: LevelWarning, Message: msgNoStories}
	}
}

// remoteCause strips the operation prefix so users see the storage error itself.
func remoteCause(err error) error {
	var remote *storysvc.RemoteError
	if errors.As(err, &remote) && remote.Err != nil {
		return remote.Err
	}
	return err
}
