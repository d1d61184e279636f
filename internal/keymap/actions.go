// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit       Action = "quit"
	ActionHelp       Action = "help"
	ActionNextDevice Action = "next_device"
	ActionPrevDevice Action = "prev_device"
	ActionEditURL    Action = "edit_url"
	ActionRefresh    Action = "refresh"

	// Playback actions
	ActionPlayPause   Action = "play_pause"
	ActionStop        Action = "stop"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"
	ActionSkip        Action = "skip"
	ActionRestart     Action = "restart"

	// Volume actions
	ActionVolumeUp   Action = "volume_up"
	ActionVolumeDown Action = "volume_down"
	ActionVolumeMin  Action = "volume_min"
	ActionVolumeMax  Action = "volume_max"

	// URL field actions
	ActionSubmit      Action = "submit"
	ActionCancel      Action = "cancel"
	ActionHistoryPrev Action = "history_prev"
	ActionHistoryNext Action = "history_next"
)
