package keymap

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "volume", "url"
}

// All contains all key bindings. Digits 1-9 select a receiver by position
// and are handled outside the resolver.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit application", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},
	{ActionNextDevice, []string{"tab"}, "Next receiver", "global"},
	{ActionPrevDevice, []string{"shift+tab"}, "Previous receiver", "global"},
	{ActionEditURL, []string{"o", "/"}, "Enter URL to cast", "global"},
	{ActionRefresh, []string{"r"}, "Request status", "global"},

	// Playback
	{ActionPlayPause, []string{" ", "space"}, "Play/pause", "playback"},
	{ActionStop, []string{"s"}, "Stop", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "Seek back", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "Seek forward", "playback"},
	{ActionSkip, []string{"n", "end"}, "Skip to end", "playback"},
	{ActionRestart, []string{"home"}, "Seek to start", "playback"},

	// Volume
	{ActionVolumeUp, []string{"+", "=", "up", "k"}, "Volume up", "volume"},
	{ActionVolumeDown, []string{"-", "down", "j"}, "Volume down", "volume"},
	{ActionVolumeMin, []string{"m"}, "Volume 0", "volume"},
	{ActionVolumeMax, []string{"M"}, "Volume 100", "volume"},

	// URL field
	{ActionSubmit, []string{"enter"}, "Cast URL", "url"},
	{ActionCancel, []string{"esc"}, "Close URL field", "url"},
	{ActionHistoryPrev, []string{"up"}, "Older URL", "url"},
	{ActionHistoryNext, []string{"down"}, "Newer URL", "url"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// Main returns the resolver for the main screen.
func Main() *Resolver {
	var bindings []Binding
	for _, kb := range All {
		if kb.Context != "url" {
			bindings = append(bindings, kb)
		}
	}
	return NewResolver(bindings)
}

// URL returns the resolver used while the URL field has focus. Unbound keys
// go to the text input.
func URL() *Resolver {
	return NewResolver(ByContext("url"))
}
