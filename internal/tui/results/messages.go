package results

// SetEditorQueryMsg asks the app to load a generated query into the
// editor pane so the user can review it before running.
type SetEditorQueryMsg struct {
	Query string
}

// StatusNotifyMsg surfaces a transient message in the status bar.
type StatusNotifyMsg struct {
	Message string
}
