package state

// Interface is what the app needs from the store. Mock implements it for tests.
type Interface interface {
	GetSelection() (*SelectionState, error)
	SaveSelection(sel SelectionState)
	AddHistory(url string) error
	History() ([]string, error)
	Close() error
}

var (
	_ Interface = (*Store)(nil)
	_ Interface = (*Mock)(nil)
)
