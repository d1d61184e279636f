package state

import "sync"

// Mock is an in-memory Interface for tests.
type Mock struct {
	mu        sync.Mutex
	selection *SelectionState
	history   []string
	closed    bool
}

// NewMock returns an empty Mock.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GetSelection() (*SelectionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selection, nil
}

func (m *Mock) SaveSelection(state SelectionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection = &state
}

func (m *Mock) AddHistory(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.history {
		if u == url {
			m.history = append(m.history[:i], m.history[i+1:]...)
			break
		}
	}
	m.history = append([]string{url}, m.history...)
	return nil
}

func (m *Mock) History() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...), nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetSelection(state *SelectionState) { m.selection = state }

func (m *Mock) IsClosed() bool { return m.closed }
