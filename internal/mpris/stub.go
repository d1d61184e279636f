//go:build !linux

package mpris

import tea "github.com/charmbracelet/bubbletea"

// Adapter is never constructed off Linux.
type Adapter struct{}

func New(*Mirror, func(tea.Msg)) (*Adapter, error) {
	return nil, ErrUnsupported
}

func (*Adapter) Close() error { return nil }
