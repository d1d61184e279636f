package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/castwave/internal/debounce"
	"github.com/llehouerou/castwave/internal/ui/urlinput"
)

func expired(gen int) tea.Msg { return debounce.ExpiredMsg{Generation: gen} }

func submit(url string) tea.Msg { return urlinput.SubmitMsg{URL: url} }
