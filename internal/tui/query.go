package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// queryDebounce is how long typing must pause before the history is
// searched.
var queryDebounce = 150 * time.Millisecond

// QueryModel is the history search prompt. Each edit bumps Seq; a debounce
// tick only fires a search if no edit happened since it was scheduled.
type QueryModel struct {
	Active bool
	Input  string
	Seq    int
}

// queryTickMsg fires after the debounce delay.
type queryTickMsg struct {
	seq   int
	query string
}

// Start opens the prompt with the query currently applied.
func (q *QueryModel) Start(current string) {
	q.Active = true
	q.Input = current
}

// Set replaces the input and schedules a search for it.
func (q *QueryModel) Set(input string) tea.Cmd {
	q.Input = input
	q.Seq++
	seq := q.Seq
	return tea.Tick(queryDebounce, func(time.Time) tea.Msg {
		return queryTickMsg{seq: seq, query: input}
	})
}

// Close hides the prompt and invalidates pending ticks.
func (q *QueryModel) Close() {
	q.Active = false
	q.Seq++
}

// Current reports whether msg was scheduled by the latest edit.
func (q QueryModel) Current(msg queryTickMsg) bool {
	return q.Active && msg.seq == q.Seq
}
