package tui

import (
	"regexp"
)

// FindMsg represents messages that the in-preview find handles
type FindMsg interface {
	isFindMsg()
}

type StartFindMsg struct{}

func (StartFindMsg) isFindMsg() {}

type UpdateFindInputMsg struct {
	Input string
}

func (UpdateFindInputMsg) isFindMsg() {}

type ExecuteFindMsg struct{}

func (ExecuteFindMsg) isFindMsg() {}

type CancelFindMsg struct{}

func (CancelFindMsg) isFindMsg() {}

type NextMatchMsg struct{}

func (NextMatchMsg) isFindMsg() {}

type PrevMatchMsg struct{}

func (PrevMatchMsg) isFindMsg() {}

type ClearFindMsg struct{}

func (ClearFindMsg) isFindMsg() {}

// FindModel is a case-insensitive regex find over the previewed clip. It
// never touches the store; searching the history is QueryModel's job.
type FindModel struct {
	Active       bool
	Input        string
	Pattern      string
	Error        string
	Matches      []int // preview line numbers
	CurrentMatch int   // -1 without matches
}

func NewFindModel() FindModel {
	return FindModel{CurrentMatch: -1}
}

func (f *FindModel) Update(msg FindMsg) {
	switch m := msg.(type) {
	case StartFindMsg:
		f.Active = true
		f.Input = ""
		f.Error = ""
	case UpdateFindInputMsg:
		f.Input = m.Input
	case ExecuteFindMsg:
		if f.Input == "" {
			f.clear()
			f.Active = false
			return
		}
		if _, err := regexp.Compile("(?i)" + f.Input); err != nil {
			// stay active so the pattern can be fixed
			f.Error = err.Error()
			return
		}
		f.Pattern = f.Input
		f.Error = ""
		f.Active = false
	case CancelFindMsg:
		f.Active = false
		f.Input = ""
		f.Error = ""
	case NextMatchMsg:
		if len(f.Matches) > 0 {
			f.CurrentMatch = (f.CurrentMatch + 1) % len(f.Matches)
		}
	case PrevMatchMsg:
		if len(f.Matches) > 0 {
			f.CurrentMatch = (f.CurrentMatch - 1 + len(f.Matches)) % len(f.Matches)
		}
	case ClearFindMsg:
		f.clear()
	}
}

func (f *FindModel) clear() {
	f.Pattern = ""
	f.Matches = nil
	f.CurrentMatch = -1
	f.Error = ""
}

func (f FindModel) IsActive() bool     { return f.Active }
func (f FindModel) GetInput() string   { return f.Input }
func (f FindModel) GetPattern() string { return f.Pattern }
func (f FindModel) GetError() string   { return f.Error }
func (f FindModel) GetMatches() []int  { return f.Matches }
func (f FindModel) HasMatches() bool   { return len(f.Matches) > 0 }

// GetCurrentMatch returns the current match index and the match count.
func (f FindModel) GetCurrentMatch() (int, int) {
	if len(f.Matches) == 0 {
		return -1, 0
	}
	return f.CurrentMatch, len(f.Matches)
}

// GetCurrentMatchLine returns the preview line of the current match, or -1.
func (f FindModel) GetCurrentMatchLine() int {
	if f.CurrentMatch >= 0 && f.CurrentMatch < len(f.Matches) {
		return f.Matches[f.CurrentMatch]
	}
	return -1
}

// SetMatches replaces the matches and selects the first one.
func (f *FindModel) SetMatches(matches []int) {
	f.Matches = matches
	f.CurrentMatch = -1
	if len(matches) > 0 {
		f.CurrentMatch = 0
	}
}
