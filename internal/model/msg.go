package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// InfoMsg is a transient status line.
type InfoMsg struct {
	Text string
}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenCellar Screen = iota
	ScreenDrinkNow
	ScreenHistory
	ScreenCellarDetail
	ScreenHistoryDetail
	ScreenForm
	ScreenPrompt
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
