package tui

import (
	"github.com/matheuskafuri/paperdeck/internal/deck"
	"github.com/matheuskafuri/paperdeck/internal/events"
)

type contentReadyMsg struct {
	index int
	level int
}

type dealDoneMsg struct {
	engine *deck.Engine
	query  string
	err    error
}

type contentErrMsg struct {
	err error
}

type animTickMsg struct {
	action deck.Action
	frame  int
}

type chatReplyMsg struct {
	paperID   string
	userMsgID string
	reply     string
	err       error
}

type libraryEventMsg struct {
	ev events.Event
}

type noticeExpiredMsg struct {
	seq int
}
