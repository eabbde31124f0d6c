// Package notify carries user-facing notifications ("toasts") from the follow flow to a display.
package notify

import (
	"slices"
	"time"

	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/util"
)

type Kind uint8

const (
	Info Kind = iota
	Success
	Failure
)

func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

type Notification struct {
	Kind    Kind
	Message string
	Link    string // empty for none
	Time    time.Time
}

func (n Notification) String() string {
	s := "[" + n.Kind.String() + "] " + n.Message
	if n.Link != "" {
		s += " (" + n.Link + ")"
	}
	return s
}

type Notifier interface {
	Notify(Notification)
}

// LogNotifier prints notifications through a logger.
type LogNotifier struct {
	Log *logger.Log
}

func (l LogNotifier) Notify(n Notification) {
	switch n.Kind {
	case Failure:
		l.Log.Warn(n.String())
	default:
		l.Log.Info(n.String())
	}
}

// Recorder keeps every notification it receives, and forwards them to Next when set.
type Recorder struct {
	Next Notifier

	mut  util.Mutex
	list []Notification
}

func (r *Recorder) Notify(n Notification) {
	if n.Time.IsZero() {
		n.Time = time.Now()
	}

	r.mut.Lock()
	r.list = append(r.list, n)
	r.mut.Unlock()

	if r.Next != nil {
		r.Next.Notify(n)
	}
}

// All returns a copy of the recorded notifications, oldest first.
func (r *Recorder) All() []Notification {
	r.mut.Lock()
	defer r.mut.Unlock()

	return slices.Clone(r.list)
}

// Count returns the number of recorded notifications of kind k.
func (r *Recorder) Count(k Kind) int {
	r.mut.Lock()
	defer r.mut.Unlock()

	n := 0
	for _, v := range r.list {
		if v.Kind == k {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mut.Lock()
	defer r.mut.Unlock()

	r.list = nil
}
