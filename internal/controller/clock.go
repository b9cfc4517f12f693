package controller

import "time"

// Clock schedules the status message clear. Tests swap in a fake.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the handle of a scheduled func.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
