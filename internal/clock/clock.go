package clock

import "time"

// Clock abstracts time so services and the sweeper can be tested
// against a controlled now.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
