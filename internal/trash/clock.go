package trash

import (
	"os"
	"time"
)

// Clock abstracts time retrieval so identities are deterministic in tests
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Remover abstracts recursive removal so failures can be simulated in tests
type Remover interface {
	RemoveAll(path string) error
}

// OSRemover removes from the real filesystem
type OSRemover struct{}

func (OSRemover) RemoveAll(path string) error { return os.RemoveAll(path) }
