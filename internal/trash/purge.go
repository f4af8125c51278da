package trash

import (
	"fmt"
	"log/slog"
	"os"
)

// Confirmer asks the user a single yes/no question
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// PurgePolicy controls whether a purge batch is gated by a confirmation
type PurgePolicy struct {
	Confirm bool
}

// PurgeResult is the outcome for one path of a purge batch
type PurgeResult struct {
	Path string
	Err  error
}

// Purger deletes paths permanently without creating any trash record
type Purger struct {
	confirmer Confirmer
	remover   Remover
}

type PurgerOption func(*Purger)

// WithPurgeRemover replaces how paths are deleted
func WithPurgeRemover(r Remover) PurgerOption {
	return func(p *Purger) {
		p.remover = r
	}
}

// NewPurger returns a Purger asking c when the policy requires confirmation.
// A nil Confirmer declines every prompt.
func NewPurger(c Confirmer, opts ...PurgerOption) *Purger {
	p := &Purger{
		confirmer: c,
		remover:   OSRemover{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Purge removes every path recursively, in the order given. With
// policy.Confirm the user is asked once for the whole batch and a "no"
// returns ErrAborted before anything is touched. Per-path failures are
// reported in the results and do not stop later paths.
func (p *Purger) Purge(paths []string, policy PurgePolicy) ([]PurgeResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	if policy.Confirm {
		if p.confirmer == nil || !p.confirmer.Confirm(purgePrompt(len(paths))) {
			slog.Info("purge declined", "count", len(paths))
			return nil, newError("purge", "", ErrAborted, nil)
		}
	}

	results := make([]PurgeResult, 0, len(paths))
	for _, path := range paths {
		result := PurgeResult{Path: path}
		if _, err := os.Lstat(path); err != nil {
			result.Err = newError("purge", path, ErrPurge, err)
		} else if err := p.remover.RemoveAll(path); err != nil {
			result.Err = newError("purge", path, ErrPurge, err)
		}

		if result.Err != nil {
			slog.Error("purge failed", "path", path, "error", result.Err)
		} else {
			slog.Info("purged", "path", path)
		}
		results = append(results, result)
	}
	return results, nil
}

func purgePrompt(n int) string {
	if n == 1 {
		return "Permanently delete 1 item? This cannot be undone."
	}
	return fmt.Sprintf("Permanently delete %d items? This cannot be undone.", n)
}
