package emitter

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/genricoloni/trackline/internal/player"
	"go.uber.org/zap"
)

// Config is the subset of application configuration the emitter needs
type Config interface {
	GetPlaceholder() string
	GetSeparator() string
}

// Source resolves the player the caption should describe
type Source interface {
	Current() *player.Proxy
}

// Emitter renders the active player's caption and writes it to the output
// stream, one line per render. Writes go through a mutex so concurrent
// renders from the signal-dispatch and command contexts never interleave
// inside a line. The writer is expected to be unbuffered (stdout): the bar
// host polls for line arrival.
type Emitter struct {
	logger      *zap.Logger
	source      Source
	placeholder string
	separator   string

	mu  sync.Mutex
	out io.Writer
}

// New creates an emitter writing to out
func New(logger *zap.Logger, cfg Config, source Source, out io.Writer) *Emitter {
	return &Emitter{
		logger:      logger,
		source:      source,
		placeholder: cfg.GetPlaceholder(),
		separator:   cfg.GetSeparator(),
		out:         out,
	}
}

// Render writes the current caption line. With no active player the
// placeholder is written instead; a blank line would make the bar host
// suppress the module, so the output is never empty.
func (e *Emitter) Render() {
	caption := e.placeholder

	if proxy := e.source.Current(); proxy != nil {
		track := proxy.Track()
		caption = strings.Join(track.Artists, ", ") + e.separator + track.Title
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := fmt.Fprintln(e.out, caption); err != nil {
		e.logger.Warn("Failed to write caption", zap.Error(err))
	}
}
