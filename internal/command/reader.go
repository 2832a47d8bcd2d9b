package command

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/genricoloni/trackline/internal/player"
	"go.uber.org/zap"
)

// Click-event button codes emitted by the bar host
const (
	buttonNext     = 1
	buttonToggle   = 2
	buttonPrevious = 3
)

// clickEvent is the decoded form of one input line. Button is a pointer so a
// record without the field is distinguishable from button 0.
type clickEvent struct {
	Button *int `json:"button"`
}

// Source resolves the player commands should be dispatched to
type Source interface {
	Current() *player.Proxy
}

// Reader consumes newline-delimited click events from the input stream and
// dispatches playback-control calls to the active player. It runs on its own
// goroutine; the line read blocks until input arrives or the stream closes.
type Reader struct {
	logger *zap.Logger
	source Source
	in     io.Reader
}

// NewReader creates a reader over the given input stream
func NewReader(logger *zap.Logger, source Source, in io.Reader) *Reader {
	return &Reader{
		logger: logger,
		source: source,
		in:     in,
	}
}

// Run reads lines until the stream closes or the context is cancelled.
// Malformed input never stops the loop.
func (r *Reader) Run(ctx context.Context) {
	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		r.handleLine(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		r.logger.Warn("Input stream read failed", zap.Error(err))
	}
	r.logger.Info("Input stream closed, command reader stopped")
}

// handleLine parses and dispatches one input line
func (r *Reader) handleLine(line string) {
	event, ok := r.parse(line)
	if !ok || event.Button == nil {
		return
	}

	proxy := r.source.Current()
	if proxy == nil {
		// No active player, the click has no target
		return
	}

	var err error
	switch *event.Button {
	case buttonNext:
		err = proxy.Next()
	case buttonToggle:
		err = proxy.PlayPause()
	case buttonPrevious:
		err = proxy.Previous()
	default:
		return
	}

	if err != nil {
		r.logger.Warn("Playback control call failed",
			zap.String("player", proxy.Identity()),
			zap.Int("button", *event.Button),
			zap.Error(err))
	}
}

// parse extracts the JSON object from a possibly noisy line. The bar host is
// known to frame messages inconsistently (stray array delimiters, partial
// records), so the record is taken as the span between the first '{' and the
// last '}'. A line without such a span is dropped silently; a decode failure
// is logged and dropped.
func (r *Reader) parse(line string) (clickEvent, bool) {
	var event clickEvent

	start := strings.Index(line, "{")
	end := strings.LastIndex(line, "}")
	if start == -1 || end == -1 || end < start {
		return event, false
	}

	if err := json.Unmarshal([]byte(line[start:end+1]), &event); err != nil {
		r.logger.Debug("Discarding malformed click event",
			zap.String("line", line),
			zap.Error(err))
		return event, false
	}
	return event, true
}
