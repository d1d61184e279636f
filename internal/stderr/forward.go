package stderr

import (
	"bufio"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const lineBuffer = 100

// Lines yields captured lines. It is nil when nothing is captured.
func (c *Capture) Lines() <-chan string {
	if c == nil {
		return nil
	}
	return c.lines
}

// forward logs each non-blank line and publishes it, dropping lines when
// nobody reads and collapsing immediate repeats.
func forward(r io.ReadCloser, log zerolog.Logger, out chan<- string) {
	defer r.Close()
	scanner := bufio.NewScanner(r)
	var last string
	repeats := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == last {
			repeats++
			continue
		}
		if repeats > 0 {
			log.Warn().Str("source", "stderr").Int("repeats", repeats).Msg(last)
		}
		last, repeats = line, 0
		log.Warn().Str("source", "stderr").Msg(line)
		select {
		case out <- line:
		default:
		}
	}
	if repeats > 0 {
		log.Warn().Str("source", "stderr").Int("repeats", repeats).Msg(last)
	}
}
