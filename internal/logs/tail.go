package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oloynet/tinals-player/internal/logging"
)

const defaultPoll = 500 * time.Millisecond

// Options controls Tail.
type Options struct {
	// Lines is the number of trailing lines printed first; 0 prints none.
	Lines int
	// Follow keeps polling for new lines until ctx is done.
	Follow bool
	Poll   time.Duration
	// Match keeps only lines containing the substring.
	Match string
	Now   func() time.Time
}

// Latest returns the newest tinals-*.log file in dir.
func Latest(dir string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, logging.DailyLogPattern))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[len(matches)-1], true
}

// Tail emits matching lines from the current daily log in dir.
func Tail(ctx context.Context, dir string, opts Options, emit func(string)) error {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	poll := opts.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	keep := func(line string) {
		if opts.Match == "" || strings.Contains(line, opts.Match) {
			emit(line)
		}
	}

	path := logging.DailyLogPath(dir, now())
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if latest, ok := Latest(dir); ok {
			path = latest
		}
	}

	lines, offset, err := lastLines(path, opts.Lines, opts.Match)
	if err != nil {
		return err
	}
	for _, line := range lines {
		emit(line)
	}
	if !opts.Follow {
		return nil
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if next := logging.DailyLogPath(dir, now()); next != path {
			if _, err := os.Stat(next); err == nil {
				// Drain the old file before switching days.
				if rest, _, err := readFrom(path, offset); err == nil {
					for _, line := range rest {
						keep(line)
					}
				}
				path, offset = next, 0
			}
		}

		if info, err := os.Stat(path); err == nil && info.Size() < offset {
			offset = 0
		}
		fresh, next, err := readFrom(path, offset)
		if err != nil {
			return err
		}
		offset = next
		for _, line := range fresh {
			keep(line)
		}
	}
}

// lastLines returns up to limit matching lines from the end of path and the
// offset just past them. A missing file yields no lines and offset 0.
func lastLines(path string, limit int, match string) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var ring []string
	idx := 0
	if limit > 0 {
		ring = make([]string, 0, limit)
		scanner := newScanner(file)
		for scanner.Scan() {
			line := scanner.Text()
			if match != "" && !strings.Contains(line, match) {
				continue
			}
			if len(ring) < limit {
				ring = append(ring, line)
				continue
			}
			ring[idx] = line
			idx = (idx + 1) % limit
		}
		if err := scanner.Err(); err != nil {
			return nil, 0, fmt.Errorf("read log file: %w", err)
		}
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}
	lines := make([]string, 0, len(ring))
	lines = append(lines, ring[idx:]...)
	lines = append(lines, ring[:idx]...)
	return lines, offset, nil
}

// readFrom returns complete lines written after offset. A trailing partial
// line is left for the next call.
func readFrom(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}
	reader := bufio.NewReader(file)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, offset, nil
			}
			return lines, offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
