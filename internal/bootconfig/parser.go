package bootconfig

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/cochaviz/reboot-to/internal/logging"
)

// Keys recognized in the efibootmgr report.
const (
	KeyBootNext    = "BootNext"
	KeyBootCurrent = "BootCurrent"
	KeyBootOrder   = "BootOrder"
	KeyTimeout     = "Timeout"
)

// entryPattern matches an active boot entry: "Boot" followed by four
// decimal digits, an asterisk, one space, and a label terminated by a tab.
var entryPattern = regexp.MustCompile(`^Boot([0-9]{4})\* (.*?)\t`)

// Option configures Parse.
type Option func(*parser)

// WithLogger reports tolerated lines (unknown keys, unmatched text) at
// debug level on the given logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *parser) {
		p.logger = logger
	}
}

type parser struct {
	logger *slog.Logger
	config *Configuration
}

// Parse converts the text printed by efibootmgr into a Configuration. Blank
// lines, unknown keys and lines that match neither a key-value pair nor a
// boot entry are ignored. The only failure is a recognized key whose value
// does not parse, reported as a *MalformedFieldError.
func Parse(raw string, opts ...Option) (*Configuration, error) {
	p := &parser{config: newConfiguration()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.Ensure(p.logger).With("component", "bootconfig.parser")

	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := p.parseLine(i+1, line); err != nil {
			return nil, err
		}
	}
	return p.config, nil
}

func (p *parser) parseLine(lineNo int, line string) error {
	if match := entryPattern.FindStringSubmatch(strings.TrimLeft(line, " ")); match != nil {
		// four ASCII digits always fit
		number, _ := strconv.ParseUint(match[1], 10, 16)
		p.config.putEntry(Entry{Number: uint16(number), Label: match[2]})
		return nil
	}

	key, value, ok := strings.Cut(line, ":")
	if !ok {
		p.logger.Debug("ignoring unrecognized line", "line", lineNo, "text", line)
		return nil
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case KeyBootCurrent:
		number, err := parseNumber(key, value)
		if err != nil {
			return err
		}
		p.config.current = number
	case KeyBootNext:
		number, err := parseNumber(key, value)
		if err != nil {
			return err
		}
		p.config.next, p.config.hasNext = number, true
	case KeyBootOrder:
		order, err := parseOrder(value)
		if err != nil {
			return err
		}
		p.config.order = order
	case KeyTimeout:
		timeout, err := parseTimeout(value)
		if err != nil {
			return err
		}
		p.config.timeout, p.config.hasTimeout = timeout, true
	default:
		p.logger.Debug("ignoring unknown key", "line", lineNo, "key", key)
	}
	return nil
}

func parseNumber(key, value string) (uint16, error) {
	number, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return 0, malformed(key, value, err)
	}
	return uint16(number), nil
}

func parseOrder(value string) ([]uint16, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	order := make([]uint16, 0, len(parts))
	for _, part := range parts {
		number, err := strconv.ParseUint(strings.TrimSpace(part), 10, 16)
		if err != nil {
			return nil, malformed(KeyBootOrder, value, err)
		}
		order = append(order, uint16(number))
	}
	return order, nil
}

// parseTimeout accepts a bare number or efibootmgr's "N seconds" form.
func parseTimeout(value string) (uint16, error) {
	digits := value
	if fields := strings.Fields(value); len(fields) == 2 && (fields[1] == "seconds" || fields[1] == "second") {
		digits = fields[0]
	}
	timeout, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return 0, malformed(KeyTimeout, value, err)
	}
	return uint16(timeout), nil
}
