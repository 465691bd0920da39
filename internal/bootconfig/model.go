// Package bootconfig models a machine's UEFI boot configuration as reported
// by efibootmgr and parses that report into a validated value.
package bootconfig

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a boot entry number has no matching entry.
var ErrNotFound = errors.New("boot entry not found")

// NotFoundError names the boot entry number that could not be resolved.
type NotFoundError struct {
	Number uint16
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("boot entry %04d not found", e.Number)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Entry is a firmware-registered boot option.
type Entry struct {
	Number uint16
	Label  string
}

// String renders the entry the way efibootmgr names it, e.g. "Boot0002".
func (e Entry) String() string {
	return fmt.Sprintf("Boot%04d", e.Number)
}

// Configuration is the boot configuration of a single parse pass. It is never
// modified after Parse returns; accessors hand out copies.
type Configuration struct {
	current    uint16
	next       uint16
	hasNext    bool
	timeout    uint16
	hasTimeout bool
	order      []uint16

	entries map[uint16]Entry
	printed []uint16
}

func newConfiguration() *Configuration {
	return &Configuration{entries: make(map[uint16]Entry)}
}

// Current returns the number of the entry the running session booted from.
func (c *Configuration) Current() uint16 {
	return c.current
}

// Next returns the pending one-time boot override, if any.
func (c *Configuration) Next() (uint16, bool) {
	return c.next, c.hasNext
}

// Timeout returns the firmware auto-boot timeout in seconds, if reported.
func (c *Configuration) Timeout() (uint16, bool) {
	return c.timeout, c.hasTimeout
}

// Order returns the firmware boot priority. It may be empty.
func (c *Configuration) Order() []uint16 {
	return append([]uint16(nil), c.order...)
}

// Len returns the number of distinct boot entries.
func (c *Configuration) Len() int {
	return len(c.printed)
}

// Entries returns the boot entries in the order efibootmgr printed them.
func (c *Configuration) Entries() []Entry {
	out := make([]Entry, 0, len(c.printed))
	for _, number := range c.printed {
		out = append(out, c.entries[number])
	}
	return out
}

// Entry looks up a boot entry by number.
func (c *Configuration) Entry(number uint16) (Entry, error) {
	entry, ok := c.entries[number]
	if !ok {
		return Entry{}, &NotFoundError{Number: number}
	}
	return entry, nil
}

// CurrentEntry returns the entry matching Current. A configuration whose
// current number has no entry is still valid; the lookup fails with
// ErrNotFound.
func (c *Configuration) CurrentEntry() (Entry, error) {
	return c.Entry(c.current)
}

// OrderedEntries returns the entries in boot priority order. Numbers in the
// order without a matching entry are skipped.
func (c *Configuration) OrderedEntries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, number := range c.order {
		if entry, ok := c.entries[number]; ok {
			out = append(out, entry)
		}
	}
	return out
}

func (c *Configuration) putEntry(entry Entry) {
	if _, seen := c.entries[entry.Number]; !seen {
		c.printed = append(c.printed, entry.Number)
	}
	c.entries[entry.Number] = entry
}
