package bootconfig

import (
	"fmt"
	"strings"
)

// Report renders the recognized fields back into efibootmgr's text form.
// Parse(c.Report()) yields an equal configuration.
func (c *Configuration) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %04d\n", KeyBootCurrent, c.current)
	if c.hasNext {
		fmt.Fprintf(&b, "%s: %04d\n", KeyBootNext, c.next)
	}
	if c.hasTimeout {
		fmt.Fprintf(&b, "%s: %d seconds\n", KeyTimeout, c.timeout)
	}

	order := make([]string, 0, len(c.order))
	for _, number := range c.order {
		order = append(order, fmt.Sprintf("%04d", number))
	}
	fmt.Fprintf(&b, "%s: %s\n", KeyBootOrder, strings.Join(order, ","))

	for _, entry := range c.Entries() {
		fmt.Fprintf(&b, "%s* %s\t\n", entry, entry.Label)
	}
	return b.String()
}
