package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cochaviz/reboot-to/internal/bootconfig"
	"github.com/cochaviz/reboot-to/internal/capability"
	"github.com/cochaviz/reboot-to/platform"
)

type entryView struct {
	Number  uint16 `json:"number"`
	Label   string `json:"label"`
	Current bool   `json:"current,omitempty"`
	Next    bool   `json:"next,omitempty"`
}

type configurationView struct {
	Current uint16      `json:"current"`
	Next    *uint16     `json:"next"`
	Order   []uint16    `json:"order"`
	Timeout *uint16     `json:"timeout"`
	Entries []entryView `json:"entries"`
}

// newConfigurationView lists entries in boot order first, followed by those
// missing from the order in the sequence efibootmgr printed them.
func newConfigurationView(c *bootconfig.Configuration) configurationView {
	view := configurationView{
		Current: c.Current(),
		Order:   c.Order(),
		Entries: []entryView{},
	}
	if view.Order == nil {
		view.Order = []uint16{}
	}
	next, hasNext := c.Next()
	if hasNext {
		view.Next = &next
	}
	if timeout, ok := c.Timeout(); ok {
		view.Timeout = &timeout
	}

	listed := make(map[uint16]bool)
	add := func(entry bootconfig.Entry) {
		if listed[entry.Number] {
			return
		}
		listed[entry.Number] = true
		view.Entries = append(view.Entries, entryView{
			Number:  entry.Number,
			Label:   entry.Label,
			Current: entry.Number == view.Current,
			Next:    hasNext && entry.Number == next,
		})
	}
	for _, entry := range c.OrderedEntries() {
		add(entry)
	}
	for _, entry := range c.Entries() {
		add(entry)
	}
	return view
}

func renderConfiguration(w io.Writer, c *bootconfig.Configuration) error {
	view := newConfigurationView(c)

	current := fmt.Sprintf("%04d", view.Current)
	if entry, err := c.CurrentEntry(); err == nil {
		current += " (" + entry.Label + ")"
	} else {
		current += " (no matching entry)"
	}

	next := "none"
	if view.Next != nil {
		next = fmt.Sprintf("%04d", *view.Next)
		if entry, err := c.Entry(*view.Next); err == nil {
			next += " (" + entry.Label + ")"
		}
	}

	timeout := "not reported"
	if view.Timeout != nil {
		timeout = fmt.Sprintf("%d seconds", *view.Timeout)
	}

	order := make([]string, 0, len(view.Order))
	for _, number := range view.Order {
		order = append(order, fmt.Sprintf("%04d", number))
	}
	if len(order) == 0 {
		order = append(order, "not reported")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "BootCurrent:\t%s\n", current)
	fmt.Fprintf(tw, "BootNext:\t%s\n", next)
	fmt.Fprintf(tw, "Timeout:\t%s\n", timeout)
	fmt.Fprintf(tw, "BootOrder:\t%s\n", strings.Join(order, ","))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(view.Entries) == 0 {
		_, err := fmt.Fprintln(w, "\nno boot entries reported")
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNUMBER\tLABEL")
	for _, entry := range view.Entries {
		fmt.Fprintf(tw, "%s\t%04d\t%s\n", marker(entry), entry.Number, entry.Label)
	}
	return tw.Flush()
}

// marker flags the running entry with '*' and the pending next entry with '>'.
func marker(entry entryView) string {
	switch {
	case entry.Current && entry.Next:
		return "*>"
	case entry.Current:
		return "*"
	case entry.Next:
		return ">"
	default:
		return ""
	}
}

func renderStatus(w io.Writer, os platform.OperatingSystem, report capability.Report) error {
	toolPath := report.ToolPath
	if toolPath == "" {
		toolPath = "not found"
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Platform:\t%s\n", os)
	fmt.Fprintf(tw, "UEFI firmware:\t%s\n", yesNo(report.UEFI))
	fmt.Fprintf(tw, "EFI variables:\t%s\n", yesNo(report.EFIVars))
	fmt.Fprintf(tw, "%s:\t%s\n", report.Tool, toolPath)
	fmt.Fprintf(tw, "Boot entries accessible:\t%s\n", yesNo(report.Accessible))
	return tw.Flush()
}

func renderJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
