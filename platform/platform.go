package platform

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ErrUnsupported is returned for hosts without a maintained implementation.
var ErrUnsupported = errors.New("unsupported operating system")

// OperatingSystem is the closed set of host platforms the tool knows about.
type OperatingSystem string

const (
	Linux   OperatingSystem = "linux"
	Windows OperatingSystem = "windows"
)

// Known returns every recognized operating system.
func Known() []OperatingSystem {
	return []OperatingSystem{Linux, Windows}
}

// IsValid reports whether o is a recognized operating system.
func (o OperatingSystem) IsValid() bool {
	switch o {
	case Linux, Windows:
		return true
	default:
		return false
	}
}

// String returns the operating system as string.
func (o OperatingSystem) String() string {
	return string(o)
}

// Host returns the platform of the running process.
func Host() (OperatingSystem, error) {
	return Detect(runtime.GOOS)
}

// Detect maps a GOOS value to an OperatingSystem. Anything outside the
// known set fails with ErrUnsupported rather than falling back to another
// platform's behavior.
func Detect(goos string) (OperatingSystem, error) {
	if os := Normalize(goos); os != "" {
		return os, nil
	}
	return "", fmt.Errorf("%w %q (known: %s)", ErrUnsupported, goos, strings.Join(knownStrings(), ", "))
}

// Normalize maps a possibly ambiguous name into a canonical
// OperatingSystem. Returns "" when the name is not recognized.
func Normalize(value string) OperatingSystem {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(Linux), "android":
		return Linux
	case string(Windows), "win32", "win64":
		return Windows
	default:
		return ""
	}
}

func knownStrings() []string {
	all := Known()
	out := make([]string, 0, len(all))
	for _, o := range all {
		out = append(out, o.String())
	}
	sort.Strings(out)
	return out
}
