package capability

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cochaviz/reboot-to/internal/execx"
)

func mockGlobal[T any](t *testing.T, target *T, value T) {
	t.Helper()
	saved := *target
	*target = value
	t.Cleanup(func() { *target = saved })
}

// fakeFirmware lays out a firmware directory with an efivars subdirectory
// holding the BootCurrent variable.
func fakeFirmware(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "efi")
	efivars := filepath.Join(dir, "efivars")
	require.NoError(t, os.MkdirAll(efivars, 0o755))
	require.NoError(t, os.WriteFile(VariablePath(efivars, "BootCurrent"), []byte{7, 0, 0, 0, 2, 0}, 0o644))
	return dir
}

func TestUEFIAvailable(t *testing.T) {
	checker := &Checker{FirmwareDir: fakeFirmware(t)}
	assert.True(t, checker.UEFIAvailable())

	missing := &Checker{FirmwareDir: filepath.Join(t.TempDir(), "absent")}
	assert.False(t, missing.UEFIAvailable())

	file := filepath.Join(t.TempDir(), "efi")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.False(t, (&Checker{FirmwareDir: file}).UEFIAvailable())
}

func TestBootEntriesAccessible(t *testing.T) {
	tests := []struct {
		name     string
		firmware bool
		probeErr error
		want     bool
		probes   int
	}{
		{name: "uefi and tool", firmware: true, want: true, probes: 1},
		{name: "tool cannot start", firmware: true, probeErr: errors.New("executable file not found in $PATH"), want: false, probes: 1},
		{name: "no uefi skips probe", firmware: false, want: false, probes: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "absent")
			if tt.firmware {
				dir = fakeFirmware(t)
			}
			runner := &execx.FakeRunner{ProbeErr: tt.probeErr}
			checker := &Checker{FirmwareDir: dir, Tool: "efibootmgr", Runner: runner}

			assert.Equal(t, tt.want, checker.BootEntriesAccessible(context.Background()))
			assert.Len(t, runner.Probes, tt.probes)
		})
	}
}

func TestBootEntriesAccessibleWithoutRunner(t *testing.T) {
	checker := &Checker{FirmwareDir: fakeFirmware(t), Tool: "efibootmgr"}
	assert.False(t, checker.BootEntriesAccessible(context.Background()))
}

func TestEFIVarsMounted(t *testing.T) {
	dir := fakeFirmware(t)
	checker := &Checker{FirmwareDir: dir}

	mockGlobal(t, &isEfivarfsFS, func(string) bool { return false })
	assert.False(t, checker.EFIVarsMounted())

	mockGlobal(t, &isEfivarfsFS, func(path string) bool { return path == filepath.Join(dir, "efivars") })
	assert.True(t, checker.EFIVarsMounted())

	require.NoError(t, os.Remove(VariablePath(filepath.Join(dir, "efivars"), "BootCurrent")))
	assert.False(t, checker.EFIVarsMounted())
}

func TestCheckReport(t *testing.T) {
	dir := fakeFirmware(t)
	mockGlobal(t, &isEfivarfsFS, func(string) bool { return true })
	mockGlobal(t, &lookPath, func(name string) (string, error) { return "/usr/sbin/" + name, nil })

	checker := &Checker{FirmwareDir: dir, Tool: "efibootmgr", Runner: &execx.FakeRunner{}}
	assert.Equal(t, Report{
		UEFI:       true,
		EFIVars:    true,
		Tool:       "efibootmgr",
		ToolPath:   "/usr/sbin/efibootmgr",
		Accessible: true,
	}, checker.Check(context.Background()))
}

func TestCheckReportWithoutUEFI(t *testing.T) {
	mockGlobal(t, &lookPath, func(string) (string, error) { return "", errors.New("not found") })

	runner := &execx.FakeRunner{}
	checker := &Checker{FirmwareDir: filepath.Join(t.TempDir(), "absent"), Tool: "efibootmgr", Runner: runner}

	assert.Equal(t, Report{Tool: "efibootmgr"}, checker.Check(context.Background()))
	assert.Empty(t, runner.Probes)
}

func TestVariablePath(t *testing.T) {
	assert.Equal(t,
		"/sys/firmware/efi/efivars/BootNext-8be4df61-93ca-11d2-aa0d-00e098032b8c",
		VariablePath("/sys/firmware/efi/efivars", "BootNext"),
	)
}
