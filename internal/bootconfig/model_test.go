package bootconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentEntryMissingIsNotFound(t *testing.T) {
	config, err := Parse("BootCurrent: 0009\nBoot0000* Only\t\n")
	require.NoError(t, err)

	_, err = config.CurrentEntry()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, uint16(9), notFound.Number)
	assert.EqualError(t, err, "boot entry 0009 not found")
}

func TestOrderedEntriesSkipsUnknownNumbers(t *testing.T) {
	config, err := Parse("BootOrder: 0002,0004,0000\nBoot0000* A\t\nBoot0001* B\t\nBoot0002* C\t\n")
	require.NoError(t, err)

	assert.Equal(t, []Entry{{Number: 2, Label: "C"}, {Number: 0, Label: "A"}}, config.OrderedEntries())
}

func TestAccessorsReturnCopies(t *testing.T) {
	config, err := Parse("BootOrder: 0001,0002\n")
	require.NoError(t, err)

	order := config.Order()
	order[0] = 99

	assert.Equal(t, []uint16{1, 2}, config.Order())
}

func TestEntryString(t *testing.T) {
	assert.Equal(t, "Boot0042", Entry{Number: 42}.String())
}
