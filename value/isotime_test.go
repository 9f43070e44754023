package value_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wgdb/wgdb/value"
)

func TestISODateTimeRoundTrip(t *testing.T) {
	day := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)
	moment := time.Date(1970, 1, 1, 13, 45, 9, 320000000, time.UTC)

	dateWord := value.EncodeDate(day)
	timeWord := value.EncodeTime(moment)

	s, err := value.FormatISODateTime(dateWord, timeWord)
	require.NoError(t, err)
	require.Equal(t, "2024-03-17 13:45:09.32", s)

	parts := []string{"2024-03-17", "13:45:09.32"}
	gotDate, err := value.ParseISODate(parts[0])
	require.NoError(t, err)
	require.Equal(t, dateWord, gotDate)

	gotTime, err := value.ParseISOTime(parts[1])
	require.NoError(t, err)
	require.Equal(t, timeWord, gotTime)
}

func TestParseISODateRejectsGarbage(t *testing.T) {
	_, err := value.ParseISODate("not-a-date")
	require.ErrorIs(t, err, value.ErrBadArgument)
}
