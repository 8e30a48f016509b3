// ABOUTME: Tests for birthday conversion on contact records
// ABOUTME: Checks string, Unix and time.Time round trips including pre-1970 and year-less dates
package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfBirthString(t *testing.T) {
	c := NewEmpty(FieldNames)
	require.NoError(t, c.SetDateOfBirthString("1985-03-07"))

	assert.Equal(t, "1985-03-07", c.DateOfBirthString(""))
	assert.Equal(t, "07.03.1985", c.DateOfBirthString("02.01.2006"))
	assert.Equal(t, int64(479001600), c.DateOfBirthUnix())
}

func TestDateOfBirthUnixRoundTrip(t *testing.T) {
	c := NewEmpty(FieldBirthdays)
	c.SetDateOfBirthUnix(479001600)

	got, ok := c.DateOfBirth()
	require.True(t, ok)
	assert.Equal(t, time.Date(1985, 3, 7, 0, 0, 0, 0, time.UTC), got)
}

func TestDateOfBirthBefore1970(t *testing.T) {
	c := NewEmpty(FieldBirthdays)
	c.SetDateOfBirth(time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "1815-12-10", c.DateOfBirthString(DefaultDateLayout))
	assert.Less(t, c.DateOfBirthUnix(), int64(0))
}

func TestDateOfBirthUnset(t *testing.T) {
	c := NewEmpty(FieldBirthdays)

	assert.Equal(t, "", c.DateOfBirthString(""))
	assert.Equal(t, int64(0), c.DateOfBirthUnix())
	_, ok := c.DateOfBirth()
	assert.False(t, ok)

	require.NoError(t, c.SetDateOfBirthString(""))
	c.SetDateOfBirthUnix(0)
	assert.Equal(t, "", c.DateOfBirthString(""))
}

func TestDateOfBirthYearless(t *testing.T) {
	c := NewEmpty(FieldBirthdays)
	require.NoError(t, c.SetDateOfBirthString("--12-24"))

	assert.Equal(t, "--12-24", c.DateOfBirthString(""))
	assert.Equal(t, int64(0), c.DateOfBirthUnix())
	assert.Equal(t, int64(0), c.Person().Birthdays[0].Date.Year)
}

func TestDateOfBirthInvalid(t *testing.T) {
	c := NewEmpty(FieldBirthdays)
	err := c.SetDateOfBirthString("next tuesday")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestSetDateOfBirthCreatesEntry(t *testing.T) {
	c := NewEmpty(FieldNames)
	c.SetDateOfBirth(time.Date(2000, 1, 2, 15, 0, 0, 0, time.UTC))

	require.Len(t, c.Person().Birthdays, 1)
	assert.Equal(t, int64(2), c.Person().Birthdays[0].Date.Day)
}
