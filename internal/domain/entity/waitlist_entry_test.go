package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistEntry_Accepts(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	open := &WaitlistEntry{}
	assert.True(t, open.Accepts(monday, "09:00"))

	dated := &WaitlistEntry{PreferredDate: &monday}
	assert.True(t, dated.Accepts(monday, "14:00"))
	assert.False(t, dated.Accepts(tuesday, "14:00"))

	timed := &WaitlistEntry{PreferredDate: &monday, PreferredTime: "09:00"}
	assert.True(t, timed.Accepts(monday, "09:00"))
	assert.False(t, timed.Accepts(monday, "09:30"))
}

func TestWaitlistEntry_Transitions(t *testing.T) {
	now := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	w := &WaitlistEntry{Status: WaitlistWaiting, Priority: PriorityNormal}

	require.NoError(t, w.Notify(now))
	assert.Equal(t, WaitlistNotified, w.Status)
	assert.True(t, w.IsNotified)
	assert.Equal(t, now, *w.NotifiedAt)

	require.NoError(t, w.MarkScheduled())
	assert.Equal(t, WaitlistScheduled, w.Status)

	assert.ErrorIs(t, w.Notify(now), ErrWaitlistNotWaiting)
	assert.ErrorIs(t, w.MarkScheduled(), ErrWaitlistClosed)
}
