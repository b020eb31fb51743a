package toast

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"looplog/internal/notify"
)

func newTestToast(t *testing.T) (*Toast, *clockwork.FakeClock) {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	clock := clockwork.NewFakeClock()
	return New(app, Config{Duration: 4 * time.Second, Clock: clock}), clock
}

func TestToastHidesAfterDuration(t *testing.T) {
	toast, clock := newTestToast(t)

	toast.Show("Scarf", notify.MessageAutoPaused)
	assert.True(t, toast.Visible())
	assert.Equal(t, notify.MessageAutoPaused, toast.Message())

	clock.Advance(3 * time.Second)
	assert.True(t, toast.Visible())

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return !toast.Visible() }, time.Second, time.Millisecond)
}

func TestNewToastRestartsTimer(t *testing.T) {
	toast, clock := newTestToast(t)

	toast.Show("Scarf", notify.MessageReminder)
	clock.Advance(3 * time.Second)
	toast.Show("Scarf", notify.MessageAutoPaused)

	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.True(t, toast.Visible(), "the first timer must not hide the second toast")

	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return !toast.Visible() }, time.Second, time.Millisecond)
}

func TestNotifyAndHide(t *testing.T) {
	toast, _ := newTestToast(t)

	toast.Notify(notify.Reminder("Hat"))
	require.Eventually(t, toast.Visible, time.Second, time.Millisecond)
	assert.Equal(t, notify.MessageReminder, toast.Message())

	toast.Hide()
	assert.False(t, toast.Visible())
}
