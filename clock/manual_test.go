package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestManual_Advance_FiresInDueOrder(t *testing.T) {
	req := require.New(t)
	c := NewManual(epoch)
	var order []string

	// Given callbacks scheduled out of order
	c.AfterFunc(3*time.Second, func() { order = append(order, "third") })
	c.AfterFunc(1*time.Second, func() { order = append(order, "first") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "second") })

	// When time moves past all of them
	fired := c.Advance(5 * time.Second)

	// Then they ran by due time
	req.Equal(3, fired)
	req.Equal([]string{"first", "second", "third"}, order)
	req.Equal(epoch.Add(5*time.Second), c.Now())
}

func TestManual_Advance_SameDueTimeKeepsSchedulingOrder(t *testing.T) {
	req := require.New(t)
	c := NewManual(epoch)
	var order []int

	for i := 0; i < 5; i++ {
		c.AfterFunc(time.Second, func() { order = append(order, i) })
	}
	c.Advance(time.Second)

	req.Equal([]int{0, 1, 2, 3, 4}, order)
}

func TestManual_Advance_NowIsDueTimeInsideCallback(t *testing.T) {
	req := require.New(t)
	c := NewManual(epoch)
	var seen time.Time

	c.AfterFunc(500*time.Millisecond, func() { seen = c.Now() })
	c.Advance(2 * time.Second)

	req.Equal(epoch.Add(500*time.Millisecond), seen)
}

func TestManual_Advance_RunsNestedCallbacksWithinWindow(t *testing.T) {
	req := require.New(t)
	c := NewManual(epoch)
	var order []string

	// Given a callback that schedules another one
	c.AfterFunc(500*time.Millisecond, func() {
		order = append(order, "outer")
		c.AfterFunc(3*time.Second, func() { order = append(order, "inner") })
	})

	// When time moves only to the first one
	c.Advance(time.Second)
	req.Equal([]string{"outer"}, order)
	req.Equal(1, c.Pending())

	// Then the nested one fires once its own due time is reached
	c.Advance(3 * time.Second)
	req.Equal([]string{"outer", "inner"}, order)
	req.Zero(c.Pending())
}

func TestManual_Stop(t *testing.T) {
	req := require.New(t)
	c := NewManual(epoch)
	ran := false

	timer := c.AfterFunc(time.Second, func() { ran = true })

	// When the timer is stopped before firing
	req.True(timer.Stop())
	// Then a second stop is a no-op
	req.False(timer.Stop())

	c.Advance(time.Minute)
	req.False(ran)
}

func TestManual_StopAfterFire(t *testing.T) {
	req := require.New(t)
	c := NewManual(epoch)

	timer := c.AfterFunc(time.Second, func() {})
	c.Advance(time.Second)

	req.False(timer.Stop())
}

func TestQueue_Clear(t *testing.T) {
	req := require.New(t)
	q := NewQueue()
	timer := q.Push(epoch, func() {})
	q.Push(epoch.Add(time.Second), func() {})

	req.Equal(2, q.Clear())
	req.Zero(q.Len())
	req.False(timer.Stop())

	_, ok := q.Next()
	req.False(ok)
}
