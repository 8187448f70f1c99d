package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func TestFake_NowAndAdvance(t *testing.T) {
	c := Fake(epoch)
	assert.True(t, c.Now().Equal(epoch))

	c.Advance(5 * time.Second)
	assert.True(t, c.Now().Equal(epoch.Add(5*time.Second)))
}

func TestFake_AfterFiresOnlyAtDeadline(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(3 * time.Second)

	c.Advance(2 * time.Second)
	select {
	case <-ch:
		t.Fatal("fired before deadline")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-ch:
		assert.True(t, got.Equal(epoch.Add(3*time.Second)))
	default:
		t.Fatal("did not fire at deadline")
	}
	assert.Equal(t, 0, c.Waiters())
}

func TestFake_AfterNonPositiveFiresImmediately(t *testing.T) {
	c := Fake(epoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestFake_WaitForWaiters(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})

	go func() {
		<-c.After(time.Minute)
		close(done)
	}()

	c.WaitForWaiters(1)
	c.Set(epoch.Add(time.Hour))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "sleeper was not woken")
	}
}

func TestMillis(t *testing.T) {
	assert.Equal(t, epoch.UnixMilli(), Millis(epoch))
}
