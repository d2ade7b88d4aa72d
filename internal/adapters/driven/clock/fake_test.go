package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFake_Now(t *testing.T) {
	fake := NewFake(start)
	assert.Equal(t, start, fake.Now())

	fake.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), fake.Now())
}

func TestFake_TimerFiresAtDeadline(t *testing.T) {
	fake := NewFake(start)
	timer := fake.NewTimer(5 * time.Second)

	fake.Advance(4 * time.Second)
	select {
	case <-timer.C():
		t.Fatal("timer fired early")
	default:
	}

	fake.Advance(time.Second)
	select {
	case at := <-timer.C():
		assert.Equal(t, start.Add(5*time.Second), at)
	default:
		t.Fatal("timer did not fire")
	}
}

func TestFake_TimerStop(t *testing.T) {
	fake := NewFake(start)
	timer := fake.NewTimer(time.Second)

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	fake.Advance(2 * time.Second)
	select {
	case <-timer.C():
		t.Fatal("stopped timer fired")
	default:
	}
}

func TestFake_TickerRepeats(t *testing.T) {
	fake := NewFake(start)
	ticker := fake.NewTicker(time.Second)

	for i := 0; i < 3; i++ {
		fake.Advance(time.Second)
		select {
		case <-ticker.C():
		default:
			t.Fatalf("tick %d missing", i+1)
		}
	}

	ticker.Stop()
	fake.Advance(time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFake_AdvanceCrossingMultipleDeadlines(t *testing.T) {
	fake := NewFake(start)
	first := fake.NewTimer(time.Second)
	second := fake.NewTimer(3 * time.Second)

	fake.Advance(5 * time.Second)

	select {
	case at := <-first.C():
		assert.Equal(t, start.Add(time.Second), at)
	default:
		t.Fatal("first timer did not fire")
	}
	select {
	case at := <-second.C():
		assert.Equal(t, start.Add(3*time.Second), at)
	default:
		t.Fatal("second timer did not fire")
	}
	require.Equal(t, start.Add(5*time.Second), fake.Now())
}
