package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversAfterSwap(t *testing.T) {
	b := NewBus()
	var got []Resized
	closes := 0
	Subscribe(b, func(ev Resized) { got = append(got, ev) })
	Subscribe(b, func(CloseRequested) { closes++ })

	Emit(b, Resized{Width: 80, Height: 24})
	Emit(b, CloseRequested{})
	assert.Equal(t, 2, b.Pending())
	assert.Equal(t, 0, b.DispatchAll(), "nothing is delivered before the swap")

	b.SwapBuffers()
	assert.Equal(t, 0, b.Pending())
	assert.Equal(t, 2, b.DispatchAll())
	assert.Equal(t, []Resized{{Width: 80, Height: 24}}, got)
	assert.Equal(t, 1, closes)

	b.SwapBuffers()
	assert.Equal(t, 0, b.DispatchAll(), "events are delivered once")
}

func TestBus_EventsWithoutHandlersAreDropped(t *testing.T) {
	b := NewBus()
	Emit(b, CloseRequested{})
	b.SwapBuffers()
	assert.Equal(t, 1, b.DispatchAll())
}
