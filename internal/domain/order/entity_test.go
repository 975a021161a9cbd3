package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		input string
		want  OrderStatus
		ok    bool
	}{
		{"CONFIRMED", OrderStatusConfirmed, true},
		{"on_the_way", OrderStatusOnTheWay, true},
		{" delivered ", OrderStatusDelivered, true},
		{"SHIPPED", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseOrderStatus(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusInitialized, OrderStatusConfirmed, true},
		{OrderStatusInitialized, OrderStatusCancelled, true},
		{OrderStatusInitialized, OrderStatusFailed, true},
		{OrderStatusInitialized, OrderStatusDelivered, false},
		{OrderStatusConfirmed, OrderStatusOnTheWay, true},
		{OrderStatusConfirmed, OrderStatusConfirmed, false},
		{OrderStatusOnTheWay, OrderStatusDelivered, true},
		{OrderStatusOnTheWay, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusInitialized, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusFailed.IsTerminal())
	assert.False(t, OrderStatusInitialized.IsTerminal())
	assert.False(t, OrderStatusOnTheWay.IsTerminal())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPagination(2, 10, 25)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPagination(0, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
}
