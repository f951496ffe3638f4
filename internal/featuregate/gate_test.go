package featuregate_test

import (
	"sync"
	"testing"

	"github.com/YouSangSon/shardwatch/internal/featuregate"
	"github.com/stretchr/testify/assert"
)

func TestIsEnabled(t *testing.T) {
	tests := []struct {
		name     string
		gate     featuregate.Gate
		expected bool
	}{
		{name: "nil gate", gate: nil, expected: false},
		{name: "zero switch", gate: &featuregate.Switch{}, expected: false},
		{name: "enabled switch", gate: featuregate.NewSwitch(true), expected: true},
		{name: "func true", gate: featuregate.Func(func() bool { return true }), expected: true},
		{name: "panicking func", gate: featuregate.Func(func() bool { panic("no config") }), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, featuregate.IsEnabled(tt.gate))
		})
	}
}

func TestSwitch_Set(t *testing.T) {
	// Arrange
	sw := featuregate.NewSwitch(false)

	// Act
	prev1 := sw.Set(true)
	prev2 := sw.Set(true)
	sw.Disable()

	// Assert
	assert.False(t, prev1)
	assert.True(t, prev2)
	assert.False(t, sw.Enabled())
}

func TestSwitch_ConcurrentToggle(t *testing.T) {
	// Arrange
	sw := featuregate.NewSwitch(false)
	var wg sync.WaitGroup

	// Act
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func(on bool) {
			defer wg.Done()
			sw.Set(on)
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			_ = featuregate.IsEnabled(sw)
		}()
	}
	wg.Wait()
	sw.Enable()

	// Assert
	assert.True(t, sw.Enabled())
}
