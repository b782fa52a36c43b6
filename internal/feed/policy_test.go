package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedDelayNeverStops(t *testing.T) {
	b := FixedDelay(5 * time.Second).Backoff()
	for i := 0; i < 100; i++ {
		d, stop := b.Next()
		assert.False(t, stop)
		assert.Equal(t, 5*time.Second, d)
	}
}

func TestCappedExponentialDoublesThenStops(t *testing.T) {
	b := CappedExponential(5*time.Second, 4).Backoff()

	want := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 40 * time.Second}
	for i, w := range want {
		d, stop := b.Next()
		assert.False(t, stop, "attempt %d", i)
		assert.Equal(t, w, d, "attempt %d", i)
	}
	_, stop := b.Next()
	assert.True(t, stop)
}

func TestCappedExponentialMaxDelay(t *testing.T) {
	p := CappedExponential(time.Second, 10)
	p.MaxDelay = 3 * time.Second
	b := p.Backoff()

	var last time.Duration
	for i := 0; i < 5; i++ {
		last, _ = b.Next()
	}
	assert.Equal(t, 3*time.Second, last)
}

func TestReconnectPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  ReconnectPolicy
		wantErr bool
	}{
		{"fixed", FixedDelay(time.Second), false},
		{"exponential", CappedExponential(time.Second, 3), false},
		{"zero delay", FixedDelay(0), true},
		{"exponential without cap", CappedExponential(time.Second, 0), true},
		{"unknown kind", ReconnectPolicy{Kind: "linear", Delay: time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
