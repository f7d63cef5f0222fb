package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient_ExplicitTransientError(t *testing.T) {
	err := NewTransientError(errors.New("nominatim overloaded"), 503)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 503, err.StatusCode)
}

func TestIsTransient_WrappedByEris(t *testing.T) {
	inner := NewTransientError(errors.New("rate limited"), 429)
	wrapped := eris.Wrap(inner, "resolve: fetch")
	assert.True(t, IsTransient(wrapped))
}

func TestIsTransient_NilAndPlain(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("geocode: nominatim parse response")))
}

func TestIsTransient_Syscalls(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("write tcp: %w", syscall.ECONNRESET)))
	assert.True(t, IsTransient(fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)))
}

func TestIsTransient_NetworkTimeout(t *testing.T) {
	assert.True(t, IsTransient(&net.DNSError{IsTimeout: true, Err: "timeout"}))
}

func TestIsTransient_StringPatterns(t *testing.T) {
	for _, msg := range []string{
		"connection reset by peer",
		"TLS handshake timeout",
		"i/o timeout",
		"context deadline exceeded (Client.Timeout exceeded while awaiting headers)",
	} {
		assert.True(t, IsTransient(errors.New(msg)), msg)
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 400, 403, 404} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}

func TestRerunHint(t *testing.T) {
	assert.Contains(t, RerunHint(NewTransientError(errors.New("x"), 429)), "rerun later")
	assert.Contains(t, RerunHint(errors.New("bad")), "inspect")
}
