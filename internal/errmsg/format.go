// Package errmsg turns failed receiver and store operations into the one-line
// messages shown in the status line.
package errmsg

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Op names what was being attempted, phrased to follow "Failed to".
type Op string

const (
	OpPlay   Op = "start playback"
	OpResume Op = "resume playback"
	OpPause  Op = "pause playback"
	OpStop   Op = "stop playback"
	OpSeek   Op = "seek"
	OpVolume Op = "set volume"

	OpDiscover      Op = "discover devices"
	OpConnect       Op = "connect to device"
	OpRequestStatus Op = "request device status"

	OpStateLoad   Op = "load saved state"
	OpHistorySave Op = "save URL history"
)

// Reason is err shortened for the status line. Network failures that
// look alike in the raw error text get a plain description.
func Reason(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "receiver did not answer in time"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection refused"
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return "receiver unreachable"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "network timeout"
	}
	return err.Error()
}

// Format reports op failing with err, or "" for a nil err.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, Reason(err))
}

// FormatWith is Format naming the receiver or URL involved.
func FormatWith(op Op, subject string, err error) string {
	switch {
	case err == nil:
		return ""
	case subject == "":
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, subject, Reason(err))
}
