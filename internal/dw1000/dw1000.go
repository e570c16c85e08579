// Package dw1000 defines the capability surface the capture pipeline needs
// from a DW1000 UWB transceiver. Register-level SPI access, device bring-up
// and radio configuration live behind the Device interface; drivers register
// themselves by name and are opened through Open.
package dw1000

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Pulse repetition frequency settings. The PRF determines how many CIR
// samples the accumulator holds per symbol.
type PRF int

const (
	PRF16M PRF = 16
	PRF64M PRF = 64
)

// CIRSamples returns the number of complex accumulator samples for the PRF:
// 992 for 16 MHz, 1016 for 64 MHz.
func (p PRF) CIRSamples() int {
	if p == PRF16M {
		return 992
	}
	return 1016
}

// Config is the radio configuration handed to a driver at open time. It is
// an explicit value, not ambient state; the session records it alongside the
// captures it produced.
type Config struct {
	Channel        int    `yaml:"channel" json:"channel"`
	PRF            PRF    `yaml:"prf" json:"prf"`
	PreambleLength int    `yaml:"preambleLength" json:"preambleLength"`
	PreambleCode   int    `yaml:"preambleCode" json:"preambleCode"`
	NonStandardSFD bool   `yaml:"nonStandardSFD" json:"nonStandardSFD"`
	DataRate       string `yaml:"dataRate" json:"dataRate"`
	SFDTimeout     int    `yaml:"sfdTimeout" json:"sfdTimeout"`
}

// DefaultConfig returns EVK1000 mode 3: channel 5, 64 MHz PRF, 1024 symbol
// preamble, 110 kbps.
func DefaultConfig() Config {
	return Config{
		Channel:        5,
		PRF:            PRF64M,
		PreambleLength: 1024,
		PreambleCode:   9,
		NonStandardSFD: true,
		DataRate:       "110k",
		SFDTimeout:     1025 + 64 - 32,
	}
}

// Device is the set of register operations the receive pipeline consumes.
// All methods map onto single register transactions and do not block waiting
// for radio events; polling is the caller's concern.
type Device interface {
	// EnableReceiver arms the receiver for immediate reception.
	EnableReceiver() error

	// ResetReceiver performs a receiver-only soft reset, required after an
	// RX error to reinitialise leading-edge detection.
	ResetReceiver() error

	// ReadStatus returns the low 32 bits of the system status register.
	ReadStatus() (uint32, error)

	// ClearStatus writes the given mask back to the status register,
	// clearing the flagged events.
	ClearStatus(mask uint32) error

	// FrameLength returns the frame length reported by the frame info
	// register for the frame currently in the RX buffer.
	FrameLength() (int, error)

	// ReadFrame copies len(buf) bytes of the received frame, starting at
	// offset 0, out of the RX buffer.
	ReadFrame(buf []byte) error

	// ReadAccumulator reads n meaningful bytes of accumulator memory at the
	// given byte offset. The device prepends one dummy byte to every
	// accumulator read, so buf must hold at least n+1 bytes and buf[0] is
	// garbage after the call.
	ReadAccumulator(buf []byte, n, offset int) error

	// ReadRXTimestamp returns the raw 40-bit receive timestamp.
	ReadRXTimestamp() (Timestamp, error)

	// ReadDiagnostics returns the signal quality snapshot for the most
	// recent receiver event. Only valid immediately after the event.
	ReadDiagnostics() (*Diagnostics, error)

	// Close releases the underlying transport.
	Close() error
}

// OpenFunc opens a device with the given radio configuration.
type OpenFunc func(cfg Config) (Device, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]OpenFunc)
)

// RegisterDriver makes a device driver available under the given name.
// Intended to be called from driver package init functions; registering the
// same name twice panics.
func RegisterDriver(name string, open OpenFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, dup := drivers[name]; dup {
		panic("dw1000: RegisterDriver called twice for driver " + name)
	}
	drivers[name] = open
}

// Open opens the named driver with the given configuration.
func Open(driver string, cfg Config) (Device, error) {
	driversMu.RLock()
	open, ok := drivers[driver]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("dw1000: unknown driver %q (registered: %s)", driver, strings.Join(Drivers(), ", "))
	}
	return open(cfg)
}

// Drivers returns the names of the registered drivers, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
