//go:build !wasm

package serial

import (
	"fmt"
	"strings"
	"time"

	bugst "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// usbVendorRaspberryPi is the USB vendor ID of RP2040/RP2350 boards
const usbVendorRaspberryPi = "2E8A"

type bugstPort struct {
	bugst.Port
}

func openBugst(cfg *Config) (Port, error) {
	port, err := bugst.Open(cfg.Device, &bugst.Mode{BaudRate: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	timeout := bugst.NoTimeout
	if cfg.ReadTimeout > 0 {
		timeout = time.Duration(cfg.ReadTimeout) * time.Millisecond
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, err
	}
	return &bugstPort{Port: port}, nil
}

func (p *bugstPort) Flush() error { return p.Port.ResetInputBuffer() }

// PortInfo describes one serial port found on the host
type PortInfo struct {
	Name    string
	USB     bool
	VID     string
	PID     string
	Serial  string
	Product string
}

// IsBoard reports whether the port looks like an RP2040/RP2350 USB console
func (p PortInfo) IsBoard() bool {
	return p.USB && strings.EqualFold(p.VID, usbVendorRaspberryPi)
}

func (p PortInfo) String() string {
	if !p.USB {
		return p.Name
	}
	s := fmt.Sprintf("%s  %s:%s", p.Name, p.VID, p.PID)
	if p.Product != "" {
		s += "  " + p.Product
	}
	if p.Serial != "" {
		s += "  sn=" + p.Serial
	}
	return s
}

// ListPorts returns the serial ports on this host. USB details are filled
// in where the OS provides them.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		ports := make([]PortInfo, 0, len(details))
		for _, d := range details {
			ports = append(ports, PortInfo{
				Name:    d.Name,
				USB:     d.IsUSB,
				VID:     d.VID,
				PID:     d.PID,
				Serial:  d.SerialNumber,
				Product: d.Product,
			})
		}
		return ports, nil
	}

	names, err := bugst.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	ports := make([]PortInfo, len(names))
	for i, n := range names {
		ports[i] = PortInfo{Name: n}
	}
	return ports, nil
}

// FindBoard returns the first port that looks like a board
func FindBoard() (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	for _, p := range ports {
		if p.IsBoard() {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("no RP2040/RP2350 USB console found among %d ports", len(ports))
}
