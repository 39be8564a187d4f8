package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

const unknownTerminal = "PDV-UNKNOWN"

// TerminalID identifies the till a sale was rung up on. It hashes the MAC
// address of the first active interface so receipts show a short, stable id
// like "PDV-A1B2C3D4".
func TerminalID() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return unknownTerminal
	}

	var mac string
	for _, i := range interfaces {
		// first active physical interface
		if i.Flags&net.FlagUp != 0 && len(i.HardwareAddr) > 0 {
			mac = i.HardwareAddr.String()
			break
		}
	}
	return terminalFromMAC(mac)
}

func terminalFromMAC(mac string) string {
	if mac == "" {
		return unknownTerminal
	}
	hash := sha256.Sum256([]byte(mac + "PDV-TERMINAL"))
	return "PDV-" + strings.ToUpper(hex.EncodeToString(hash[:])[:8])
}
