package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalFromMAC(t *testing.T) {
	id := terminalFromMAC("00:1a:2b:3c:4d:5e")
	assert.Regexp(t, regexp.MustCompile(`^PDV-[0-9A-F]{8}$`), id)
	assert.Equal(t, id, terminalFromMAC("00:1a:2b:3c:4d:5e"), "stable")
	assert.NotEqual(t, id, terminalFromMAC("00:1a:2b:3c:4d:5f"))
	assert.Equal(t, unknownTerminal, terminalFromMAC(""))
}

func TestTerminalID(t *testing.T) {
	id := TerminalID()
	assert.True(t, id == unknownTerminal || regexp.MustCompile(`^PDV-[0-9A-F]{8}$`).MatchString(id), id)
}
