package fritzing

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// namespace is fixed so identifiers survive across releases. Changing it
// changes every generated module id.
var namespace = uuid.MustParse("6f0e3b3c-2a52-4f36-9a41-5d9c2e7b8a10")

// ModuleID derives a stable module id from the library, deviceset and variant
// names. Fritzing replaces parts by module id, so rerunning a conversion on
// unchanged input must produce the same value.
func ModuleID(library, deviceset, variant string) string {
	key := strings.Join([]string{library, deviceset, variant}, "\x00")
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

// ConnectorID names connector n.
func ConnectorID(n int) string {
	return "connector" + strconv.Itoa(n)
}

// PinID is the svgId of a connector in breadboard and schematic views.
func PinID(connector string) string { return connector + "pin" }

// TerminalID is the schematic terminal point: the outer end of the pin.
func TerminalID(connector string) string { return connector + "terminal" }

// PadID is the svgId of a connector in the pcb view.
func PadID(connector string) string { return connector + "pad" }

