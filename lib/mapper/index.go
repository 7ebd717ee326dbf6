package mapper

import (
	"strings"

	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
)

// PinRef names a symbol pin as placed by a gate.
type PinRef struct {
	Gate string
	Pin  string
}

// ConnectIndex is a device's connect table indexed both ways. It is built
// once per device and only read afterwards.
type ConnectIndex struct {
	pinPads map[PinRef][]string
	padPin  map[string]PinRef

	// Problems are connect rows that could not be indexed: unknown gates,
	// pins or pads and pads claimed by a second pin.
	Problems []*diag.UnresolvedConnectionError
}

// NewConnectIndex indexes device's connects. gates maps gate names of the
// deviceset to their symbols; pads is the set of pad and smd names of the
// device's package.
func NewConnectIndex(ds, device *eagle.Element, gates map[string]*eagle.Element, pads map[string]bool) *ConnectIndex {
	ix := &ConnectIndex{
		pinPads: make(map[PinRef][]string),
		padPin:  make(map[string]PinRef),
	}

	problem := func(gate, pin, pad, reason string) {
		ix.Problems = append(ix.Problems, &diag.UnresolvedConnectionError{
			DeviceSet: ds.Name(),
			Device:    device.Name(),
			Gate:      gate,
			Pin:       pin,
			Pad:       pad,
			Reason:    reason,
		})
	}

	for _, c := range device.Find("connects/connect") {
		gate := c.AttrOr("gate", "")
		pin := c.AttrOr("pin", "")
		padList := c.AttrOr("pad", "")

		symbol, ok := gates[gate]
		if !ok {
			problem(gate, pin, padList, "unknown gate")
			continue
		}
		if symbol.Named(eagle.KindPin, pin) == nil {
			problem(gate, pin, padList, "unknown pin")
			continue
		}

		ref := PinRef{Gate: gate, Pin: pin}
		for _, pad := range strings.Fields(padList) {
			if !pads[pad] {
				problem(gate, pin, pad, "unknown pad")
				continue
			}
			if owner, taken := ix.padPin[pad]; taken {
				problem(gate, pin, pad, "pad already connected to "+owner.Gate+"/"+owner.Pin)
				continue
			}
			ix.padPin[pad] = ref
			ix.pinPads[ref] = append(ix.pinPads[ref], pad)
		}
	}

	return ix
}

// Pads returns the pads a pin connects to, in connect order.
func (ix *ConnectIndex) Pads(gate, pin string) []string {
	return ix.pinPads[PinRef{Gate: gate, Pin: pin}]
}

// Pin returns the pin a pad connects to.
func (ix *ConnectIndex) Pin(pad string) (PinRef, bool) {
	ref, ok := ix.padPin[pad]
	return ref, ok
}
