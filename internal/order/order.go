// Package order defines the calibration order record consumed by the
// planning session.
//
// An order carries the six delivery-order milestone weeks (raw wYYWW
// strings, possibly empty) and the list of engines covered by the
// release. The engine count feeds estimate formulas at submission time.
package order

import (
	"encoding/json"
	"fmt"
	"os"
)

// Order is the subset of the order record the planner needs.
//
// The DelOrder fields hold raw week strings of the form "wYYWW"
// (e.g. "w2104" = ISO week 04 of 2021) or "" when the milestone has
// no planned week yet. Parsing happens in the anchor package - the
// order record never holds half-parsed dates.
type Order struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	DelOrderA string `json:"delOrderADate"`
	DelOrderB string `json:"delOrderBDate"`
	DelOrderC string `json:"delOrderCDate"`
	DelOrderD string `json:"delOrderDDate"`
	DelOrderE string `json:"delOrderEDate"`
	DelOrderF string `json:"delOrderFDate"`

	// Engines lists the engine variants in the order. Only the count
	// matters to the planner (the N in estimate formulas).
	Engines []string `json:"engines"`
}

// EngineCount returns the number of engines in the order.
func (o *Order) EngineCount() int {
	return len(o.Engines)
}

// DeliveryWeeks returns the six raw week strings in A..F order.
func (o *Order) DeliveryWeeks() [6]string {
	return [6]string{
		o.DelOrderA, o.DelOrderB, o.DelOrderC,
		o.DelOrderD, o.DelOrderE, o.DelOrderF,
	}
}

// LoadFile reads an order record from a JSON file.
func LoadFile(path string) (*Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read order file: %w", err)
	}

	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse order file %s: %w", path, err)
	}

	return &o, nil
}
