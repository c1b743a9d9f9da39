// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import "fmt"

// DataLiteral is the field value that marks a data message in PUBLISH
// and RECV lines.
const DataLiteral = "DATA"

// Category classifies a rights operation by its expected response
// topology.
type Category string

const (
	CategoryC1 Category = "C1"
	CategoryC2 Category = "C2"
	CategoryC3 Category = "C3"
)

// ParseCategory validates a logged operation category.
func ParseCategory(value string) (Category, error) {
	switch Category(value) {
	case CategoryC1, CategoryC2, CategoryC3:
		return Category(value), nil
	default:
		return "", fmt.Errorf("unknown operation category %q (want C1, C2, or C3)", value)
	}
}

// MessageKind distinguishes data messages from rights operations. The
// zero value is a data message.
type MessageKind struct {
	Operation  bool
	OpType     string
	OpCategory Category
}

// Data is the data message kind.
var Data = MessageKind{}

// Operation returns the kind for a rights operation.
func Operation(opType string, category Category) MessageKind {
	return MessageKind{Operation: true, OpType: opType, OpCategory: category}
}

// IsData reports whether the kind is a data message.
func (k MessageKind) IsData() bool {
	return !k.Operation
}

func (k MessageKind) String() string {
	if !k.Operation {
		return DataLiteral
	}
	return fmt.Sprintf("OP(%s/%s)", k.OpType, k.OpCategory)
}
