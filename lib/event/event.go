// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"fmt"
	"strings"
)

// Kind identifies an event variant.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConnect
	KindDisconnect
	KindSubscribe
	KindPublish
	KindReceive
)

// String returns the log label family for the kind.
func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindDisconnect:
		return "disconnect"
	case KindSubscribe:
		return "subscribe"
	case KindPublish:
		return "publish"
	case KindReceive:
		return "receive"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Source is the position in an input log a record was parsed from.
type Source struct {
	File string
	Line int
}

func (s Source) String() string {
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// Header holds the fields common to every event variant.
type Header struct {
	Timestamp float64
	Node      string
	Source    Source
}

// Event is implemented by Connect, Disconnect, Subscribe, Publish, and
// Receive. The interface is sealed.
type Event interface {
	// Kind returns the variant tag.
	Kind() Kind

	// Head returns the common header.
	Head() Header

	sealed()
}

// Connect records a client establishing a broker session.
type Connect struct {
	Header
	Client string
}

// Disconnect records a client ending its broker session.
type Disconnect struct {
	Header
	Client string
}

// Subscribe records a client subscribing to a topic filter with a
// purpose filter. SubscriptionID is the identifier the broker reports
// back on every reception delivered through this subscription.
type Subscribe struct {
	Header
	Client         string
	TopicFilter    string
	PurposeFilter  string
	SubscriptionID int64
}

// Publish records a client publishing a message. CorrelationID is
// unique per sending client and message kind within one run; it is the
// join key between a publication and its receptions.
type Publish struct {
	Header
	Client        string
	Topic         string
	Purpose       string
	Message       MessageKind
	CorrelationID int64
}

// Receive records a client receiving a message. OpStatus is set only
// for operation receipts.
type Receive struct {
	Header
	Receiver       string
	Sender         string
	Topic          string
	SubscriptionID int64
	Message        MessageKind
	OpStatus       string
	CorrelationID  int64
}

func (e *Connect) Kind() Kind    { return KindConnect }
func (e *Disconnect) Kind() Kind { return KindDisconnect }
func (e *Subscribe) Kind() Kind  { return KindSubscribe }
func (e *Publish) Kind() Kind    { return KindPublish }
func (e *Receive) Kind() Kind    { return KindReceive }

func (e *Connect) Head() Header    { return e.Header }
func (e *Disconnect) Head() Header { return e.Header }
func (e *Subscribe) Head() Header  { return e.Header }
func (e *Publish) Head() Header    { return e.Header }
func (e *Receive) Head() Header    { return e.Header }

func (*Connect) sealed()    {}
func (*Disconnect) sealed() {}
func (*Subscribe) sealed()  {}
func (*Publish) sealed()    {}
func (*Receive) sealed()    {}

// ClientOf returns the client an event belongs to: the acting client
// for connects, disconnects, subscriptions, and publications, and the
// receiving client for receptions.
func ClientOf(e Event) string {
	switch v := e.(type) {
	case *Connect:
		return v.Client
	case *Disconnect:
		return v.Client
	case *Subscribe:
		return v.Client
	case *Publish:
		return v.Client
	case *Receive:
		return v.Receiver
	default:
		panic(fmt.Sprintf("event: unhandled variant %T", e))
	}
}

// Less orders events by timestamp, breaking ties by source file and
// then by line. Within a single file this preserves the order the node
// wrote its records in.
func Less(a, b Event) bool {
	ha, hb := a.Head(), b.Head()
	if ha.Timestamp != hb.Timestamp {
		return ha.Timestamp < hb.Timestamp
	}
	if c := strings.Compare(ha.Source.File, hb.Source.File); c != 0 {
		return c < 0
	}
	return ha.Source.Line < hb.Source.Line
}

// Compare is the three-way form of Less, for slices.SortFunc.
func Compare(a, b Event) int {
	if Less(a, b) {
		return -1
	}
	if Less(b, a) {
		return 1
	}
	return 0
}
