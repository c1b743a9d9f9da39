// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logparse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bureau-foundation/pbacbench/lib/digest"
	"github.com/bureau-foundation/pbacbench/lib/event"
)

// maxLineLength bounds a single log line. Real lines are a few hundred
// bytes; anything near this limit is corrupt.
const maxLineLength = 16 << 20

// ResourceSample is one broker resource summary line: statistics over
// the monitoring samples taken while the benchmark ran.
type ResourceSample struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Avg      float64 `json:"avg"`
	Variance float64 `json:"variance"`
}

// File is the parsed content of one log file.
type File struct {
	Path string

	// Seed is the random seed the node ran with. HasSeed is false for
	// logs that never declared one.
	Seed    int64
	HasSeed bool

	// Method is the purpose-management method the node declared, or
	// "" if the file has no declaration.
	Method string

	// Lines is the number of non-blank lines parsed.
	Lines int

	// Events holds the file's events in the order they were written.
	Events []event.Event

	CPU    []ResourceSample
	Memory []ResourceSample

	// Digest fingerprints the file's bytes on disk. Set by Load.
	Digest digest.Hash
}

// Parse reads one log from r. path is used for error messages and event
// source positions. An empty separator selects DefaultSeparator.
func Parse(path string, r io.Reader, separator string) (*File, error) {
	if separator == "" {
		separator = DefaultSeparator
	}
	parser := &fileParser{
		separator: separator,
		file:      &File{Path: path},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := parser.parseLine(line, lineNumber); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &Error{Cause: CauseRead, Path: path, Line: lineNumber + 1, Err: err}
	}
	return parser.file, nil
}

type fileParser struct {
	separator string
	file      *File
}

// lineError carries a cause out of the field decoders; parseLine adds
// the position.
type lineError struct {
	cause Cause
	err   error
}

func (e *lineError) Error() string { return e.err.Error() }

func (p *fileParser) parseLine(line string, lineNumber int) error {
	fields := strings.Split(line, p.separator)
	label, args := fields[0], fields[1:]

	fail := func(cause Cause, err error) error {
		return &Error{Cause: cause, Path: p.file.Path, Line: lineNumber, Text: line, Err: err}
	}

	want, known := arity[label]
	if !known {
		return fail(CauseUnknownLabel, fmt.Errorf("label %q", label))
	}
	if len(args) != want {
		return fail(CauseArity, fmt.Errorf("%s has %d fields, want %d", label, len(args), want))
	}

	p.file.Lines++
	source := event.Source{File: p.file.Path, Line: lineNumber}

	var (
		record event.Event
		err    error
	)
	switch label {
	case LabelSeed, LabelSetSeed:
		if p.file.HasSeed {
			return fail(CauseDuplicateSeed, fmt.Errorf("seed already set to %d", p.file.Seed))
		}
		seed, parseErr := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
		if parseErr != nil {
			return fail(CauseNumber, fmt.Errorf("seed: %w", parseErr))
		}
		p.file.Seed, p.file.HasSeed = seed, true
		return nil

	case LabelMethod, LabelSetMethod:
		method := strings.TrimSpace(args[0])
		if p.file.Method != "" && p.file.Method != method {
			return fail(CauseConflictingMethod, fmt.Errorf("method %q after %q", method, p.file.Method))
		}
		p.file.Method = method
		return nil

	case LabelCPUMetrics, LabelMemoryMetrics:
		sample, sampleErr := parseResourceSample(args)
		if sampleErr != nil {
			return fail(CauseNumber, sampleErr)
		}
		if label == LabelCPUMetrics {
			p.file.CPU = append(p.file.CPU, sample)
		} else {
			p.file.Memory = append(p.file.Memory, sample)
		}
		return nil

	case LabelConnect:
		record, err = parseConnect(args, source)
	case LabelDisconnect:
		record, err = parseDisconnect(args, source)
	case LabelSubscribe:
		record, err = parseSubscribe(args, source)
	case LabelPublish:
		record, err = parsePublish(args, source)
	case LabelPublishOp:
		record, err = parsePublishOperation(args, source)
	case LabelReceive:
		record, err = parseReceive(args, source)
	case LabelReceiveOp:
		record, err = parseReceiveOperation(args, source)
	default:
		// Every label in the arity table has a case above.
		return fail(CauseUnknownLabel, fmt.Errorf("label %q has no decoder", label))
	}
	if err != nil {
		var decodeErr *lineError
		if errors.As(err, &decodeErr) {
			return fail(decodeErr.cause, decodeErr.err)
		}
		return fail(CauseRead, err)
	}
	p.file.Events = append(p.file.Events, record)
	return nil
}

func parseHeader(timestamp, node string, source event.Source) (event.Header, error) {
	seconds, err := parseTimestamp(timestamp)
	if err != nil {
		return event.Header{}, err
	}
	return event.Header{Timestamp: seconds, Node: node, Source: source}, nil
}

func parseTimestamp(value string) (float64, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, &lineError{cause: CauseNumber, err: fmt.Errorf("timestamp: %w", err)}
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, &lineError{cause: CauseNumber, err: fmt.Errorf("timestamp %q is not finite", value)}
	}
	return seconds, nil
}

func parseInteger(name, value string) (int64, error) {
	number, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, &lineError{cause: CauseNumber, err: fmt.Errorf("%s: %w", name, err)}
	}
	return number, nil
}

func expectData(value string) error {
	if value != event.DataLiteral {
		return &lineError{cause: CauseLiteral, err: fmt.Errorf("got %q, want %q", value, event.DataLiteral)}
	}
	return nil
}

func parseCategory(value string) (event.Category, error) {
	category, err := event.ParseCategory(value)
	if err != nil {
		return "", &lineError{cause: CauseCategory, err: err}
	}
	return category, nil
}

// CONNECT: timestamp, node, client
func parseConnect(args []string, source event.Source) (event.Event, error) {
	header, err := parseHeader(args[0], args[1], source)
	if err != nil {
		return nil, err
	}
	return &event.Connect{Header: header, Client: args[2]}, nil
}

// DISCONNECT: timestamp, node, client
func parseDisconnect(args []string, source event.Source) (event.Event, error) {
	header, err := parseHeader(args[0], args[1], source)
	if err != nil {
		return nil, err
	}
	return &event.Disconnect{Header: header, Client: args[2]}, nil
}

// SUBSCRIBE: timestamp, node, client, topic filter, purpose filter,
// subscription id
func parseSubscribe(args []string, source event.Source) (event.Event, error) {
	header, err := parseHeader(args[0], args[1], source)
	if err != nil {
		return nil, err
	}
	subscriptionID, err := parseInteger("subscription id", args[5])
	if err != nil {
		return nil, err
	}
	return &event.Subscribe{
		Header:         header,
		Client:         args[2],
		TopicFilter:    args[3],
		PurposeFilter:  args[4],
		SubscriptionID: subscriptionID,
	}, nil
}

// PUBLISH: timestamp, node, client, topic, purpose, DATA, correlation id
func parsePublish(args []string, source event.Source) (event.Event, error) {
	header, err := parseHeader(args[0], args[1], source)
	if err != nil {
		return nil, err
	}
	if err := expectData(args[5]); err != nil {
		return nil, err
	}
	correlationID, err := parseInteger("correlation id", args[6])
	if err != nil {
		return nil, err
	}
	return &event.Publish{
		Header:        header,
		Client:        args[2],
		Topic:         args[3],
		Purpose:       args[4],
		Message:       event.Data,
		CorrelationID: correlationID,
	}, nil
}

// PUBLISH_OP: timestamp, node, client, topic, purpose, op type,
// op category, correlation id
func parsePublishOperation(args []string, source event.Source) (event.Event, error) {
	header, err := parseHeader(args[0], args[1], source)
	if err != nil {
		return nil, err
	}
	category, err := parseCategory(args[6])
	if err != nil {
		return nil, err
	}
	correlationID, err := parseInteger("correlation id", args[7])
	if err != nil {
		return nil, err
	}
	return &event.Publish{
		Header:        header,
		Client:        args[2],
		Topic:         args[3],
		Purpose:       args[4],
		Message:       event.Operation(args[5], category),
		CorrelationID: correlationID,
	}, nil
}

// RECV: timestamp, node, receiver, sender, topic, subscription id, DATA,
// correlation id
func parseReceive(args []string, source event.Source) (event.Event, error) {
	header, err := parseHeader(args[0], args[1], source)
	if err != nil {
		return nil, err
	}
	subscriptionID, err := parseInteger("subscription id", args[5])
	if err != nil {
		return nil, err
	}
	if err := expectData(args[6]); err != nil {
		return nil, err
	}
	correlationID, err := parseInteger("correlation id", args[7])
	if err != nil {
		return nil, err
	}
	return &event.Receive{
		Header:         header,
		Receiver:       args[2],
		Sender:         args[3],
		Topic:          args[4],
		SubscriptionID: subscriptionID,
		Message:        event.Data,
		CorrelationID:  correlationID,
	}, nil
}

// RECV_OP: timestamp, node, receiver, sender, topic, subscription id,
// op type, op category, op status, correlation id
func parseReceiveOperation(args []string, source event.Source) (event.Event, error) {
	header, err := parseHeader(args[0], args[1], source)
	if err != nil {
		return nil, err
	}
	subscriptionID, err := parseInteger("subscription id", args[5])
	if err != nil {
		return nil, err
	}
	category, err := parseCategory(args[7])
	if err != nil {
		return nil, err
	}
	correlationID, err := parseInteger("correlation id", args[9])
	if err != nil {
		return nil, err
	}
	return &event.Receive{
		Header:         header,
		Receiver:       args[2],
		Sender:         args[3],
		Topic:          args[4],
		SubscriptionID: subscriptionID,
		Message:        event.Operation(args[6], category),
		OpStatus:       args[8],
		CorrelationID:  correlationID,
	}, nil
}

func parseResourceSample(args []string) (ResourceSample, error) {
	var values [4]float64
	for index, arg := range args {
		value, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return ResourceSample{}, fmt.Errorf("resource field %d: %w", index+1, err)
		}
		values[index] = value
	}
	return ResourceSample{Min: values[0], Max: values[1], Avg: values[2], Variance: values[3]}, nil
}
