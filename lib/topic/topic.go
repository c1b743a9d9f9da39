// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package topic implements MQTT topic-filter matching together with the
// benchmark's operational cross-link rule.
//
// Standard matching follows the MQTT rules: "+" matches exactly one
// level, a trailing "#" matches the parent level and everything below
// it, and topics whose first level starts with "$" are never matched by
// a filter whose first level is a wildcard.
//
// The cross-link rule models the broker fanning out rights operations:
// a publication on the system operations topic ("$OSYS" by default)
// also matches any subscription whose first filter level is one of the
// operational prefixes (rights notification, rights notification with
// payload, rights request, rights request status, operation response),
// although the topic strings differ.
package topic

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrMalformed is wrapped by every validation error in this package.
var ErrMalformed = errors.New("malformed topic")

const (
	singleLevel = "+"
	multiLevel  = "#"
)

// DefaultSystemTopic is the topic rights-operation requests are
// published to when the broker performs the fan-out.
const DefaultSystemTopic = "$OSYS"

// OperationResponsePrefix is the first level of topics operation
// responses are delivered on.
const OperationResponsePrefix = "op_resp"

// DefaultOperationalPrefixes are the first levels of the per-purpose
// operational topics.
var DefaultOperationalPrefixes = []string{"ON", "ONP", "OR", "ORS", OperationResponsePrefix}

// ValidateFilter checks filter against the MQTT filter grammar.
func ValidateFilter(filter string) error {
	if filter == "" {
		return fmt.Errorf("%w: empty filter", ErrMalformed)
	}
	levels := strings.Split(filter, "/")
	for index, level := range levels {
		if strings.Contains(level, multiLevel) {
			if level != multiLevel || index != len(levels)-1 {
				return fmt.Errorf("%w: filter %q: %q must be the whole last level", ErrMalformed, filter, multiLevel)
			}
		}
		if strings.Contains(level, singleLevel) && level != singleLevel {
			return fmt.Errorf("%w: filter %q: %q must be a whole level", ErrMalformed, filter, singleLevel)
		}
	}
	return nil
}

// ValidateTopic checks that topic is a concrete topic name.
func ValidateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrMalformed)
	}
	if strings.ContainsAny(topic, singleLevel+multiLevel) {
		return fmt.Errorf("%w: topic %q contains a wildcard", ErrMalformed, topic)
	}
	return nil
}

// Match reports whether filter matches topic under standard MQTT
// rules. Both arguments are assumed valid; see [Matcher.Matches] for
// the validating form.
func Match(filter, topic string) bool {
	filterLevels := strings.Split(filter, "/")
	topicLevels := strings.Split(topic, "/")

	if strings.HasPrefix(topicLevels[0], "$") &&
		(filterLevels[0] == singleLevel || filterLevels[0] == multiLevel) {
		return false
	}

	for index, level := range filterLevels {
		if level == multiLevel {
			return true
		}
		if index >= len(topicLevels) {
			return false
		}
		if level != singleLevel && level != topicLevels[index] {
			return false
		}
	}
	return len(filterLevels) == len(topicLevels)
}

// FirstLevel returns the part of name before the first "/".
func FirstLevel(name string) string {
	if index := strings.IndexByte(name, '/'); index >= 0 {
		return name[:index]
	}
	return name
}

// Matcher combines standard matching with the operational cross-link
// rule. The zero value is not useful; use [NewMatcher].
type Matcher struct {
	systemTopic string
	prefixes    []string
}

// NewMatcher returns a Matcher for the given system topic and
// operational prefixes. Empty arguments select the defaults.
func NewMatcher(systemTopic string, operationalPrefixes []string) *Matcher {
	if systemTopic == "" {
		systemTopic = DefaultSystemTopic
	}
	if len(operationalPrefixes) == 0 {
		operationalPrefixes = DefaultOperationalPrefixes
	}
	return &Matcher{
		systemTopic: systemTopic,
		prefixes:    slices.Clone(operationalPrefixes),
	}
}

// SystemTopic returns the configured system operations topic.
func (m *Matcher) SystemTopic() string {
	return m.systemTopic
}

// Matches validates both arguments and reports whether filter matches
// topic, including the cross-link rule.
func (m *Matcher) Matches(filter, topic string) (bool, error) {
	if err := ValidateFilter(filter); err != nil {
		return false, err
	}
	if err := ValidateTopic(topic); err != nil {
		return false, err
	}
	if Match(filter, topic) {
		return true, nil
	}
	return m.CrossLinked(filter, topic), nil
}

// CrossLinked reports whether the cross-link rule alone connects filter
// and topic.
func (m *Matcher) CrossLinked(filter, topic string) bool {
	return topic == m.systemTopic && slices.Contains(m.prefixes, FirstLevel(filter))
}
