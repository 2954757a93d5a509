package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// SequenceError reports a malformed sequence set, naming the offending token.
type SequenceError struct {
	Token string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("invalid sequence set token: %q", e.Token)
}

// ParseSequenceSet expands an IMAP sequence set ("1:10", "1,3,5", "*") into
// message sequence numbers. max is the highest addressable sequence number in
// the selected mailbox and bounds the "*" wildcard.
//
// Tokens are expanded in request order; ranges expand ascending regardless of
// bound order (RFC 3501: the contents of a range are independent of bound
// order). Duplicates are kept. Zero, negative or non-numeric tokens and
// malformed ranges are errors, never silently-empty results.
func ParseSequenceSet(sequenceSet string, max int) ([]int, error) {
	if strings.TrimSpace(sequenceSet) == "" {
		return nil, &SequenceError{Token: sequenceSet}
	}

	var sequences []int
	for _, part := range strings.Split(sequenceSet, ",") {
		part = strings.TrimSpace(part)

		if part == "*" {
			for i := 1; i <= max; i++ {
				sequences = append(sequences, i)
			}
			continue
		}

		if strings.Contains(part, ":") {
			rangeParts := strings.Split(part, ":")
			if len(rangeParts) != 2 {
				return nil, &SequenceError{Token: part}
			}

			start, err := parseSequenceNumber(rangeParts[0], max)
			if err != nil {
				return nil, err
			}
			end, err := parseSequenceNumber(rangeParts[1], max)
			if err != nil {
				return nil, err
			}

			if start > end {
				start, end = end, start
			}
			for i := start; i <= end; i++ {
				sequences = append(sequences, i)
			}
			continue
		}

		num, err := parseSequenceNumber(part, max)
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, num)
	}

	return sequences, nil
}

// CheckSequenceSet validates sequence set syntax without knowing the mailbox
// size, so the session engine can reject malformed input before any remote
// call. A set that parses against some mailbox size is accepted.
func CheckSequenceSet(sequenceSet string) error {
	_, err := ParseSequenceSet(sequenceSet, 1)
	return err
}

func parseSequenceNumber(token string, max int) (int, error) {
	if token == "*" {
		return max, nil
	}
	num, err := strconv.Atoi(token)
	if err != nil || num <= 0 {
		return 0, &SequenceError{Token: token}
	}
	return num, nil
}
