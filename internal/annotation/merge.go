// Leadbridge - B2B Questionnaire Lead Intake Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leadbridge

package annotation

import (
	"strings"
)

// ParseTags splits the CRM's comma-separated tag string, trimming blanks
// and dropping duplicates.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return MergeTags(strings.Split(s, ","), nil)
}

// JoinTags renders tags the way the CRM stores them.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// MergeTags returns existing ∪ add. Order is preserved, comparison is
// case-insensitive and the first spelling seen wins. Blank entries are dropped.
func MergeTags(existing, add []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(add))
	merged := make([]string, 0, len(existing)+len(add))

	for _, list := range [][]string{existing, add} {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, tag)
		}
	}
	return merged
}

// AppendNote appends addition to an existing note on a new line. The
// existing text is never altered.
func AppendNote(existing, addition string) string {
	switch {
	case addition == "":
		return existing
	case existing == "":
		return addition
	default:
		return existing + "\n" + addition
	}
}
