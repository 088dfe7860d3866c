// Package trackmatch maps a band member's preferred instrument to the best
// matching track in a loaded score, so the player can auto-select a sensible
// default track.
package trackmatch

import "strings"

// category groups the substring patterns tried for a known instrument label,
// in priority order. Earlier patterns are more specific; the trailing generic
// ones only apply after every specific pattern failed across all tracks.
type category struct {
	labels   []string
	patterns []string
}

var categories = []category{
	{
		labels:   []string{"lead guitar"},
		patterns: []string{"lead guitar", "lead gtr", "guitar 1", "gtr 1", "lead", "guitar"},
	},
	{
		labels:   []string{"rhythm guitar"},
		patterns: []string{"rhythm guitar", "rhythm gtr", "guitar 2", "gtr 2", "rhythm", "guitar"},
	},
	{
		labels:   []string{"bass", "bass guitar"},
		patterns: []string{"bass", "bajo"},
	},
	{
		labels:   []string{"drums", "drum kit"},
		patterns: []string{"drum", "percussion", "kit"},
	},
	{
		labels:   []string{"synth", "keys", "synth/keys", "keyboard"},
		patterns: []string{"synth", "keys", "keyboard", "piano", "organ"},
	},
	{
		labels:   []string{"lead vocals", "vocals"},
		patterns: []string{"lead vocal", "lead voc", "vocal", "voice", "voix"},
	},
	{
		labels:   []string{"backing vocals"},
		patterns: []string{"backing vocal", "backup vocal", "backing", "bgv", "choir", "chorus"},
	},
}

// Find returns the index of the track best matching the preferred instrument
// label, or -1 when nothing matches. Matching is deterministic: the first
// track satisfying the highest-priority strategy wins.
//
// Strategies, in order:
//  1. known category patterns for the label, each tried against every track
//  2. the full label as a case-insensitive substring of a track name
//  3. for labels containing "guitar", any track containing "guitar" or "gtr"
func Find(tracks []string, preferred string) int {
	label := strings.ToLower(strings.TrimSpace(preferred))
	if label == "" || len(tracks) == 0 {
		return -1
	}

	names := make([]string, len(tracks))
	for i, t := range tracks {
		names[i] = strings.ToLower(t)
	}

	if cat := categoryFor(label); cat != nil {
		for _, pattern := range cat.patterns {
			for i, name := range names {
				if strings.Contains(name, pattern) {
					return i
				}
			}
		}
	}

	for i, name := range names {
		if strings.Contains(name, label) {
			return i
		}
	}

	if strings.Contains(label, "guitar") {
		for i, name := range names {
			if strings.Contains(name, "guitar") || strings.Contains(name, "gtr") {
				return i
			}
		}
	}

	return -1
}

func categoryFor(label string) *category {
	for i := range categories {
		for _, l := range categories[i].labels {
			if label == l {
				return &categories[i]
			}
		}
	}
	return nil
}
