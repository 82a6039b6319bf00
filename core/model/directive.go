package model

import (
	"regexp"
)

// DirectiveKind identifies a formatting control comment.
type DirectiveKind int

const (
	// BeginOverride sets the layout of the statements that follow. An empty
	// style name ends a previous override.
	BeginOverride DirectiveKind = iota + 1
	// EndGroup closes the current alignment batch and starts a new one.
	EndGroup
)

// Directive is a parsed control comment.
type Directive struct {
	Kind  DirectiveKind
	Style Style
}

var (
	overrideDirective = regexp.MustCompile(`^\s*//\s*#OHFS#(\w*)#OHFS#\s*$`)
	groupDirective    = regexp.MustCompile(`^\s*//\s*#OHNG#\s*$`)
)

// ParseDirective recognizes the control comments
//
//	// #OHFS#Multiline#OHFS#
//	// #OHFS##OHFS#
//	// #OHNG#
//
// An unknown style name yields a BeginOverride with StyleInvalid, so the
// statements it governs are left untouched.
func ParseDirective(line string) (Directive, bool) {
	if m := overrideDirective.FindStringSubmatch(line); m != nil {
		style, err := ParseStyle(m[1])
		if err != nil {
			style = StyleInvalid
		}
		return Directive{Kind: BeginOverride, Style: style}, true
	}
	if groupDirective.MatchString(line) {
		return Directive{Kind: EndGroup}, true
	}
	return Directive{}, false
}
