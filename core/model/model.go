// Package model defines the records extracted from openHAB configuration files
// and the per-batch column width tables used to align them.
package model

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/ohfmt/core/errors"
)

// FieldKind identifies one recognized sub-part of a statement.
type FieldKind int

const (
	// Type is the item type keyword (Switch, Number:Temperature, ...) or Thing/Bridge.
	Type FieldKind = iota
	// Name is the item name, or the full UID for things and bridges.
	Name
	// Label is a double-quoted label.
	Label
	// Icon is an <icon> reference.
	Icon
	// Group is a parenthesized group list.
	Group
	// Tag is a bracketed list of quoted tags.
	Tag
	// Channel is the brace-delimited binding/metadata block of an item.
	Channel
	// Parameters is the bracket-delimited configuration block of a thing.
	Parameters
	// Comment is a trailing // comment.
	Comment
	// BindingId is the first segment of a thing UID.
	BindingId
	// TypeId is the second segment of a thing UID.
	TypeId
	// ThingId is the remaining segments of a thing UID.
	ThingId
	// Location is the @ "Location" part of a thing.
	Location

	numFieldKinds
)

var fieldKindNames = [...]string{
	Type:       "type",
	Name:       "name",
	Label:      "label",
	Icon:       "icon",
	Group:      "group",
	Tag:        "tag",
	Channel:    "channel",
	Parameters: "parameters",
	Comment:    "comment",
	BindingId:  "binding_id",
	TypeId:     "type_id",
	ThingId:    "thing_id",
	Location:   "location",
}

func (k FieldKind) String() string {
	if k < 0 || k >= numFieldKinds {
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
	return fieldKindNames[k]
}

// ItemColumns lists the aligned columns of an item statement in output order.
var ItemColumns = []FieldKind{Type, Name, Label, Icon, Group, Tag, Channel}

// ThingColumns lists the aligned columns of a thing statement in output order.
// Name holds the joined UID and Group the optional (bridge:uid) reference.
var ThingColumns = []FieldKind{Type, Name, Label, Group, Location, Parameters}

// Field is a matched piece of source text together with its kind.
// Text keeps its delimiters, e.g. "<icon>" or (gGroup).
type Field struct {
	Kind FieldKind
	Text string
}

// Empty reports whether the field was absent in the source.
func (f Field) Empty() bool {
	return f.Text == ""
}

// RecordKind distinguishes item statements from thing and bridge statements.
type RecordKind int

const (
	ItemRecord RecordKind = iota
	ThingRecord
	BridgeRecord
)

func (k RecordKind) String() string {
	switch k {
	case ItemRecord:
		return "item"
	case ThingRecord:
		return "thing"
	case BridgeRecord:
		return "bridge"
	default:
		return fmt.Sprintf("RecordKind(%d)", int(k))
	}
}

// Style selects how a record is laid out.
type Style int

const (
	// StyleDefault means "no override"; the configured style applies.
	StyleDefault Style = iota
	// StyleColumn pads every field to its column width with tabs.
	StyleColumn
	// StyleMultiline puts every field after the name on its own line.
	StyleMultiline
	// StyleChannelColumn is Column with the channel block wrapped per key.
	StyleChannelColumn
	// StyleInvalid is an unrecognized style name. Records carrying it are not rendered.
	StyleInvalid
)

func (s Style) String() string {
	switch s {
	case StyleDefault:
		return ""
	case StyleColumn:
		return "Column"
	case StyleMultiline:
		return "Multiline"
	case StyleChannelColumn:
		return "ChannelColumn"
	default:
		return "Invalid"
	}
}

// ParseStyle maps a style name to a Style. Matching ignores case.
// An empty name yields StyleDefault.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return StyleDefault, nil
	case "column":
		return StyleColumn, nil
	case "multiline":
		return StyleMultiline, nil
	case "channelcolumn":
		return StyleChannelColumn, nil
	}
	return StyleInvalid, fmt.Errorf("%w: %q", errors.ErrUnknownStyle, name)
}
