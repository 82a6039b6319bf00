package format

import (
	"sort"

	"github.com/FocuswithJustin/ohfmt/core/errors"
	"github.com/FocuswithJustin/ohfmt/core/layout"
	"github.com/FocuswithJustin/ohfmt/core/model"
)

const defaultChannel = `{ channel="" }`

// templates are the item skeletons offered by the insert command.
var templates = map[string]map[model.FieldKind]string{
	"generic": {
		model.Type: "Type", model.Name: "Name", model.Label: `"Label [%s]"`,
		model.Icon: "<icon>", model.Group: "(group)", model.Tag: `["tag"]`, model.Channel: defaultChannel,
	},
	"switch": {
		model.Type: "Switch", model.Name: "_Switch", model.Label: `"Label [%s]"`,
		model.Icon: "<switch>", model.Group: "(group)", model.Tag: `["Switch"]`, model.Channel: defaultChannel,
	},
	"dimmer": {
		model.Type: "Dimmer", model.Name: "_Dimmer", model.Label: `"Label [%s]"`,
		model.Icon: "<dimmer>", model.Group: "(group)", model.Tag: `["Dimmer"]`, model.Channel: defaultChannel,
	},
	"string": {
		model.Type: "String", model.Name: "Name", model.Label: `"Label [%s]"`,
		model.Icon: "<text>", model.Group: "(group)", model.Tag: `["tag"]`, model.Channel: defaultChannel,
	},
	"number": {
		model.Type: "Number", model.Name: "Name", model.Label: `"Label [%.0f]"`,
		model.Icon: "<none>", model.Group: "(group)", model.Tag: `["tag"]`, model.Channel: defaultChannel,
	},
	"datetime": {
		model.Type: "DateTime", model.Name: "Name",
		model.Label: `"Label [%1$tA, %1$tm/%1$td/%1$tY %1$tl:%1$tM %1$tp]"`,
		model.Icon:  "<time>", model.Group: "(group)", model.Tag: `["tag"]`, model.Channel: defaultChannel,
	},
}

// Templates lists the names accepted by Template.
func Templates() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template renders the item skeleton called name with the configured style.
func Template(name string, opts Options) (string, error) {
	fields, ok := templates[name]
	if !ok {
		return "", errors.NewNotFound("template", name)
	}
	rec := model.NewRecord(model.ItemRecord, 0, 0)
	for kind, text := range fields {
		rec.Set(kind, text)
	}
	style := opts.Style
	if style == model.StyleDefault || style == model.StyleInvalid {
		style = model.StyleColumn
	}
	cfg := opts.layout()
	cfg.NewLineAfterItem = false
	return layout.Render(rec, nil, style, cfg), nil
}
