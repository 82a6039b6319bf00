package scanner

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/ohfmt/core/model"
)

var defaultOpts = Options{PreserveWhitespace: true, TabSize: 4}

func split(doc string) []string {
	return strings.Split(doc, "\n")
}

func TestScanWidths(t *testing.T) {
	res := Items(split("Switch A\nNumber BB \"Label\""), defaultOpts, nil)
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(res.Records))
	}
	w := res.Records[0].Widths
	if got := w.Get(model.Name); got != 2 {
		t.Errorf("Name width = %d, want 2", got)
	}
	if got := w.Get(model.Label); got != len(`"Label"`) {
		t.Errorf("Label width = %d, want %d", got, len(`"Label"`))
	}
	if got := w.Get(model.Type); got != len("Number") {
		t.Errorf("Type width = %d, want 6", got)
	}
	if res.Records[0].Has(model.Label) {
		t.Error("first record has a label")
	}
	if len(res.Batches) != 1 {
		t.Errorf("got %d batches, want 1", len(res.Batches))
	}
}

func TestScanFullStatement(t *testing.T) {
	line := `Switch  Light_Kitchen  "Kitchen Light"  <light>  (gLights)  ["Lighting"]  { channel="hue:0210:1:2" } // lamp`
	res := Items([]string{line}, defaultOpts, nil)
	if len(res.Records) != 1 {
		t.Fatalf("got %d records", len(res.Records))
	}
	r := res.Records[0]
	want := map[model.FieldKind]string{
		model.Type:    "Switch",
		model.Name:    "Light_Kitchen",
		model.Label:   `"Kitchen Light"`,
		model.Icon:    "<light>",
		model.Group:   "(gLights)",
		model.Tag:     `["Lighting"]`,
		model.Channel: `{channel="hue:0210:1:2"}`,
		model.Comment: "// lamp",
	}
	for kind, text := range want {
		if got := r.Get(kind); got != text {
			t.Errorf("%v = %q, want %q", kind, got, text)
		}
	}
	if r.Tainted {
		t.Error("record tainted")
	}
	if r.Span != (model.Span{End: model.Position{Line: 0, Col: len(line)}}) {
		t.Errorf("span = %+v", r.Span)
	}
}

func TestScanChannelContinuation(t *testing.T) {
	doc := "Switch S \"S\" { channel=\"a:b:c\",\n" +
		"            autoupdate=\"false\",\n" +
		"            expire=\"1m\" }\n" +
		"Switch T"
	res := Items(split(doc), defaultOpts, nil)
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(res.Records))
	}
	r := res.Records[0]
	if got, want := r.Get(model.Channel), `{channel="a:b:c",autoupdate="false",expire="1m"}`; got != want {
		t.Errorf("channel = %q, want %q", got, want)
	}
	if r.Span.End.Line != 2 || r.Span.End.Col != len(`            expire="1m" }`) {
		t.Errorf("span end = %+v", r.Span.End)
	}
	if r.Tainted {
		t.Error("record tainted")
	}
	if got := r.Widths.Get(model.Channel); got != len(r.Get(model.Channel)) {
		t.Errorf("channel width = %d, want %d", got, len(r.Get(model.Channel)))
	}
}

func TestScanUnclosedChannel(t *testing.T) {
	t.Run("end of document", func(t *testing.T) {
		res := Items(split("Switch S { channel=\"a\",\n  expire=\"1m\""), defaultOpts, nil)
		if len(res.Records) != 1 {
			t.Fatalf("got %d records", len(res.Records))
		}
		if got := res.Records[0].Get(model.Channel); got != `{channel="a",expire="1m"` {
			t.Errorf("channel = %q", got)
		}
	})
	t.Run("interrupted by statement", func(t *testing.T) {
		res := Items(split("Switch S { channel=\"a\",\nSwitch T"), defaultOpts, nil)
		if len(res.Records) != 2 || res.Records[1].Get(model.Name) != "T" {
			t.Fatalf("records = %d", len(res.Records))
		}
	})
}

func TestScanComments(t *testing.T) {
	doc := strings.Join([]string{
		"/* header",
		"Switch Hidden",
		"*/",
		"// Switch Commented",
		"/* one line */",
		"Switch Visible",
	}, "\n")
	res := Items(split(doc), defaultOpts, nil)
	if len(res.Records) != 1 || res.Records[0].Get(model.Name) != "Visible" {
		t.Fatalf("unexpected records %v", names(res))
	}
	if res.Records[0].Span.Start.Line != 5 {
		t.Errorf("start line = %d", res.Records[0].Span.Start.Line)
	}
}

func TestScanDirectives(t *testing.T) {
	doc := strings.Join([]string{
		"Switch LongerName",
		"// #OHFS#Multiline#OHFS#",
		"Switch B",
		"// #OHNG#",
		"Switch C",
		"// #OHFS##OHFS#",
		"Switch D",
		"// #OHFS#Bogus#OHFS#",
		"Switch E",
	}, "\n")
	res := Items(split(doc), defaultOpts, nil)
	if len(res.Records) != 5 {
		t.Fatalf("got %v", names(res))
	}
	wantOverride := []model.Style{model.StyleDefault, model.StyleMultiline, model.StyleMultiline, model.StyleDefault, model.StyleInvalid}
	for i, r := range res.Records {
		if r.Override != wantOverride[i] {
			t.Errorf("record %d override = %v, want %v", i, r.Override, wantOverride[i])
		}
	}
	if len(res.Batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(res.Batches))
	}
	if got := res.Records[1].Widths.Get(model.Name); got != len("LongerName") {
		t.Errorf("first batch name width = %d", got)
	}
	if got := res.Records[2].Widths.Get(model.Name); got != 1 {
		t.Errorf("second batch name width = %d, want 1", got)
	}
}

func TestScanDroppedAndTainted(t *testing.T) {
	doc := strings.Join([]string{
		"Switch",
		"Switch A <icon> \"Label after icon\"",
		"Switch B \"B\" \"B again\"",
		"Switch C garbage",
	}, "\n")
	res := Items(split(doc), defaultOpts, nil)
	if got := names(res); strings.Join(got, ",") != "A,B,C" {
		t.Fatalf("names = %v", got)
	}
	for _, r := range res.Records {
		if !r.Tainted {
			t.Errorf("%s not tainted", r.Get(model.Name))
		}
	}
}

func TestScanMultilineContinuation(t *testing.T) {
	doc := strings.Join([]string{
		"Switch\tA",
		"\t\t\t\"Label\"",
		"\t\t\t<icon>",
		"\t\t\t{channel=\"x\"} // c",
		"Dimmer B",
	}, "\n")
	res := Items(split(doc), defaultOpts, nil)
	if len(res.Records) != 2 {
		t.Fatalf("got %v", names(res))
	}
	a := res.Records[0]
	if a.Get(model.Label) != `"Label"` || a.Get(model.Icon) != "<icon>" || a.Get(model.Channel) != `{channel="x"}` || a.Get(model.Comment) != "// c" {
		t.Errorf("fields = %v", a.Fields)
	}
	if a.Span.End.Line != 3 || a.Tainted {
		t.Errorf("span = %+v tainted = %v", a.Span, a.Tainted)
	}
}

func TestScanUnknownContinuationEndsRecord(t *testing.T) {
	res := Items(split("Switch A\nrule \"x\"\n\"Label\""), defaultOpts, nil)
	if len(res.Records) != 1 {
		t.Fatalf("got %v", names(res))
	}
	if res.Records[0].Has(model.Label) || res.Records[0].Span.End.Line != 0 {
		t.Errorf("record absorbed lines after an unknown line: %+v", res.Records[0])
	}
}

func TestScanIndent(t *testing.T) {
	tests := []struct {
		line     string
		preserve bool
		want     int
	}{
		{"Switch A", true, 0},
		{"\tSwitch A", true, 1},
		{"\t\tSwitch A", true, 2},
		{"    Switch A", true, 1},
		{"      Switch A", true, 2},
		{"\t  Switch A", true, 2},
		{"\t\tSwitch A", false, 0},
	}
	for _, tt := range tests {
		opts := defaultOpts
		opts.PreserveWhitespace = tt.preserve
		res := Items([]string{tt.line}, opts, nil)
		if len(res.Records) != 1 {
			t.Fatalf("%q: no record", tt.line)
		}
		if got := res.Records[0].Indent; got != tt.want {
			t.Errorf("indent(%q, preserve=%v) = %d, want %d", tt.line, tt.preserve, got, tt.want)
		}
	}
}

func TestScanNewLineAfterItem(t *testing.T) {
	opts := defaultOpts
	opts.NewLineAfterItem = true
	res := Items(split("Switch A\n\nSwitch B\nSwitch C"), opts, nil)
	if len(res.Records) != 3 {
		t.Fatalf("got %v", names(res))
	}
	if end := res.Records[0].Span.End; end.Line != 1 || end.Col != 0 {
		t.Errorf("A ends at %+v, want the blank line", end)
	}
	if end := res.Records[1].Span.End; end.Line != 2 {
		t.Errorf("B ends at %+v", end)
	}
}

func TestScanRange(t *testing.T) {
	doc := split("Switch VeryLongName\nSwitch A\nSwitch B\nSwitch AnotherLongName")
	res := Items(doc, defaultOpts, &LineRange{First: 1, Last: 2})
	if got := strings.Join(names(res), ","); got != "A,B" {
		t.Fatalf("names = %s", got)
	}
	if got := res.Records[0].Widths.Get(model.Name); got != 1 {
		t.Errorf("range width = %d, want 1", got)
	}
	if r := (LineRange{First: 1, Last: 2}); !r.Contains(2) || r.Contains(3) {
		t.Error("Contains is wrong")
	}

	res = Items(doc, defaultOpts, &LineRange{First: -5, Last: 99})
	if len(res.Records) != 4 {
		t.Errorf("clamped range found %d records", len(res.Records))
	}
}

func TestScanThings(t *testing.T) {
	doc := strings.Join([]string{
		`Bridge hue:bridge:home "Hue Bridge" @ "Hall" [ ipAddress="192.168.0.2" ] {`,
		`    Thing 0210 bulb1 "Bulb" [ lightId="1" ]`,
		`}`,
		`Thing mqtt:topic:broker:sensor "Sensor" (mqtt:broker:broker) [`,
		`    stateTopic="a/b",`,
		`    qos=1 ] // sensor`,
		`Thing astro`,
	}, "\n")
	res := Things(split(doc), defaultOpts, nil)
	if len(res.Records) != 2 {
		t.Fatalf("got %v", names(res))
	}

	bridge := res.Records[0]
	if bridge.Kind != model.BridgeRecord || bridge.Trailer != "{" || bridge.Tainted {
		t.Errorf("bridge = %+v", bridge)
	}
	if bridge.Get(model.Location) != `@ "Hall"` || bridge.Get(model.BindingId) != "hue" || bridge.Get(model.ThingId) != "home" {
		t.Errorf("bridge fields = %v", bridge.Fields)
	}
	if bridge.Span.End.Line != 0 {
		t.Errorf("bridge span absorbed the nested thing: %+v", bridge.Span)
	}

	thing := res.Records[1]
	if thing.Kind != model.ThingRecord || thing.Get(model.ThingId) != "broker:sensor" {
		t.Errorf("thing = %v", thing.Fields)
	}
	if got, want := thing.Get(model.Parameters), `[stateTopic="a/b",qos=1]`; got != want {
		t.Errorf("parameters = %q, want %q", got, want)
	}
	if thing.Get(model.Comment) != "// sensor" || thing.Span.End.Line != 5 {
		t.Errorf("comment = %q span = %+v", thing.Get(model.Comment), thing.Span)
	}
	if got := thing.Widths.Get(model.Name); got != len("mqtt:topic:broker:sensor") {
		t.Errorf("uid width = %d", got)
	}
}

func names(res Result) []string {
	var out []string
	for _, r := range res.Records {
		out = append(out, r.Get(model.Name))
	}
	return out
}
