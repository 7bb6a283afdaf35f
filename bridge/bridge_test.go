package bridge

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/hostbridge/script-value/hostobj"
	"github.com/hostbridge/script-value/variant"
)

func TestFromJSONScalars(t *testing.T) {
	tests := []struct {
		in    string
		check func(v variant.Value) bool
	}{
		{`42`, func(v variant.Value) bool { return variant.Is[int64](v) && variant.MustCast[int64](v) == 42 }},
		{`-7`, func(v variant.Value) bool { return variant.MustCast[int64](v) == -7 }},
		{`3.5`, func(v variant.Value) bool { return variant.Is[float64](v) && variant.MustCast[float64](v) == 3.5 }},
		{`true`, func(v variant.Value) bool { return variant.MustCast[bool](v) }},
		{`"text"`, func(v variant.Value) bool { return variant.MustCast[string](v) == "text" }},
		{`null`, func(v variant.Value) bool { return v.IsNull() }},
	}
	for _, tt := range tests {
		v, err := FromJSON([]byte(tt.in))
		if err != nil {
			t.Fatalf("FromJSON(%s): %v", tt.in, err)
		}
		if !tt.check(v) {
			t.Errorf("FromJSON(%s) = %s payload %v", tt.in, v.TypeName(), v.Interface())
		}
	}
}

func TestFromJSONLargeIntegerStaysExact(t *testing.T) {
	v, err := FromJSON([]byte(`9007199254740993`)) // 2^53 + 1
	if err != nil {
		t.Fatal(err)
	}
	got, err := variant.Cast[int64](v)
	if err != nil {
		t.Fatal(err)
	}
	if got != 9007199254740993 {
		t.Errorf("got %d", got)
	}
}

func TestFromJSONContainers(t *testing.T) {
	v, err := FromJSON([]byte(`{"items":[1,"2",3.9],"nested":{"ok":true},"none":null}`))
	if err != nil {
		t.Fatal(err)
	}
	m, err := variant.Cast[variant.Map](v)
	if err != nil {
		t.Fatal(err)
	}
	items, err := variant.Cast[variant.List](m["items"])
	if err != nil {
		t.Fatal(err)
	}
	got, err := variant.ListTo[int](items)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("items = %v", got)
	}
	nested, err := variant.Cast[variant.Map](m["nested"])
	if err != nil {
		t.Fatal(err)
	}
	if !variant.MustCast[bool](nested["ok"]) {
		t.Error("nested.ok lost")
	}
	if !m["none"].IsNull() {
		t.Error("null element lost")
	}
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	for _, in := range []string{``, `{`, `1 2`, `[1,]`} {
		if _, err := FromJSON([]byte(in)); err == nil {
			t.Errorf("FromJSON(%q) succeeded", in)
		}
	}
}

func TestToJSONRoundTrip(t *testing.T) {
	src := variant.New(variant.Map{
		"n":    variant.New(int64(7)),
		"f":    variant.New(2.5),
		"s":    variant.New("x"),
		"b":    variant.New(true),
		"null": variant.NewNull(),
		"list": variant.New(variant.NewList(int64(1), int64(2))),
	})
	data, err := ToJSON(src)
	if err != nil {
		t.Fatal(err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("re-decode %s: %v", data, err)
	}
	m, err := variant.Cast[variant.Map](back)
	if err != nil {
		t.Fatal(err)
	}
	if variant.MustCast[int64](m["n"]) != 7 || variant.MustCast[float64](m["f"]) != 2.5 {
		t.Errorf("numbers drifted: %s", data)
	}
	if !m["null"].IsNull() {
		t.Error("null drifted")
	}
	list, err := variant.Cast[variant.List](m["list"])
	if err != nil || len(list) != 2 {
		t.Errorf("list drifted: %s", data)
	}
}

func TestToJSONEncodesEmptyAsNull(t *testing.T) {
	data, err := ToJSON(variant.Value{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "null" {
		t.Errorf("got %s", data)
	}
}

func TestToJSONNarrowsWideStrings(t *testing.T) {
	data, err := ToJSON(variant.New(variant.WideString("héllo")))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"héllo"` {
		t.Errorf("got %s", data)
	}

	if _, err := ToJSON(variant.New(variant.WideString{0xD800})); err == nil {
		t.Error("malformed wide text encoded")
	}
}

func TestToJSONRefusesHandles(t *testing.T) {
	_, err := ToJSON(variant.New(hostobj.NewArray(1)))
	if err == nil {
		t.Fatal("handle payload encoded")
	}
	if !strings.Contains(err.Error(), "handle") {
		t.Errorf("error = %v", err)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	v, err := FromYAML([]byte("items:\n  - 1\n  - two\nratio: 0.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	m, err := variant.Cast[variant.Map](v)
	if err != nil {
		t.Fatal(err)
	}
	items, err := variant.Cast[variant.List](m["items"])
	if err != nil {
		t.Fatal(err)
	}
	if !variant.Is[int64](items[0]) {
		t.Errorf("yaml integer decoded as %s", items[0].TypeName())
	}
	if variant.MustCast[string](items[1]) != "two" {
		t.Error("yaml string lost")
	}
	if variant.MustCast[float64](m["ratio"]) != 0.5 {
		t.Error("yaml float lost")
	}

	out, err := ToYAML(v)
	if err != nil {
		t.Fatal(err)
	}
	back, err := FromYAML(out)
	if err != nil {
		t.Fatalf("re-decode %s: %v", out, err)
	}
	m2, err := variant.Cast[variant.Map](back)
	if err != nil {
		t.Fatal(err)
	}
	if variant.MustCast[float64](m2["ratio"]) != 0.5 {
		t.Errorf("round trip drifted: %s", out)
	}
}

func TestDecodedContainersFeedConversion(t *testing.T) {
	v, err := FromJSON([]byte(`["1","2","3"]`))
	if err != nil {
		t.Fatal(err)
	}
	l, err := variant.Cast[variant.List](v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := variant.ListTo[float64](l)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got[2]-3) > 0 {
		t.Errorf("got %v", got)
	}
}

func TestDecodedValueFlowsThroughHandles(t *testing.T) {
	v, err := FromJSON([]byte(`[[1,2],[3]]`))
	if err != nil {
		t.Fatal(err)
	}
	l, err := variant.Cast[variant.List](v)
	if err != nil {
		t.Fatal(err)
	}
	arr := hostobj.NewArray()
	for _, e := range l {
		if err := arr.Append(e); err != nil {
			t.Fatal(err)
		}
	}
	got, err := variant.ConvertSlice[[]int](context.Background(), variant.New(arr)).Await(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0][1] != 2 || got[1][0] != 3 {
		t.Errorf("got %v", got)
	}
}
