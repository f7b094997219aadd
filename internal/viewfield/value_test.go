package viewfield

import (
	"context"
	"slices"
	"testing"
)

func TestParseSelection(t *testing.T) {
	cases := []struct {
		in      string
		want    Value
		wantErr bool
	}{
		{"", Value{}, false},
		{"0", Value{}, false},
		{"user_admin_people|default", Value{ViewName: "user_admin_people", DisplayName: "default"}, false},
		{"content", Value{ViewName: "content", DisplayName: "default"}, false},
		{" content | block_1 ", Value{ViewName: "content", DisplayName: "block_1"}, false},
		{"|default", Value{}, true},
		{"content|", Value{}, true},
		{"a|b|c", Value{}, true},
	}
	for _, tc := range cases {
		got, err := ParseSelection(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseSelection(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if !tc.wantErr && !got.Equal(tc.want) {
			t.Fatalf("ParseSelection(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseAndFormatArguments(t *testing.T) {
	if got := ParseArguments(" 1 / 2,,3 "); !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Fatalf("ParseArguments = %v", got)
	}
	if got := ParseArguments(""); len(got) != 0 {
		t.Fatalf("expected no arguments, got %v", got)
	}
	if got := FormatArguments([]string{"article", " ", "7"}); got != "article/7" {
		t.Fatalf("FormatArguments = %q", got)
	}
}

func TestValueNormalizeAndString(t *testing.T) {
	v := Value{ViewName: " content ", Arguments: []string{"", "article"}}
	n := v.Normalize()
	if n.ViewName != "content" || n.DisplayName != DefaultDisplay || !slices.Equal(n.Arguments, []string{"article"}) {
		t.Fatalf("Normalize = %+v", n)
	}
	if got := v.String(); got != "content|default:article" {
		t.Fatalf("String = %q", got)
	}
	if got := (Value{}).String(); got != "(none)" {
		t.Fatalf("empty String = %q", got)
	}
	if (Value{}).Selection() != "" {
		t.Fatal("expected empty selection")
	}
	if v.Equal(Value{ViewName: "content"}) {
		t.Fatal("values with different arguments compared equal")
	}
}

func TestMemoryCatalog(t *testing.T) {
	ctx := context.Background()
	cat := NewMemoryCatalog(CatalogEntry{ViewName: "content", Displays: []string{"page_1", "default", "default"}})

	displays, found, err := cat.ListDisplays(ctx, "content")
	if err != nil || !found || !slices.Equal(displays, []string{"default", "page_1"}) {
		t.Fatalf("ListDisplays = %v %v %v", displays, found, err)
	}
	displays[0] = "mutated"
	if ok, _ := cat.Exists(ctx, "content", "default"); !ok {
		t.Fatal("ListDisplays leaked internal slice")
	}
	if ok, _ := cat.Exists(ctx, "content", "block_1"); ok {
		t.Fatal("unexpected display")
	}
	if ok, _ := cat.Exists(ctx, "missing", "default"); ok {
		t.Fatal("unexpected view")
	}
	cat.Remove("content")
	if _, found, _ := cat.ListDisplays(ctx, "content"); found {
		t.Fatal("expected view removed")
	}
}
