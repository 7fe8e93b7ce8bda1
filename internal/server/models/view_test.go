package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// The public content object must keep sections in display order even
// though it is keyed by slug.
func TestContentMap_PreservesSectionOrder(t *testing.T) {
	m := ContentMap{
		{ID: "1", Slug: "zeta", Title: "Zeta"},
		{ID: "2", Slug: "alpha", Title: "Alpha"},
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(data)
	if !strings.HasPrefix(body, `{"zeta":`) {
		t.Fatalf("first key must follow display order, got %s", body)
	}
	if strings.Index(body, `"zeta"`) > strings.Index(body, `"alpha":`) {
		t.Fatalf("slug keys out of order: %s", body)
	}

	var decoded map[string]SectionView
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 2 || decoded["alpha"].Title != "Alpha" {
		t.Fatalf("unexpected object: %+v", decoded)
	}
}

func TestContentMap_EmptyIsObject(t *testing.T) {
	data, err := json.Marshal(ContentMap(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("want {}, got %s", data)
	}
}
