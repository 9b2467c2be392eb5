package model

import (
	"image"
	"testing"
)

func testRecords() []*FeedRecord {
	return []*FeedRecord{
		{ID: "a", Name: "Alpha", ImageRef: "https://example.com/a.png", Position: 1},
		{ID: "b", Name: "Beta", ImageRef: "https://example.com/b.png", Position: 2},
		{ID: "c", Name: "Gamma", ImageRef: "https://example.com/c.png", Position: 3},
	}
}

func TestStore_ReplaceKeepsFeedOrder(t *testing.T) {
	store := NewStore()
	if store.Loaded() {
		t.Error("Expected empty store to report not loaded")
	}

	store.Replace(testRecords())

	if !store.Loaded() {
		t.Error("Expected store to report loaded after Replace")
	}
	keys := store.Keys()
	expected := []RowKey{"a", "b", "c"}
	if len(keys) != len(expected) {
		t.Fatalf("Expected %d keys, got %d", len(expected), len(keys))
	}
	for i := range expected {
		if keys[i] != expected[i] {
			t.Errorf("Key %d = %s, expected %s", i, keys[i], expected[i])
		}
	}
}

func TestStore_ReplaceSkipsEmptyAndDuplicateIDs(t *testing.T) {
	store := NewStore()
	store.Replace([]*FeedRecord{
		{ID: "a", Name: "first"},
		{ID: ""},
		nil,
		{ID: "a", Name: "second"},
		{ID: "b"},
	})

	if store.Len() != 2 {
		t.Fatalf("Expected 2 records, got %d", store.Len())
	}
	rec, ok := store.Get("a")
	if !ok || rec.Name != "first" {
		t.Errorf("Expected first occurrence of duplicate to win, got %+v", rec)
	}
	if i, _ := store.IndexOf("b"); i != 1 {
		t.Errorf("Expected b at index 1, got %d", i)
	}
}

func TestStore_SetIconOnlyOnce(t *testing.T) {
	store := NewStore()
	store.Replace(testRecords())

	first := image.NewRGBA(image.Rect(0, 0, 48, 48))
	second := image.NewRGBA(image.Rect(0, 0, 48, 48))

	if !store.SetIcon("a", first) {
		t.Fatal("Expected first SetIcon to succeed")
	}
	if store.SetIcon("a", second) {
		t.Error("Expected second SetIcon to be rejected")
	}
	if store.Icon("a") != first {
		t.Error("Expected icon to stay the first image")
	}
	if !store.HasIcon("a") || store.HasIcon("b") {
		t.Error("HasIcon mismatch after SetIcon")
	}
	if store.SetIcon("missing", first) {
		t.Error("Expected SetIcon on unknown key to fail")
	}
	if store.SetIcon("b", nil) {
		t.Error("Expected SetIcon with nil image to fail")
	}
}

func TestStore_ReplaceDropsIcons(t *testing.T) {
	store := NewStore()
	store.Replace(testRecords())
	store.SetIcon("a", image.NewRGBA(image.Rect(0, 0, 1, 1)))

	store.Replace(testRecords())

	if store.HasIcon("a") {
		t.Error("Expected fresh snapshot records to start without icons")
	}
}

func TestStore_KeysInRange(t *testing.T) {
	store := NewStore()
	store.Replace(testRecords())

	tests := []struct {
		first, last int
		expected    []RowKey
	}{
		{0, 1, []RowKey{"a", "b"}},
		{1, 10, []RowKey{"b", "c"}},
		{-3, 0, []RowKey{"a"}},
		{5, 9, nil},
		{2, 1, nil},
	}

	for _, test := range tests {
		keys := store.KeysInRange(test.first, test.last)
		if len(keys) != len(test.expected) {
			t.Errorf("KeysInRange(%d, %d) = %v, expected %v", test.first, test.last, keys, test.expected)
			continue
		}
		for i := range keys {
			if keys[i] != test.expected[i] {
				t.Errorf("KeysInRange(%d, %d) = %v, expected %v", test.first, test.last, keys, test.expected)
				break
			}
		}
	}
}

func TestStore_AtBounds(t *testing.T) {
	store := NewStore()
	store.Replace(testRecords())

	if _, ok := store.At(-1); ok {
		t.Error("Expected At(-1) to fail")
	}
	if _, ok := store.At(3); ok {
		t.Error("Expected At(3) to fail")
	}
	if rec, ok := store.At(2); !ok || rec.ID != "c" {
		t.Errorf("Expected At(2) to return c, got %+v", rec)
	}
}

func TestStore_Reset(t *testing.T) {
	store := NewStore()
	store.Replace(testRecords())
	store.Reset()

	if store.Loaded() || store.Len() != 0 {
		t.Error("Expected store to be empty and not loaded after Reset")
	}
	if _, ok := store.Get("a"); ok {
		t.Error("Expected keys to be forgotten after Reset")
	}
}
