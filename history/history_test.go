package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T, limit int) *Store {
	t.Helper()
	s, err := Open(":memory:", limit)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLast(t *testing.T) {
	s := openTest(t, 10)
	ctx := context.Background()

	if _, ok, err := s.Last(ctx); err != nil || ok {
		t.Fatalf("empty Last: ok=%v err=%v", ok, err)
	}

	saved, err := s.Save(ctx, Entry{Session: "ab12cd34", Binding: "transcribe", Text: "hello world", Audio: 1500 * time.Millisecond, Took: 420 * time.Millisecond})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Errorf("saved entry not filled in: %+v", saved)
	}

	last, ok, err := s.Last(ctx)
	if err != nil || !ok {
		t.Fatalf("Last: ok=%v err=%v", ok, err)
	}
	if last.ID != saved.ID || last.Text != "hello world" || last.Session != "ab12cd34" {
		t.Errorf("last = %+v", last)
	}
	if last.Audio != 1500*time.Millisecond || last.Took != 420*time.Millisecond {
		t.Errorf("durations = %v %v", last.Audio, last.Took)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	s := openTest(t, 0)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := s.Save(ctx, Entry{Text: fmt.Sprintf("t%d", i), CreatedAt: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"t4", "t3", "t2"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries", len(got))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i].Text, want[i])
		}
	}
}

func TestLimitTrimsOldest(t *testing.T) {
	s := openTest(t, 3)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		if _, err := s.Save(ctx, Entry{Text: fmt.Sprintf("t%d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Recent(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Text != "t5" || got[2].Text != "t3" {
		t.Errorf("entries = %+v", got)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.sqlite")
	s, err := Open(path, 5)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if _, err := s.Save(ctx, Entry{Text: "persisted"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path, 5)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	last, ok, err := s.Last(ctx)
	if err != nil || !ok || last.Text != "persisted" {
		t.Errorf("after reopen: %+v ok=%v err=%v", last, ok, err)
	}
}
