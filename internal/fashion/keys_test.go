package fashion

import (
	"testing"
	"time"
)

func TestNewSessionIDFormat(t *testing.T) {
	now := time.UnixMilli(1717171717171)
	got := NewSessionID("user_2abc", now)
	want := "user_2abc-1717171717171"
	if got != want {
		t.Fatalf("NewSessionID: want=%q got=%q", want, got)
	}
}

func TestSessionOwnedBy(t *testing.T) {
	cases := []struct {
		sessionID string
		userID    string
		want      bool
	}{
		{"user_2abc-1717171717171", "user_2abc", true},
		{"user_2abc-1717171717171", "user_2xyz", false},
		{"user_2abc-1717171717171", "", false},
		{"", "user_2abc", false},
	}
	for _, tc := range cases {
		if got := SessionOwnedBy(tc.sessionID, tc.userID); got != tc.want {
			t.Fatalf("SessionOwnedBy(%q, %q): want=%v got=%v", tc.sessionID, tc.userID, tc.want, got)
		}
	}
}

func TestBlobKeys(t *testing.T) {
	if got := UploadKey("u-1"); got != "fashion-uploads/u-1.jpg" {
		t.Fatalf("UploadKey: got=%q", got)
	}
	if got := ResultsKey("u", "u-1"); got != "fashion-results/u/u-1.json" {
		t.Fatalf("ResultsKey: got=%q", got)
	}
	if got := VisualizationKey("u-1", 0); got != "fashion-visualizations/u-1/outfit-1.jpg" {
		t.Fatalf("VisualizationKey: got=%q", got)
	}
	if got := VisualizationKey("u-1", 2); got != "fashion-visualizations/u-1/outfit-3.jpg" {
		t.Fatalf("VisualizationKey index 2: got=%q", got)
	}
	if got := FavoritesKey("u"); got != "fashion-favorites/u/favorites.json" {
		t.Fatalf("FavoritesKey: got=%q", got)
	}
}

func TestSessionIDFromResultsKey(t *testing.T) {
	key := ResultsKey("user_2abc", "user_2abc-1717171717171")
	got := SessionIDFromResultsKey(key, "user_2abc")
	if got != "user_2abc-1717171717171" {
		t.Fatalf("SessionIDFromResultsKey: got=%q", got)
	}
}
