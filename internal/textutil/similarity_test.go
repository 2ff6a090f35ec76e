package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	post := "Start before you feel ready. Nobody ever feels ready for the things that matter."
	tests := []struct {
		name string
		a, b *Fingerprint
		min  float64
		max  float64
	}{
		{"nil fingerprints", nil, NewFingerprint(post), 0, 0},
		{"identical posts", NewFingerprint(post), NewFingerprint(post), 1, 1},
		{"disjoint posts", NewFingerprint("morning routine checklist"), NewFingerprint("budget spreadsheet template"), 0, 0},
		{"partial overlap", NewFingerprint("start small every morning"), NewFingerprint("start big every evening"), 0.01, 0.99},
		{"zero norm", &Fingerprint{tokens: map[string]float64{}}, NewFingerprint(post), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got < tt.min-1e-9 || got > tt.max+1e-9 {
				t.Fatalf("CosineSimilarity = %v, want within [%v, %v]", got, tt.min, tt.max)
			}
			if back := CosineSimilarity(tt.b, tt.a); math.Abs(back-got) > 1e-12 {
				t.Fatalf("not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestCosineSimilarityDetectsReposts(t *testing.T) {
	original := NewFingerprint("[LPT] Write tomorrow's three priorities tonight so the morning starts with a plan.")
	repost := NewFingerprint("LPT: write tomorrow's three priorities tonight, so your morning starts with a plan!")
	other := NewFingerprint("Drink a glass of water before your first coffee of the day.")

	if got := CosineSimilarity(original, repost); got < 0.85 {
		t.Fatalf("repost similarity = %v, want >= 0.85", got)
	}
	if got := CosineSimilarity(original, other); got > 0.3 {
		t.Fatalf("unrelated similarity = %v, want <= 0.3", got)
	}
}

func TestNewFingerprint(t *testing.T) {
	if NewFingerprint("") != nil {
		t.Fatal("expected nil for empty text")
	}
	if NewFingerprint("a an it to") != nil {
		t.Fatal("expected nil when every token is shorter than three characters")
	}

	// "keep keep going" -> keep:2, going:1, norm sqrt(5)
	fp := NewFingerprint("keep keep going")
	if fp == nil {
		t.Fatal("expected fingerprint")
	}
	if math.Abs(fp.norm-math.Sqrt(5)) > 1e-9 {
		t.Fatalf("norm = %v, want %v", fp.norm, math.Sqrt(5))
	}
	if fp.TokenCount() != 2 {
		t.Fatalf("TokenCount = %d, want 2", fp.TokenCount())
	}
	var nilFP *Fingerprint
	if nilFP.TokenCount() != 0 {
		t.Fatal("nil fingerprint should have no tokens")
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("You've GOT this: 3 tiny steps, daily!")
	want := []string{"you", "got", "this", "tiny", "steps", "daily"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize = %v, want %v", got, want)
		}
	}
}
