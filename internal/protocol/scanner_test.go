package protocol

import "testing"

func feed(w *Window, bytes []byte) {
	for _, b := range bytes {
		w.Shift(b)
	}
}

func TestWindowMatchesMarker(t *testing.T) {
	var w Window
	feed(&w, []byte("META"))
	if !w.Is(MarkerMeta) {
		t.Error("window did not match META after feeding its 4 bytes")
	}
	if w.Is(MarkerInfr) {
		t.Error("window matched INFR while holding META")
	}
}

func TestWindowAlignmentIndependent(t *testing.T) {
	tests := []struct {
		name   string
		stream string
	}{
		{"garbage prefix", "\x00\x7fMETA"},
		{"single garbage byte", "xMETA"},
		{"partial marker prefix", "METMETA"},
		{"marker split across noise", "ME\xffMETA"},
		{"boot log noise", "[DBG] boot\r\nMETA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w Window
			matched := false
			for _, b := range []byte(tt.stream) {
				w.Shift(b)
				if w.Is(MarkerMeta) {
					matched = true
				}
			}
			if !matched {
				t.Errorf("marker never recognized in %q", tt.stream)
			}
		})
	}
}

func TestWindowNoMatchBeforeFourBytes(t *testing.T) {
	var w Window
	feed(&w, []byte("MET"))
	if w.Is(MarkerMeta) {
		t.Error("window matched with only 3 bytes shifted")
	}
}

func TestWindowNoFalseMatch(t *testing.T) {
	var w Window
	feed(&w, []byte("METAINFR...PREDINFO"))
	if w.Is(MarkerMeta) || w.Is(MarkerInfr) || w.Is(MarkerPred) {
		t.Error("stale marker still matching after later bytes")
	}
	if !w.Is(MarkerInfo) {
		t.Error("most recent 4 bytes should match INFO")
	}
}

func TestWindowReset(t *testing.T) {
	var w Window
	feed(&w, []byte("META"))
	w.Reset()
	if w.Is(MarkerMeta) {
		t.Error("window still matches after Reset")
	}
	feed(&w, []byte("META"))
	if !w.Is(MarkerMeta) {
		t.Error("window unusable after Reset")
	}
}
