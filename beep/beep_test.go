package beep

import "testing"

func TestSamples(t *testing.T) {
	tests := []struct {
		sound Sound
		want  int
	}{
		{Start, int(sampleRate * startDuration)},
		{Stop, int(sampleRate * stopDuration)},
		{Cancel, 2*int(sampleRate*0.08) + int(sampleRate*gapDuration)},
	}
	for _, tt := range tests {
		got := Samples(tt.sound)
		if len(got) != tt.want {
			t.Errorf("sound %d: %d samples, want %d", tt.sound, len(got), tt.want)
		}
	}
}

func TestCancelHasGap(t *testing.T) {
	s := Samples(Cancel)
	tick := int(sampleRate * 0.08)
	for i := tick; i < tick+int(sampleRate*gapDuration); i++ {
		if s[i] != 0 {
			t.Fatalf("sample %d in gap = %d", i, s[i])
		}
	}
}

func TestTickDecays(t *testing.T) {
	s := generateTick(1000, 0.1, 0.5, 40)
	peak := func(lo, hi int) int16 {
		var p int16
		for _, v := range s[lo:hi] {
			if v < 0 {
				v = -v
			}
			p = max(p, v)
		}
		return p
	}
	head, tail := peak(0, 500), peak(len(s)-500, len(s))
	if head <= tail {
		t.Errorf("head peak %d <= tail peak %d", head, tail)
	}
	if head > 32767/2+1 {
		t.Errorf("head peak %d exceeds volume", head)
	}
}
