package universe

import "testing"

func TestSetClampsChannelAndValue(t *testing.T) {
	var f Frame
	f.Set(0, -5)
	if f.Get(1) != 0 {
		t.Fatalf("expected clamp to channel 1 value 0, got %d", f.Get(1))
	}

	f.Set(600, 999)
	if f.Get(512) != 255 {
		t.Fatalf("expected clamp to channel 512 value 255, got %d", f.Get(512))
	}
}

func TestSetAllPadsShortSlices(t *testing.T) {
	var f Frame
	f.SetAll([]int{10, 20, 300})
	if f.Get(1) != 10 || f.Get(2) != 20 || f.Get(3) != 255 {
		t.Fatalf("unexpected values: %d %d %d", f.Get(1), f.Get(2), f.Get(3))
	}
	if f.Get(4) != 0 {
		t.Fatalf("expected remaining slots zeroed, got %d", f.Get(4))
	}
}

func TestBlackoutZeroesEverySlot(t *testing.T) {
	var f Frame
	for c := 1; c <= Size; c++ {
		f.Set(c, 200)
	}
	f.Blackout()
	all := f.GetAll()
	for i, v := range all {
		if v != 0 {
			t.Fatalf("slot %d not zeroed: %d", i, v)
		}
	}
}

func TestGetAllLength(t *testing.T) {
	var f Frame
	if len(f.GetAll()) != Size {
		t.Fatalf("expected %d slots, got %d", Size, len(f.GetAll()))
	}
}
