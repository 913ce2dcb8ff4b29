package keys

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		want Code
		ok   bool
	}{
		{"0", Key0, true},
		{"9", Key9, true},
		{"menu", KeyMenu, true},
		{" MENU ", KeyMenu, true},
		{"side1", KeySide1, true},
		{"ptt", KeyPTT, true},
		{"", KeyInvalid, false},
		{"10", KeyInvalid, false},
		{"bogus", KeyInvalid, false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.name)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Parse(%q) = %v, %v; want %v, %v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestValid(t *testing.T) {
	if !Key0.Valid() || !KeySide1.Valid() {
		t.Fatal("keypad codes must be valid")
	}
	if KeyInvalid.Valid() || Code(200).Valid() {
		t.Fatal("sentinel and out-of-range codes must be invalid")
	}
}

func TestWireValuesAreFixed(t *testing.T) {
	// These values come from the keyboard driver scan table and must never
	// shift; the host encodes them verbatim.
	fixed := map[Code]uint8{
		Key0: 0, Key9: 9,
		KeyMenu: 10, KeyUp: 11, KeyDown: 12, KeyExit: 13,
		KeyStar: 14, KeyF: 15, KeyPTT: 16, KeySide2: 17, KeySide1: 18,
		KeyInvalid: 19,
	}
	for code, want := range fixed {
		if uint8(code) != want {
			t.Errorf("%v = %d, want %d", code, uint8(code), want)
		}
	}
}
