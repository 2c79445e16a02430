package agent

import (
	"reflect"
	"testing"
)

func testFlagNames() []string {
	return []string{"finish", "go_next", "plan_action", "reply_message", "na"}
}

func TestFlagsSetAndLatest(t *testing.T) {
	f := NewFlags(testFlagNames())

	if f.Latest() != nil {
		t.Error("fresh flags should have no snapshot")
	}

	f.Set("go_next")
	want := map[string]bool{
		"finish":        false,
		"go_next":       true,
		"plan_action":   false,
		"reply_message": false,
		"na":            false,
	}
	if got := f.Latest(); !reflect.DeepEqual(got, want) {
		t.Errorf("Latest = %v, want %v", got, want)
	}
}

func TestFlagsExactlyOneTrue(t *testing.T) {
	f := NewFlags(testFlagNames())

	for _, name := range testFlagNames() {
		f.Set(name)
		snapshot := f.Latest()
		trueCount := 0
		for _, v := range snapshot {
			if v {
				trueCount++
			}
		}
		if trueCount != 1 || !snapshot[name] {
			t.Errorf("Set(%q) snapshot = %v, want exactly %q true", name, snapshot, name)
		}
	}
}

func TestFlagsUnknownNameAllFalse(t *testing.T) {
	f := NewFlags(testFlagNames())
	f.Set("no_such_flag")

	for name, v := range f.Latest() {
		if v {
			t.Errorf("flag %q true after setting an unknown name", name)
		}
	}
}

func TestFlagsHistory(t *testing.T) {
	f := NewFlags(testFlagNames())
	f.Set("plan_action")
	f.Set("reply_message")
	f.Set("na")

	if f.HistoryLen() != 3 {
		t.Fatalf("HistoryLen = %d, want 3", f.HistoryLen())
	}
	if !f.At(1)["na"] {
		t.Error("At(1) should be the na snapshot")
	}
	if !f.At(2)["reply_message"] {
		t.Error("At(2) should be the reply_message snapshot")
	}
	if !f.At(3)["plan_action"] {
		t.Error("At(3) should be the plan_action snapshot")
	}
	if f.At(4) != nil {
		t.Error("At past the history start should be nil")
	}
	if f.At(0) != nil {
		t.Error("At(0) should be nil")
	}
}
