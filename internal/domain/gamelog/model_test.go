package gamelog

import (
	"testing"
	"time"
)

func TestNew_HitDerivation(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)

	over := New(1, 2, 3, 4, "points", 25.5, 31, date, "2026")
	if !over.Hit {
		t.Fatal("value above the line must count as a hit")
	}

	// A value exactly on the line counts as a hit.
	push := New(1, 2, 3, 4, "points", 25, 25, date, "2026")
	if !push.Hit {
		t.Fatal("value on the line must count as a hit")
	}

	under := New(1, 2, 3, 4, "points", 25.5, 25, date, "2026")
	if under.Hit {
		t.Fatal("value below the line must not count as a hit")
	}
}

func TestLog_Validate(t *testing.T) {
	t.Parallel()

	valid := New(1, 2, 3, 4, "points", 25.5, 31, time.Now(), "2026")
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	missingPlayer := valid
	missingPlayer.PlayerID = 0
	if err := missingPlayer.Validate(); err == nil {
		t.Fatal("expected error for missing player id")
	}

	missingProp := valid
	missingProp.PropType = ""
	if err := missingProp.Validate(); err == nil {
		t.Fatal("expected error for missing prop type")
	}
}
