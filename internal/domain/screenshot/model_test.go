package screenshot

import (
	"errors"
	"testing"
)

func TestValidateDay(t *testing.T) {
	t.Parallel()

	for _, day := range []int{1, 2, 3} {
		if err := ValidateDay(day); err != nil {
			t.Fatalf("day %d should be valid: %v", day, err)
		}
	}
	for _, day := range []int{-1, 0, 4, 10} {
		if err := ValidateDay(day); !errors.Is(err, ErrInvalidDay) {
			t.Fatalf("day %d: expected ErrInvalidDay, got %v", day, err)
		}
	}
}

func TestScreenshotValidate(t *testing.T) {
	t.Parallel()

	zero := 0
	valid := Screenshot{ID: "s1", TeamID: "t1", PlayerID: "p1", Day: 2, ImageKey: "screenshots/t1/2/s1.png"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid screenshot: %v", err)
	}

	badPlacement := valid
	badPlacement.Placement = &zero
	if err := badPlacement.Validate(); err == nil {
		t.Fatalf("expected placement 0 to be rejected")
	}

	badDay := valid
	badDay.Day = 4
	if err := badDay.Validate(); !errors.Is(err, ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestRemainingSlots(t *testing.T) {
	t.Parallel()

	cases := map[int]int{0: 12, 5: 7, 11: 1, 12: 0, 15: 0}
	for count, want := range cases {
		if got := RemainingSlots(count); got != want {
			t.Fatalf("RemainingSlots(%d)=%d want %d", count, got, want)
		}
	}
}

func TestGroup(t *testing.T) {
	t.Parallel()

	items := []Screenshot{
		{ID: "1", TeamID: "b", Day: 3},
		{ID: "2", TeamID: "a", Day: 1},
		{ID: "3", TeamID: "b", Day: 1},
		{ID: "4", TeamID: "b", Day: 3},
	}

	groups := Group(items)
	if len(groups) != 2 || groups[0].TeamID != "b" || groups[1].TeamID != "a" {
		t.Fatalf("unexpected team order: %+v", groups)
	}
	b := groups[0]
	if len(b.Days) != 2 || b.Days[0].Day != 1 || b.Days[1].Day != 3 {
		t.Fatalf("unexpected day grouping: %+v", b.Days)
	}
	if len(b.Days[1].Screenshots) != 2 || b.Days[1].Screenshots[0].ID != "1" {
		t.Fatalf("expected day 3 to keep input order: %+v", b.Days[1].Screenshots)
	}
}
