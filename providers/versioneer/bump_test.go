package versioneer

import (
	"errors"
	"fmt"
	"testing"
)

func TestVersion_Next(t *testing.T) {
	// Table test
	cases := []struct {
		Current string
		Intent  Bump
		Result  string
	}{
		// rc to rc
		{"7.31.0-rc.1", ToNextRCOfCurrent, "7.31.0-rc.2"},
		{"v7.31.0-rc.9", ToNextRCOfCurrent, "v7.31.0-rc.10"},
		// A devel tag denotes the upcoming version: same triple, rc 1
		{"7.32.0-devel", ToNextRCOfCurrent, "7.32.0-rc.1"},
		// Minor and patch bumps
		{"7.31.0", ToNextMinorRC, "7.32.0-rc.1"},
		{"7.31.0", ToNextPatchRC, "7.31.1-rc.1"},
		{"6.28", ToNextMinorRC, "6.29.0-rc.1"},
		{"6.28", ToNextPatchRC, "6.28.1-rc.1"},
		// Promotions to final
		{"7.32.0-devel", ToFinal, "7.32.0"},
		{"7.31.0-rc.3", ToFinal, "7.31.0"},
		{"7.31.0", ToFinal, "7.32.0"},
		{"7.31.2", ToFinal, "7.32.0"},
	}

	for _, tcase := range cases {
		caseName := fmt.Sprintf("%q->%s", tcase.Current, tcase.Intent)
		t.Run(caseName, func(t *testing.T) {
			current, err := NewVersion(tcase.Current)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			next, err := current.Next(tcase.Intent)
			if err != nil {
				t.Fatalf("unexpected error on bump: %v", err)
			}
			if next.String() != tcase.Result {
				t.Errorf("unexpected bump result, expected %q, got %q", tcase.Result, next)
			}
			// Bumping returns a new value, the source version must not move
			if current.String() != tcase.Current {
				t.Errorf("bump mutated the current version: %s", current)
			}
		})
	}
}

func TestVersion_Next_InvalidRequests(t *testing.T) {
	final, err := NewVersion("7.31.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An rc successor of a plain final version is undefined: the caller has
	// to decide between a minor and a patch bump.
	if _, err := final.Next(ToNextRCOfCurrent); !errors.Is(err, ErrInvalidBump) {
		t.Errorf("expected ErrInvalidBump on rc-of-current from a final version, got: %v", err)
	}

	if _, err := final.Next(Bump(42)); !errors.Is(err, ErrInvalidBump) {
		t.Errorf("expected ErrInvalidBump on unknown intent, got: %v", err)
	}
}

func TestNextRC(t *testing.T) {
	// Table test
	cases := []struct {
		Current   string
		PatchBump bool
		Result    string
	}{
		{"7.31.0-rc.1", false, "7.31.0-rc.2"},
		{"7.31.0-rc.1", true, "7.31.0-rc.2"},
		{"7.32.0-devel", false, "7.32.0-rc.1"},
		// A patch bump on a devel tag cuts a patch off the devel triple, it
		// does not start the devel version's own rc train
		{"7.32.0-devel", true, "7.32.1-rc.1"},
		{"7.31.0", true, "7.31.1-rc.1"},
		{"7.31.0", false, "7.32.0-rc.1"},
	}

	for _, tcase := range cases {
		caseName := fmt.Sprintf("%q(patch=%t)", tcase.Current, tcase.PatchBump)
		t.Run(caseName, func(t *testing.T) {
			current, err := NewVersion(tcase.Current)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			next, err := NextRC(current, tcase.PatchBump)
			if err != nil {
				t.Fatalf("unexpected error on next rc: %v", err)
			}
			if next.String() != tcase.Result {
				t.Errorf("unexpected next rc, expected %q, got %q", tcase.Result, next)
			}
		})
	}
}

func TestNextFinal(t *testing.T) {
	// Table test
	cases := []struct {
		Current string
		Result  string
	}{
		{"7.32.0-devel", "7.32.0"},
		{"7.31.0-rc.2", "7.31.0"},
		{"7.31.0", "7.32.0"},
	}

	for _, tcase := range cases {
		t.Run(tcase.Current, func(t *testing.T) {
			current, err := NewVersion(tcase.Current)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			next, err := NextFinal(current)
			if err != nil {
				t.Fatalf("unexpected error on next final: %v", err)
			}
			if next.String() != tcase.Result {
				t.Errorf("unexpected next final, expected %q, got %q", tcase.Result, next)
			}
		})
	}
}
