package domain_test

import (
	"errors"
	"testing"

	"courseplay/internal/modules/playback/domain"
	apperrors "courseplay/internal/platform/errors"
)

func TestParseLocation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw, course, video string
	}{
		{"courseplay://course/c-1?video=v2", "c-1", "v2"},
		{"https://learn.example.com/app/courses/c-7?video=v9&tab=notes", "c-7", "v9"},
		{"c-3", "c-3", ""},
	}
	for _, tc := range cases {
		loc, err := domain.ParseLocation(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if loc.CourseID() != tc.course || loc.VideoID() != tc.video {
			t.Fatalf("parse %q = (%s, %s), want (%s, %s)", tc.raw, loc.CourseID(), loc.VideoID(), tc.course, tc.video)
		}
	}
	for _, raw := range []string{"", "https://example.com/about"} {
		if _, err := domain.ParseLocation(raw); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("parse %q: expected ErrInvalidInput, got %v", raw, err)
		}
	}
}

func TestWithVideoReplacesParameter(t *testing.T) {
	t.Parallel()
	loc, err := domain.ParseLocation("https://learn.example.com/courses/c-7?video=v1&tab=notes")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	next := loc.WithVideo("v2")
	if next.VideoID() != "v2" {
		t.Fatalf("video = %s, want v2", next.VideoID())
	}
	if got := next.String(); got != "https://learn.example.com/courses/c-7?tab=notes&video=v2" {
		t.Fatalf("unexpected location %s", got)
	}
	if loc.VideoID() != "v1" {
		t.Fatalf("WithVideo must not modify the receiver")
	}
	if cleared := next.WithVideo(""); cleared.VideoID() != "" || cleared.CourseID() != "c-7" {
		t.Fatalf("empty id should drop the parameter: %s", cleared)
	}
}

func TestNewLocationRoundTrip(t *testing.T) {
	t.Parallel()
	loc := domain.NewLocation("c-1", "v3")
	if loc.String() != "courseplay://course/c-1?video=v3" {
		t.Fatalf("unexpected location %s", loc)
	}
	parsed, err := domain.ParseLocation(loc.String())
	if err != nil || parsed.CourseID() != "c-1" || parsed.VideoID() != "v3" {
		t.Fatalf("round trip failed: %v %s", err, parsed)
	}
}
