package domain_test

import (
	"testing"

	"courseplay/internal/modules/course/domain"
)

func sampleCourse() domain.Course {
	return domain.Course{
		ID: "c-1",
		Sections: []domain.Section{
			{ID: "s2", Position: 2, Videos: []domain.Video{{ID: "v3", Position: 1}}},
			{ID: "s1", Position: 1, Videos: []domain.Video{
				{ID: "v2", Position: 2},
				{ID: "v1", Position: 1, Progress: &domain.Progress{Completed: true, Percentage: 100}},
			}},
		},
	}
}

func TestNormalizeOrdersSectionsAndVideos(t *testing.T) {
	t.Parallel()
	course := sampleCourse().Normalize()
	flat := course.Flatten()
	got := make([]string, 0, len(flat))
	for _, v := range flat {
		got = append(got, v.ID)
	}
	want := []string{"v1", "v2", "v3"}
	if len(got) != len(want) {
		t.Fatalf("unexpected flatten length: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("flatten order = %v, want %v", got, want)
		}
	}
	if flat[2].SectionID != "s2" || course.Sections[0].CourseID != "c-1" {
		t.Fatalf("parent ids should be back-filled: %+v", course.Sections)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	course := sampleCourse()
	_ = course.Normalize()
	if course.Sections[0].ID != "s2" || course.Sections[1].Videos[0].ID != "v2" {
		t.Fatalf("input course was reordered: %+v", course.Sections)
	}
}

func TestValidateRejectsDuplicateVideoIDs(t *testing.T) {
	t.Parallel()
	course := sampleCourse()
	if err := course.Validate(); err != nil {
		t.Fatalf("sample course should be valid: %v", err)
	}
	course.Sections[0].Videos = append(course.Sections[0].Videos, domain.Video{ID: "v1"})
	if err := course.Validate(); err == nil {
		t.Fatalf("duplicate video id across sections should fail")
	}
}

func TestValidateRejectsOutOfRangeProgress(t *testing.T) {
	t.Parallel()
	course := sampleCourse()
	course.Sections[0].Videos[0].Progress = &domain.Progress{Percentage: 140}
	if err := course.Validate(); err == nil {
		t.Fatalf("percentage above 100 should fail")
	}
}

func TestFindVideoAndDone(t *testing.T) {
	t.Parallel()
	course := sampleCourse()
	v1, ok := course.FindVideo("v1")
	if !ok || !v1.Done() {
		t.Fatalf("v1 should be found and done: %+v", v1)
	}
	v2, _ := course.FindVideo("v2")
	if v2.Done() {
		t.Fatalf("v2 has no progress and cannot be done")
	}
	if _, ok := course.FindVideo("missing"); ok {
		t.Fatalf("missing video should not be found")
	}
}
