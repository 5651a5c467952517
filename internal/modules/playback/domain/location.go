package domain

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "courseplay/internal/platform/errors"
)

const (
	Scheme     = "courseplay"
	VideoParam = "video"
)

// Location is the shareable address of a course page. The video query
// parameter names the active video.
type Location struct {
	u url.URL
}

func NewLocation(courseID, videoID string) Location {
	loc := Location{u: url.URL{Scheme: Scheme, Host: "course", Path: "/" + courseID}}
	return loc.WithVideo(videoID)
}

// ParseLocation accepts courseplay://course/<id>?video=<vid>, a web URL whose
// path contains courses/<id>, or a bare course id.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, fmt.Errorf("%w: empty location", apperrors.ErrInvalidInput)
	}
	if !strings.Contains(raw, "://") {
		return NewLocation(raw, ""), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: parse location: %v", apperrors.ErrInvalidInput, err)
	}
	loc := Location{u: *u}
	if loc.CourseID() == "" {
		return Location{}, fmt.Errorf("%w: no course id in %q", apperrors.ErrInvalidInput, raw)
	}
	return loc, nil
}

func (l Location) CourseID() string {
	segments := strings.Split(strings.Trim(l.u.Path, "/"), "/")
	if l.u.Scheme == Scheme && l.u.Host == "course" {
		if len(segments) > 0 {
			return segments[0]
		}
		return ""
	}
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "courses" || segments[i] == "course" {
			return segments[i+1]
		}
	}
	return ""
}

func (l Location) VideoID() string {
	return l.u.Query().Get(VideoParam)
}

// WithVideo replaces the video parameter, keeping every other part intact.
// An empty id removes the parameter.
func (l Location) WithVideo(videoID string) Location {
	next := l.u
	query := next.Query()
	if videoID == "" {
		query.Del(VideoParam)
	} else {
		query.Set(VideoParam, videoID)
	}
	next.RawQuery = query.Encode()
	return Location{u: next}
}

func (l Location) IsZero() bool {
	return l.u == (url.URL{})
}

func (l Location) String() string {
	return l.u.String()
}
