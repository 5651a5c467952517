package domain

// MediaRequest is what a video surface needs to start playing.
type MediaRequest struct {
	VideoID       string
	MediaRef      string
	StartPosition float64
	Duration      float64
}

type SurfaceEventKind string

const (
	SurfaceProgress SurfaceEventKind = "progress"
	SurfaceEnded    SurfaceEventKind = "ended"
)

type SurfaceEvent struct {
	Kind    SurfaceEventKind
	Seconds float64
	Percent float64
}
