package dto

const (
	EventProgress = "progress"
	EventEnded    = "ended"
)

type StartInput struct {
	Engine        string
	VideoID       string
	MediaRef      string
	StartPosition float64
	Duration      float64
}

type EventOutput struct {
	Kind    string
	Seconds float64
	Percent float64
}

type DoctorInput struct {
	Engine string
}

type DoctorOutput struct {
	Engine       string
	Name         string
	Version      string
	Capabilities []string
	Binary       string
	SHA256       string
	Healthy      bool
	Error        string
}
