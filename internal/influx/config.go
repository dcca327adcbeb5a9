package influx

type Config struct {
	Enabled  bool
	URL      string
	Database string
	Token    string
	// SampleRate is the fraction of per-call points kept, in (0, 1].
	SampleRate float64
}
