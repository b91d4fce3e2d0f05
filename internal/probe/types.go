package probe

// FormatInfo holds container-level metadata from ffprobe's format section.
// Numeric fields stay as ffprobe emitted them (decimal strings) so callers
// can tell an absent field from a zero one; "N/A" is normalized to "".
type FormatInfo struct {
	Filename       string
	NbStreams      int
	FormatName     string
	FormatLongName string
	Duration       string // Seconds, decimal.
	Size           string // Bytes.
	BitRate        string // Bits/sec; often absent for raw streams.
	Tags           map[string]string
}

// Stream holds the properties of one elementary stream. Fields that do not
// apply to the stream's CodecType are left at their zero value.
type Stream struct {
	Index     int
	CodecType string // "video", "audio", "subtitle", "data", "attachment".
	CodecName string
	Profile   string

	// Video.
	Width              int
	Height             int
	PixFmt             string
	RFrameRate         string // Rational "N/D", e.g. "30000/1001".
	AvgFrameRate       string // Rational "N/D".
	DisplayAspectRatio string // e.g. "16:9".
	IsAttachedPic      bool

	// Audio.
	SampleRate       string // Hz.
	Channels         int
	ChannelLayout    string
	BitsPerSample    int    // 0 for most compressed codecs.
	BitsPerRawSample string // Decoder-reported precision.

	// Common.
	BitRate   string // Bits/sec; falls back to the Matroska BPS tag.
	Language  string
	IsDefault bool
	Tags      map[string]string
}

// ProbeResult is the fully parsed output of a single ffprobe JSON call.
// Streams keep ffprobe's order.
type ProbeResult struct {
	Format  FormatInfo
	Streams []Stream
}

// StreamsOfType returns every stream whose CodecType matches kind, in
// container order. Attached pictures (cover art) are not counted as video.
func (p *ProbeResult) StreamsOfType(kind string) []Stream {
	var out []Stream
	for _, s := range p.Streams {
		if s.CodecType != kind {
			continue
		}
		if kind == "video" && s.IsAttachedPic {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FirstOfType returns the first stream of the given kind, or nil.
// First match wins; no attempt is made to pick a "best" track.
func (p *ProbeResult) FirstOfType(kind string) *Stream {
	for i := range p.Streams {
		s := &p.Streams[i]
		if s.CodecType != kind {
			continue
		}
		if kind == "video" && s.IsAttachedPic {
			continue
		}
		return s
	}
	return nil
}
