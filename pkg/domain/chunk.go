package domain

// Chunk is an ordered, contiguous run of Segments submitted to the
// correction service as one transmission unit.
type Chunk struct {
	Index    int
	Segments []Segment
}

// CorrectedSentence is one time-aligned sentence returned by the correction
// service. StartSecond is the originating segment start, truncated.
type CorrectedSentence struct {
	StartSecond int    `bson:"start" json:"start"`
	Text        string `bson:"text" json:"text"`
}
