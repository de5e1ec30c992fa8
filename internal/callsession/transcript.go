package callsession

// transcript keeps the most recent lines, oldest evicted first
type transcript struct {
	limit int
	lines []TranscriptLine
}

func newTranscript(limit int) *transcript {
	if limit <= 0 {
		limit = 5
	}
	return &transcript{limit: limit, lines: make([]TranscriptLine, 0, limit)}
}

func (t *transcript) add(line TranscriptLine) {
	if len(t.lines) == t.limit {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.limit-1]
	}
	t.lines = append(t.lines, line)
}

func (t *transcript) clear() {
	t.lines = t.lines[:0]
}

func (t *transcript) snapshot() []TranscriptLine {
	out := make([]TranscriptLine, len(t.lines))
	copy(out, t.lines)
	return out
}
