package chunking

// Chunk is a contiguous slice of the source text. Start/End are byte offsets
// into the original document; End-Start always equals len(Content). Adjacent
// chunks may share up to chunkOverlap bytes of trailing/leading content.
type Chunk struct {
	Seq     int
	Content string
	Start   int
	End     int
}

// Options control chunk assembly. ChunkSize is the soft byte ceiling (a chunk
// closes after the unit that crosses it), ChunkOverlap the carried tail of the
// previous chunk, MaxChunks a hard cap on output length.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	MaxChunks    int
}

// Assemble packs units into ordered chunks. Contract: concatenating chunk
// contents with overlap regions removed reproduces the original text; no unit
// is ever split across a boundary.
func Assemble(units []Unit, separators []string, opts Options) []Chunk {
	if len(units) == 0 {
		return nil
	}
	sepRunes := separatorRunes(separators)

	var chunks []Chunk
	var buf []Unit
	bufLen := 0
	fresh := 0 // units appended since the last close
	start := 0

	flush := func() {
		var b []byte
		for _, u := range buf {
			b = append(b, u.Text...)
		}
		content := string(b)
		chunks = append(chunks, Chunk{
			Seq:     len(chunks),
			Content: content,
			Start:   start,
			End:     start + len(content),
		})

		seed, seedLen := overlapSeed(buf, opts.ChunkOverlap, sepRunes)
		start += len(content) - seedLen
		buf = seed
		bufLen = seedLen
		fresh = 0
	}

	for _, u := range units {
		buf = append(buf, u)
		bufLen += len(u.Text)
		fresh++
		if bufLen > opts.ChunkSize {
			flush()
			if opts.MaxChunks > 0 && len(chunks) >= opts.MaxChunks {
				return chunks
			}
		}
	}
	// A trailing buffer made purely of overlap seed is already covered by the
	// previous chunk.
	if fresh > 0 {
		flush()
	}
	return chunks
}

// overlapSeed scans the closed buffer from the end, collecting whole units
// until the next one would push the carried length past chunkOverlap, then
// strips leading units that are pure separator text.
func overlapSeed(buf []Unit, chunkOverlap int, sepRunes map[rune]struct{}) ([]Unit, int) {
	if chunkOverlap <= 0 {
		return nil, 0
	}
	i := len(buf)
	carried := 0
	for i > 0 {
		u := buf[i-1]
		if carried+len(u.Text) > chunkOverlap {
			break
		}
		carried += len(u.Text)
		i--
	}
	seed := buf[i:]
	for len(seed) > 0 && isSeparatorOnly(seed[0].Text, sepRunes) {
		carried -= len(seed[0].Text)
		seed = seed[1:]
	}
	if len(seed) == 0 {
		return nil, 0
	}
	out := make([]Unit, len(seed))
	copy(out, seed)
	return out, carried
}

// ChunkText is the full pipeline: split text into units, then assemble.
func ChunkText(text string, separators []string, opts Options) []Chunk {
	units := Split(text, separators, opts.ChunkSize)
	return Assemble(units, separators, opts)
}
