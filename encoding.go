package pbpe

// Encoding is the outbound-to-post-processor contract of §6: for one input
// word, the resulting token IDs, their string forms, their byte-offset
// range into the original word, and whether each is a continuation subword.
type Encoding struct {
	IDs            []int
	Tokens         []string
	Offsets        [][2]int
	IsContinuation []bool
}

// span tracks one token's provenance through Operation List replay: its
// byte range in the original word, and (for tokens produced by a Merge)
// the midpoint between its two constituent parts, needed if a later Split
// operation undoes this exact token.
type span struct {
	id         int
	start, end int
	mid        int
}

// Encode runs the same algorithm as EncodeWord but additionally tracks
// each token's byte-offset provenance, producing the full Encoding object
// of §6. It does not consult or populate the ID-only cache — that cache's
// contract (§4.5) is specifically word -> token IDs.
func (e *Encoder) Encode(word string) (Encoding, error) {
	spans, err := e.decomposeSpansWithFallback(word)
	if err != nil {
		return Encoding{}, NewEncodeError(word, err)
	}

	if !e.model.IgnoreMerges {
		for _, op := range e.model.Operations.All() {
			spans = applyOperationSpans(spans, op)
		}
	}

	out := Encoding{
		IDs:            make([]int, len(spans)),
		Tokens:         make([]string, len(spans)),
		Offsets:        make([][2]int, len(spans)),
		IsContinuation: make([]bool, len(spans)),
	}
	for i, s := range spans {
		tok, _ := e.model.Vocab.String(s.id)
		out.IDs[i] = s.id
		out.Tokens[i] = tok
		out.Offsets[i] = [2]int{s.start, s.end}
		out.IsContinuation[i] = i > 0 && e.model.ContinuingSubwordPrefix != "" &&
			len(tok) >= len(e.model.ContinuingSubwordPrefix) &&
			tok[:len(e.model.ContinuingSubwordPrefix)] == e.model.ContinuingSubwordPrefix
	}
	return out, nil
}

func (e *Encoder) decomposeSpansWithFallback(word string) ([]span, error) {
	parts := graphemes(word)
	marked := initialSymbols(word, e.model.ContinuingSubwordPrefix, e.model.EndOfWordSuffix)

	var spans []span
	unkStart, unkPending := 0, false
	flushUnk := func(end int) {
		if unkPending {
			id, _ := e.model.Vocab.Lookup(e.model.UnkToken)
			spans = append(spans, span{id: id, start: unkStart, end: end, mid: unkStart})
			unkPending = false
		}
	}

	for i, g := range parts {
		sym := marked[i]
		if id, ok := e.model.Vocab.Lookup(sym); ok {
			flushUnk(g.start)
			spans = append(spans, span{id: id, start: g.start, end: g.end, mid: g.start})
			continue
		}

		if e.model.ByteFallback {
			flushUnk(g.start)
			raw := g.text
			for j := 0; j < len(raw); j++ {
				id, ok := e.model.Vocab.ByteTokenID(raw[j])
				if !ok {
					return nil, NewModelError("encode", ErrUnknownToken)
				}
				spans = append(spans, span{id: id, start: g.start, end: g.end, mid: g.start})
			}
			continue
		}

		if e.model.UnkToken == "" {
			return nil, ErrUnknownToken
		}
		if e.model.FuseUnk {
			if !unkPending {
				unkStart = g.start
				unkPending = true
			}
			continue
		}
		id, _ := e.model.Vocab.Lookup(e.model.UnkToken)
		spans = append(spans, span{id: id, start: g.start, end: g.end, mid: g.start})
	}
	if len(parts) > 0 {
		flushUnk(parts[len(parts)-1].end)
	}

	return spans, nil
}

func applyOperationSpans(spans []span, op Operation) []span {
	switch op.Kind {
	case OpMerge:
		return applyMergeSpans(spans, op.Parts[0], op.Parts[1], op.Result)
	case OpSplit:
		return applySplitSpans(spans, op.Source, op.Parts[0], op.Parts[1])
	default:
		return spans
	}
}

func applyMergeSpans(spans []span, a, b, result int) []span {
	out := spans[:0:0]
	i := 0
	for i < len(spans) {
		if i+1 < len(spans) && spans[i].id == a && spans[i+1].id == b {
			out = append(out, span{id: result, start: spans[i].start, end: spans[i+1].end, mid: spans[i].end})
			i += 2
			continue
		}
		out = append(out, spans[i])
		i++
	}
	return out
}

func applySplitSpans(spans []span, source, a, b int) []span {
	out := spans[:0:0]
	for _, s := range spans {
		if s.id == source {
			out = append(out,
				span{id: a, start: s.start, end: s.mid, mid: s.start},
				span{id: b, start: s.mid, end: s.end, mid: s.mid},
			)
			continue
		}
		out = append(out, s)
	}
	return out
}
