// Package pbpe implements a Picky Byte-Pair Encoding tokenizer in pure Go.
//
// PBPE extends classical BPE with split operations: a learned merge
// (a,b) -> ab can later be undone for a subset of its occurrences when the
// merged token proves "picky" — its parts occur substantially more often
// outside the merge than inside it. Merges and splits are interleaved into
// a single ordered operation list; replaying that list against a word's
// initial symbol decomposition is the entire encoding algorithm.
//
// # Training
//
//	trainer, err := pbpe.NewTrainer(
//		pbpe.WithVocabSize(4000),
//		pbpe.WithThreshold(0.9),
//		pbpe.WithSpecialTokens([]string{"[UNK]", "[PAD]"}),
//	)
//	model, err := trainer.Train(context.Background(), wordCounts)
//
// # Encoding
//
//	enc := model.NewEncoder()
//	ids, err := enc.EncodeWord("lowering")
//	text := model.Decode(ids)
//
// Pre-tokenization (splitting raw text into words), normalization, and
// post-processing (special-token injection, padding, truncation) are the
// responsibility of the caller; this package only implements the trained
// merge/split engine and its inverse.
package pbpe
