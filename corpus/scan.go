// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of RELQUERY.
//
//  RELQUERY is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  RELQUERY is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with RELQUERY.  If not, see <https://www.gnu.org/licenses/>.

package corpus

import (
	"context"
	"fmt"
	"time"

	"relquery/deptree"
	"relquery/merror"
	"relquery/pattern"
	"relquery/relation"
	"relquery/vert"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// FoundRelationship is a relationship between two entity
// tokens found in a corpus sentence.
type FoundRelationship struct {
	Sentence     *deptree.Sentence
	Info         vert.SentenceInfo
	Relationship *relation.Relationship
	Pattern      pattern.Pattern
}

type ScanStats struct {
	NumFiles            int `json:"numFiles"`
	NumFailedFiles      int `json:"numFailedFiles"`
	NumSentences        int `json:"numSentences"`
	NumSkippedSentences int `json:"numSkippedSentences"`
}

type RelationshipsResult struct {
	ScanStats
	Relationships   []FoundRelationship
	NumSkippedPairs int
	IsTruncated     bool
}

// MatchExample is a sentence where a pattern matched
type MatchExample struct {
	Sentence *deptree.Sentence
	Info     vert.SentenceInfo
	Count    int
}

type PatternMatches struct {
	Pattern              pattern.Pattern
	NumMatches           int
	NumMatchingSentences int
	Examples             []MatchExample
}

type MatchResult struct {
	ScanStats
	Patterns []PatternMatches
}

// Scanner searches corpus files for relationships between
// entities and for pattern matches. Files are processed
// in parallel, the results are always merged in the file order.
type Scanner struct {
	corpus           *CorpusSetup
	numWorkers       int
	maxRelationships int
	maxExamples      int
}

func NewScanner(corpus *CorpusSetup, setup *CorporaSetup) *Scanner {
	return &Scanner{
		corpus:           corpus,
		numWorkers:       setup.NumScanWorkers,
		maxRelationships: setup.MaxRelationships,
		maxExamples:      setup.MaxMatchExamples,
	}
}

// forEachFile runs fn for all the files in parallel. An error
// returned by fn for an individual file is logged and the file
// is counted as failed. Only a cancelled context stops the whole
// processing.
func (sc *Scanner) forEachFile(
	ctx context.Context,
	files []string,
	fn func(fileIdx int, path string) (vert.ReadStats, error),
) (ScanStats, error) {
	fileStats := make([]vert.ReadStats, len(files))
	fileErrs := make([]error, len(files))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(max(sc.numWorkers, 1))
	for i, path := range files {
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileStats[i], fileErrs[i] = fn(i, path)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return ScanStats{}, err
	}
	ans := ScanStats{NumFiles: len(files)}
	for i, st := range fileStats {
		if fileErrs[i] != nil {
			log.Error().Err(fileErrs[i]).Str("file", files[i]).Msg("failed to process corpus file")
			ans.NumFailedFiles++
		}
		ans.NumSentences += st.NumSentences
		ans.NumSkippedSentences += st.NumSkippedSentences
	}
	return ans, nil
}

// relationshipsInSentence finds all relationships between
// entity1 and entity2 instances within a sentence.
// It returns also number of pairs which failed to produce
// a relationship.
func relationshipsInSentence(
	sent *deptree.Sentence,
	info vert.SentenceInfo,
	entity1, entity2 EntitySpec,
) ([]FoundRelationship, int) {
	inst1 := entity1.FindIn(sent)
	if len(inst1) == 0 {
		return []FoundRelationship{}, 0
	}
	inst2 := entity2.FindIn(sent)
	ans := make([]FoundRelationship, 0, len(inst1)*len(inst2))
	var numFailed int
	for _, tok1 := range inst1 {
		for _, tok2 := range inst2 {
			rel, err := relation.Find(tok1, tok2)
			if err != nil {
				log.Warn().
					Err(err).
					Str("file", info.FilePath).
					Int("line", info.Line).
					Str("token1", tok1.Word()).
					Str("token2", tok2.Word()).
					Msg("skipping token pair")
				numFailed++
				continue
			}
			ans = append(ans, FoundRelationship{
				Sentence:     sent,
				Info:         info,
				Relationship: rel,
				Pattern:      pattern.Extract(rel),
			})
		}
	}
	return ans, numFailed
}

// FindRelationships searches the corpus for sentences where both
// entities occur and returns relationships for all the pairs
// of their instances.
func (sc *Scanner) FindRelationships(
	ctx context.Context,
	entity1, entity2 EntitySpec,
) (RelationshipsResult, error) {
	var ans RelationshipsResult
	if err := entity1.Validate(); err != nil {
		return ans, merror.InputError{Msg: fmt.Sprintf("invalid entity1: %s", err)}
	}
	if err := entity2.Validate(); err != nil {
		return ans, merror.InputError{Msg: fmt.Sprintf("invalid entity2: %s", err)}
	}
	t0 := time.Now()
	selector := NewEntityFileSelector(sc.corpus.FileNameRegexp(), entity1, entity2)
	files, err := selector.Select(ctx, sc.corpus.DataDir)
	if err != nil {
		return ans, fmt.Errorf("failed to select corpus files: %w", err)
	}
	log.Info().
		Str("corpus", sc.corpus.ID).
		Int("numFiles", len(files)).
		Str("entity1", entity1.String()).
		Str("entity2", entity2.String()).
		Msg("files selected for relationship search")

	perFile := make([][]FoundRelationship, len(files))
	perFileFailed := make([]int, len(files))
	stats, err := sc.forEachFile(ctx, files, func(fileIdx int, path string) (vert.ReadStats, error) {
		found := make([]FoundRelationship, 0, 10)
		var numFailed int
		stats, err := vert.ReadFile(
			path,
			sc.corpus.Vertical,
			func(sent *deptree.Sentence, info vert.SentenceInfo) error {
				rels, nf := relationshipsInSentence(sent, info, entity1, entity2)
				found = append(found, rels...)
				numFailed += nf
				return nil
			},
		)
		perFile[fileIdx] = found
		perFileFailed[fileIdx] = numFailed
		return stats, err
	})
	if err != nil {
		return ans, err
	}
	ans.ScanStats = stats
	ans.Relationships = make([]FoundRelationship, 0, 100)
	for i := range files {
		ans.NumSkippedPairs += perFileFailed[i]
		for _, rel := range perFile[i] {
			if len(ans.Relationships) >= sc.maxRelationships {
				ans.IsTruncated = true
				break
			}
			ans.Relationships = append(ans.Relationships, rel)
		}
	}
	log.Info().
		Str("corpus", sc.corpus.ID).
		Int("numRelationships", len(ans.Relationships)).
		Int("numSkippedPairs", ans.NumSkippedPairs).
		Float64("procTimeSecs", time.Since(t0).Seconds()).
		Msg("relationship search done")
	return ans, nil
}

// CountMatches replays the patterns against all the corpus sentences
func (sc *Scanner) CountMatches(ctx context.Context, patterns []pattern.Pattern) (MatchResult, error) {
	var ans MatchResult
	if len(patterns) == 0 {
		return ans, merror.InputError{Msg: "no patterns to match"}
	}
	for i, p := range patterns {
		if err := p.Validate(); err != nil {
			return ans, merror.InputError{Msg: fmt.Sprintf("invalid pattern %d: %s", i, err)}
		}
	}
	t0 := time.Now()
	selector := NewEntityFileSelector(sc.corpus.FileNameRegexp())
	files, err := selector.Select(ctx, sc.corpus.DataDir)
	if err != nil {
		return ans, fmt.Errorf("failed to select corpus files: %w", err)
	}
	perFile := make([][]PatternMatches, len(files))
	stats, err := sc.forEachFile(ctx, files, func(fileIdx int, path string) (vert.ReadStats, error) {
		found := make([]PatternMatches, len(patterns))
		stats, err := vert.ReadFile(
			path,
			sc.corpus.Vertical,
			func(sent *deptree.Sentence, info vert.SentenceInfo) error {
				for i, p := range patterns {
					cnt := pattern.CountMatches(p, sent)
					if cnt == 0 {
						continue
					}
					found[i].NumMatches += cnt
					found[i].NumMatchingSentences++
					if len(found[i].Examples) < sc.maxExamples {
						found[i].Examples = append(
							found[i].Examples,
							MatchExample{Sentence: sent, Info: info, Count: cnt},
						)
					}
				}
				return nil
			},
		)
		perFile[fileIdx] = found
		return stats, err
	})
	if err != nil {
		return ans, err
	}
	ans.ScanStats = stats
	ans.Patterns = make([]PatternMatches, len(patterns))
	for i, p := range patterns {
		ans.Patterns[i].Pattern = p
		ans.Patterns[i].Examples = make([]MatchExample, 0, sc.maxExamples)
		for _, ff := range perFile {
			if ff == nil {
				continue
			}
			ans.Patterns[i].NumMatches += ff[i].NumMatches
			ans.Patterns[i].NumMatchingSentences += ff[i].NumMatchingSentences
			for _, ex := range ff[i].Examples {
				if len(ans.Patterns[i].Examples) < sc.maxExamples {
					ans.Patterns[i].Examples = append(ans.Patterns[i].Examples, ex)
				}
			}
		}
	}
	log.Info().
		Str("corpus", sc.corpus.ID).
		Int("numPatterns", len(patterns)).
		Int("numSentences", ans.NumSentences).
		Float64("procTimeSecs", time.Since(t0).Seconds()).
		Msg("pattern matching done")
	return ans, nil
}
