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
	"fmt"
	"regexp"

	"relquery/vert"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

const (
	DfltNumScanWorkers   = 4
	DfltMaxRelationships = 1000
	DfltMaxMatchExamples = 10
)

// CorpusSetup configures a single corpus - i.e. a directory
// containing syntax-annotated vertical files.
type CorpusSetup struct {
	ID      string `json:"id"`
	DataDir string `json:"dataDir"`

	// FileNameFilter is an optional regular expression
	// a file name (relative to DataDir) must match
	FileNameFilter string `json:"fileNameFilter"`

	Vertical *vert.Setup `json:"vertical"`

	fileNameRegexp *regexp.Regexp
}

func (cs *CorpusSetup) FileNameRegexp() *regexp.Regexp {
	return cs.fileNameRegexp
}

func (cs *CorpusSetup) ValidateAndDefaults(confContext string) error {
	if cs == nil {
		return fmt.Errorf("missing configuration section `%s`", confContext)
	}
	if cs.DataDir == "" {
		return fmt.Errorf("missing `%s.dataDir`", confContext)
	}
	isDir, err := fs.IsDir(cs.DataDir)
	if err != nil {
		return fmt.Errorf("failed to test `%s.dataDir`: %w", confContext, err)
	}
	if !isDir {
		return fmt.Errorf("`%s.dataDir` is not a directory", confContext)
	}
	if cs.FileNameFilter != "" {
		cs.fileNameRegexp, err = regexp.Compile(cs.FileNameFilter)
		if err != nil {
			return fmt.Errorf("invalid `%s.fileNameFilter`: %w", confContext, err)
		}
	}
	return cs.Vertical.ValidateAndDefaults(confContext + ".vertical")
}

type Resources map[string]*CorpusSetup

func (r Resources) Get(corpusID string) *CorpusSetup {
	return r[corpusID]
}

// CorporaSetup defines a root configuration of corpora
type CorporaSetup struct {
	Resources Resources `json:"resources"`

	// NumScanWorkers specifies how many files of a corpus
	// are processed in parallel
	NumScanWorkers int `json:"numScanWorkers"`

	// MaxRelationships limits number of relationships
	// returned by a single corpus scan
	MaxRelationships int `json:"maxRelationships"`

	// MaxMatchExamples limits number of example sentences
	// attached to a pattern matching result
	MaxMatchExamples int `json:"maxMatchExamples"`
}

func (cs *CorporaSetup) ValidateAndDefaults(confContext string) error {
	if cs == nil {
		return fmt.Errorf("missing configuration section `%s`", confContext)
	}
	if len(cs.Resources) == 0 {
		log.Warn().Msgf("no corpora defined in `%s.resources`", confContext)
	}
	if cs.NumScanWorkers <= 0 {
		cs.NumScanWorkers = DfltNumScanWorkers
		log.Warn().
			Int("value", DfltNumScanWorkers).
			Msgf("`%s.numScanWorkers` not set, using default", confContext)
	}
	if cs.MaxRelationships <= 0 {
		cs.MaxRelationships = DfltMaxRelationships
		log.Warn().
			Int("value", DfltMaxRelationships).
			Msgf("`%s.maxRelationships` not set, using default", confContext)
	}
	if cs.MaxMatchExamples < 0 {
		return fmt.Errorf("`%s.maxMatchExamples` must not be negative", confContext)

	} else if cs.MaxMatchExamples == 0 {
		cs.MaxMatchExamples = DfltMaxMatchExamples
	}
	for id, v := range cs.Resources {
		if v == nil {
			return fmt.Errorf("empty configuration of corpus %s", id)
		}
		v.ID = id
		if err := v.ValidateAndDefaults(fmt.Sprintf("%s.resources.%s", confContext, id)); err != nil {
			return err
		}
	}
	return nil
}
