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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"relquery/cnf"
	"relquery/corpus"
	"relquery/display"
	"relquery/results"
	"relquery/store"
	"relquery/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	extractEntity1 string
	extractEntity2 string
	extractExport  bool
	extractStore   bool
	extractQuiet   bool
	matchQuiet     bool
)

func corpusOrExit(conf *cnf.Conf, corpusID string) *corpus.CorpusSetup {
	corp := conf.Corpora.Resources.Get(corpusID)
	if corp == nil {
		log.Fatal().Str("corpusId", corpusID).Msg("corpus not found")
	}
	return corp
}

// exportTokens determines token names used for the export file.
// Surface values of the entities are preferred, otherwise words
// of the first found relationship are used.
func exportTokens(entity1, entity2 corpus.EntitySpec, res *results.Relationships) (string, string) {
	t1, ok1 := entity1.SurfaceName()
	t2, ok2 := entity2.SurfaceName()
	if len(res.Items) > 0 {
		if !ok1 {
			t1 = res.Items[0].Token1.Word
		}
		if !ok2 {
			t2 = res.Items[0].Token2.Word
		}
	}
	return t1, t2
}

func runExtract(cmd *cobra.Command, args []string) error {
	conf := loadToolConf(args[0])
	corp := corpusOrExit(conf, args[1])
	entity1, err := corpus.ParseEntitySpec(extractEntity1)
	if err != nil {
		return fmt.Errorf("invalid --entity1: %w", err)
	}
	entity2, err := corpus.ParseEntitySpec(extractEntity2)
	if err != nil {
		return fmt.Errorf("invalid --entity2: %w", err)
	}
	if extractStore && !conf.PatternStore.IsDBEnabled() {
		return fmt.Errorf("--store requires a configured pattern database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := corpus.NewScanner(corp, conf.Corpora)
	data, err := scanner.FindRelationships(ctx, entity1, entity2)
	if err != nil {
		return err
	}
	if !extractQuiet {
		fmt.Fprintln(os.Stdout, display.FoundRelationships(data))
	}
	res := results.NewRelationships(corp.ID, entity1, entity2, data)
	if len(res.Items) == 0 {
		log.Warn().Msg("no relationships found, nothing to export")
		return nil
	}
	if extractExport {
		exportDir := "."
		if conf.PatternStore != nil {
			exportDir = conf.PatternStore.ExportDir
		}
		t1, t2 := exportTokens(entity1, entity2, res)
		path, err := store.ExportJSON(exportDir, t1, t2, res.Patterns())
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Int("numPatterns", len(res.Items)).Msg("patterns exported")
	}
	if extractStore {
		patterns, err := store.NewSQLStore(conf.PatternStore)
		if err != nil {
			return err
		}
		defer patterns.Close()
		numNew, err := patterns.SaveAll(ctx, worker.PatternRecords(res))
		if err != nil {
			return err
		}
		log.Info().Int("numNew", numNew).Int("numTotal", len(res.Items)).Msg("patterns stored")
	}
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	conf := loadToolConf(args[0])
	corp := corpusOrExit(conf, args[1])
	patterns, err := store.ImportJSON(args[2])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := corpus.NewScanner(corp, conf.Corpora)
	res, err := scanner.CountMatches(ctx, patterns)
	if err != nil {
		return err
	}
	if matchQuiet {
		fmt.Fprintln(os.Stdout, display.ScanSummary(res.ScanStats))
		return nil
	}
	fmt.Fprintln(os.Stdout, display.MatchResult(res))
	return nil
}

var extractCmd = &cobra.Command{
	Use:   "extract CONFIG CORPUS --entity1 SPEC --entity2 SPEC",
	Short: "Find relationships between two entities in a corpus",
	Long: `Find relationships between two entities in all the sentences
of a corpus and extract generalized patterns out of them.

An entity is specified as a comma separated list of attr=value
pairs (e.g. lower=bank or lemma=raise,pos=VERB).

Examples:
  relquery extract conf.json news --entity1 lower=banks --entity2 lower=funds --export`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

var matchCmd = &cobra.Command{
	Use:   "match CONFIG CORPUS PATTERNS_FILE",
	Short: "Count matches of patterns in a corpus",
	Long: `Count matches of patterns stored in a JSON file (as produced
by the extract command) in all the sentences of a corpus.

Examples:
  relquery match conf.json news banks_funds.json`,
	Args: cobra.ExactArgs(3),
	RunE: runMatch,
}

func init() {
	extractCmd.Flags().StringVar(&extractEntity1, "entity1", "", "First entity specification (required)")
	extractCmd.Flags().StringVar(&extractEntity2, "entity2", "", "Second entity specification (required)")
	extractCmd.Flags().BoolVar(&extractExport, "export", false, "Export found patterns to a JSON file")
	extractCmd.Flags().BoolVar(&extractStore, "store", false, "Save found patterns to the pattern database")
	extractCmd.Flags().BoolVarP(&extractQuiet, "quiet", "q", false, "Do not print found relationships")
	_ = extractCmd.MarkFlagRequired("entity1")
	_ = extractCmd.MarkFlagRequired("entity2")
	rootCmd.AddCommand(extractCmd)

	matchCmd.Flags().BoolVarP(&matchQuiet, "quiet", "q", false, "Print only a scan summary")
	rootCmd.AddCommand(matchCmd)
}
