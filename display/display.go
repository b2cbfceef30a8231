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

package display

import (
	"fmt"
	"strconv"
	"strings"

	"relquery/corpus"
	"relquery/deptree"
	"relquery/relation"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorMuted  = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#8A8A8A"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"}

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	forkStyle   = cellStyle.Foreground(colorAccent).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(colorMuted)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

func nodeLabel(node deptree.Node) string {
	return fmt.Sprintf("%s (%s/%s)", node.Word(), node.PoS(), node.Deprel())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Headers(headers...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle)
}

func branchLabel(node deptree.Node, isLast bool, col int) string {
	label := nodeLabel(node)
	if isLast {
		label += fmt.Sprintf(" (token %d)", col)
	}
	return label
}

// relationshipRows arranges the common ancestors into the first column
// and both branches side by side below the fork. The longer branch
// determines the number of rows, each of its rows is paired with
// the node of the shorter branch at the same depth (if any).
func relationshipRows(rel *relation.Relationship) [][]string {
	numAnc := len(rel.CommonAncestors)
	longer, shorter := rel.LongerBranch(), rel.ShorterBranch()
	numRows := numAnc + len(longer)
	rows := make([][]string, numRows)
	for i := range rows {
		rows[i] = []string{"", "", ""}
	}
	for i, node := range rel.CommonAncestors {
		label := nodeLabel(node)
		if i == numAnc-1 {
			markers := []string{"fork"}
			if len(rel.Branch1) == 0 {
				markers = append(markers, "token 1")
			}
			if len(rel.Branch2) == 0 {
				markers = append(markers, "token 2")
			}
			label += " (" + strings.Join(markers, ", ") + ")"
		}
		rows[i][0] = label
	}
	longerCol, shorterCol := 1, 2
	if len(rel.Branch1) < len(rel.Branch2) {
		longerCol, shorterCol = 2, 1
	}
	for i, node := range longer {
		rows[numAnc+i][longerCol] = branchLabel(node, i == len(longer)-1, longerCol)
		if i < len(shorter) {
			rows[numAnc+i][shorterCol] = branchLabel(shorter[i], i == len(shorter)-1, shorterCol)
		}
	}
	return rows
}

// Relationship renders a relationship as a table where the first
// column contains the common ancestors (root first) and the other two
// columns show the branches leading to the tokens.
func Relationship(rel *relation.Relationship) string {
	forkRow := len(rel.CommonAncestors) - 1
	return newTable("ancestors", "branch 1", "branch 2").
		Rows(relationshipRows(rel)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row == forkRow && col == 0 {
				return forkStyle
			}
			return cellStyle
		}).
		String()
}

// FoundRelationships renders all the relationships found in a corpus
// along with their sentences and extracted patterns
func FoundRelationships(res corpus.RelationshipsResult) string {
	var ans strings.Builder
	for i, rel := range res.Relationships {
		ans.WriteString(titleStyle.Render(fmt.Sprintf("%d. %s", i+1, rel.Relationship)))
		ans.WriteString("\n")
		ans.WriteString(rel.Sentence.Text())
		ans.WriteString("\n")
		ans.WriteString(infoStyle.Render(fmt.Sprintf("%s:%d", rel.Info.FilePath, rel.Info.Line)))
		ans.WriteString("\n")
		ans.WriteString(Relationship(rel.Relationship))
		ans.WriteString("\n")
		ans.WriteString("pattern: " + rel.Pattern.String())
		ans.WriteString("\n\n")
	}
	ans.WriteString(ScanSummary(res.ScanStats))
	ans.WriteString("\n")
	ans.WriteString(
		infoStyle.Render(
			fmt.Sprintf(
				"relationships: %d, skipped pairs: %d, truncated: %t",
				len(res.Relationships), res.NumSkippedPairs, res.IsTruncated,
			),
		),
	)
	ans.WriteString("\n")
	return ans.String()
}

func ScanSummary(stats corpus.ScanStats) string {
	return infoStyle.Render(
		fmt.Sprintf(
			"files: %d (failed: %d), sentences: %d (skipped: %d)",
			stats.NumFiles, stats.NumFailedFiles, stats.NumSentences, stats.NumSkippedSentences,
		),
	)
}

// MatchResult renders numbers of matches for each pattern
func MatchResult(res corpus.MatchResult) string {
	rows := make([][]string, len(res.Patterns))
	for i, pm := range res.Patterns {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			pm.Pattern.String(),
			strconv.Itoa(pm.NumMatches),
			strconv.Itoa(pm.NumMatchingSentences),
		}
	}
	tbl := newTable("#", "pattern", "matches", "sentences").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col >= 2 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})
	return tbl.String() + "\n" + ScanSummary(res.ScanStats) + "\n"
}
