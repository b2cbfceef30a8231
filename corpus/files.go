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
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileSelector selects corpus files worth parsing. Besides
// an optional file name filter, it can require some words
// to be present in the file. Vertical files contain one token
// per line so the words are searched independently on any line
// and the sentence-level co-occurrence is left to the parser.
type FileSelector struct {
	NameFilter    *regexp.Regexp
	RequiredNames []string
}

// NewEntityFileSelector creates a selector requiring all
// the surface names of the provided entities (in case
// they specify any).
func NewEntityFileSelector(nameFilter *regexp.Regexp, entities ...EntitySpec) *FileSelector {
	ans := &FileSelector{
		NameFilter:    nameFilter,
		RequiredNames: make([]string, 0, len(entities)),
	}
	for _, e := range entities {
		if name, ok := e.SurfaceName(); ok {
			ans.RequiredNames = append(ans.RequiredNames, name)
		}
	}
	return ans
}

func (sel *FileSelector) containsAllNames(path string) (bool, error) {
	if len(sel.RequiredNames) == 0 {
		return true, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	found := make([]bool, len(sel.RequiredNames))
	numFound := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())
		for i, name := range sel.RequiredNames {
			if !found[i] && strings.Contains(line, name) {
				found[i] = true
				numFound++
			}
		}
		if numFound == len(sel.RequiredNames) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// Select walks recursively through the rootDir and returns
// matching files in lexical order.
func (sel *FileSelector) Select(ctx context.Context, rootDir string) ([]string, error) {
	ans := make([]string, 0, 100)
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if sel.NameFilter != nil {
			relPath, err := filepath.Rel(rootDir, path)
			if err != nil {
				return err
			}
			if !sel.NameFilter.MatchString(relPath) {
				return nil
			}
		}
		ok, err := sel.containsAllNames(path)
		if err != nil {
			return fmt.Errorf("failed to search file %s: %w", path, err)
		}
		if ok {
			ans = append(ans, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ans, nil
}
