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

package openapi

func createSchemas() ObjectProperties {
	ans := make(ObjectProperties)
	ans["Error"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"error": {Type: "string"},
		},
	}
	ans["Token"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"word":  {Type: "string"},
			"lemma": {Type: "string"},
			"pos":   {Type: "string"},
			"dep":   {Type: "string", Description: "dependency relation to the parent"},
			"head":  {Type: "integer", Description: "zero based index of the parent, -1 for the root"},
		},
		Required: []string{"word", "head"},
	}
	ans["Sentence"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"tokens": {Type: "array", Items: &ObjectProperty{Ref: "#/components/schemas/Token"}},
		},
		Required: []string{"tokens"},
	}
	ans["Step"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"pos": {Type: "string"},
			"dep": {Type: "string"},
		},
		Required: []string{"pos", "dep"},
	}
	ans["Pattern"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"common_ancestor": {
				Type: "object",
				Properties: ObjectProperties{
					"pos":   {Type: "string"},
					"lemma": {Type: "string"},
				},
				Required: []string{"pos", "lemma"},
			},
			"branch1": {Type: "array", Items: &ObjectProperty{Ref: "#/components/schemas/Step"}},
			"branch2": {Type: "array", Items: &ObjectProperty{Ref: "#/components/schemas/Step"}},
		},
		Required: []string{"common_ancestor", "branch1", "branch2"},
	}
	ans["TokenInfo"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"index": {Type: "integer"},
			"word":  {Type: "string"},
			"lemma": {Type: "string"},
			"pos":   {Type: "string"},
			"dep":   {Type: "string"},
		},
	}
	tokenList := ObjectProperty{Type: "array", Items: &ObjectProperty{Ref: "#/components/schemas/TokenInfo"}}
	ans["RelationshipItem"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"sentence": {
				Type: "object",
				Properties: ObjectProperties{
					"id":       {Type: "string"},
					"filePath": {Type: "string"},
					"line":     {Type: "integer"},
					"text":     {Type: "string"},
				},
			},
			"token1":          schemaRef("TokenInfo"),
			"token2":          schemaRef("TokenInfo"),
			"commonAncestors": tokenList,
			"branch1":         tokenList,
			"branch2":         tokenList,
			"pattern":         schemaRef("Pattern"),
		},
	}
	scanStats := ObjectProperties{
		"numFiles":            {Type: "integer"},
		"numFailedFiles":      {Type: "integer"},
		"numSentences":        {Type: "integer"},
		"numSkippedSentences": {Type: "integer"},
	}
	relationships := ObjectProperties{
		"corpusId":          {Type: "string"},
		"entity1":           {Type: "string"},
		"entity2":           {Type: "string"},
		"items":             {Type: "array", Items: &ObjectProperty{Ref: "#/components/schemas/RelationshipItem"}},
		"numSkippedPairs":   {Type: "integer"},
		"isTruncated":       {Type: "boolean"},
		"numStoredPatterns": {Type: "integer"},
		"resultType":        {Type: "string", Enum: []string{"relationships"}},
	}
	for k, v := range scanStats {
		relationships[k] = v
	}
	ans["Relationships"] = ObjectProperty{Type: "object", Properties: relationships}

	matches := ObjectProperties{
		"corpusId": {Type: "string"},
		"patterns": {
			Type: "array",
			Items: &ObjectProperty{
				Type: "object",
				Properties: ObjectProperties{
					"pattern":              schemaRef("Pattern"),
					"numMatches":           {Type: "integer"},
					"numMatchingSentences": {Type: "integer"},
					"examples":             {Type: "array", Items: &ObjectProperty{Type: "object"}},
				},
			},
		},
		"resultType": {Type: "string", Enum: []string{"matches"}},
	}
	for k, v := range scanStats {
		matches[k] = v
	}
	ans["Matches"] = ObjectProperty{Type: "object", Properties: matches}

	ans["SentenceMatches"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"pattern": schemaRef("Pattern"),
			"forks": {
				Type: "array",
				Items: &ObjectProperty{
					Type: "object",
					Properties: ObjectProperties{
						"fork":         schemaRef("TokenInfo"),
						"branch1Count": {Type: "integer"},
						"branch2Count": {Type: "integer"},
						"count":        {Type: "integer"},
					},
				},
			},
			"total": {Type: "integer"},
		},
	}
	ans["PatternRecord"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"id":       {Type: "integer"},
			"corpusId": {Type: "string"},
			"token1":   {Type: "string"},
			"token2":   {Type: "string"},
			"pattern":  schemaRef("Pattern"),
			"created":  {Type: "string", Description: "creation time (RFC 3339)"},
		},
		Required: []string{"pattern"},
	}
	return ans
}
