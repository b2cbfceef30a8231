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

const (
	openAPIVersion = "3.1.0"
	jsonMIME       = "application/json"
)

func schemaRef(name string) ObjectProperty {
	return ObjectProperty{Ref: "#/components/schemas/" + name}
}

func jsonContent(schema ObjectProperty) map[string]MediaType {
	return map[string]MediaType{jsonMIME: {Schema: schema}}
}

func jsonBody(description string, schema ObjectProperty) *RequestBody {
	return &RequestBody{
		Description: description,
		Required:    true,
		Content:     jsonContent(schema),
	}
}

func okResponse(description string, schema ObjectProperty) MethodResponses {
	return MethodResponses{
		200: {Description: description, Content: jsonContent(schema)},
		400: {Description: "Invalid request", Content: jsonContent(schemaRef("Error"))},
		500: {Description: "Internal error", Content: jsonContent(schemaRef("Error"))},
	}
}

func stringParam(name, in, description string, required bool) Parameter {
	return Parameter{
		Name:        name,
		In:          in,
		Description: description,
		Required:    required,
		Schema:      ParamSchema{Type: "string"},
	}
}

var corpusIDParam = stringParam("corpusId", "path", "An ID of a corpus to search in", true)

var patternIDParam = Parameter{
	Name:        "patternId",
	In:          "path",
	Description: "A numeric ID of a stored pattern",
	Required:    true,
	Schema:      ParamSchema{Type: "integer"},
}

// NewResponse creates an OpenAPI document describing the HTTP API
func NewResponse(ver, url string) *APIResponse {
	paths := make(map[string]Methods)

	paths["/relationship"] = Methods{
		Post: &Method{
			Description: "Finds the relationship between two tokens of a parsed sentence " +
				"and extracts a generalized pattern out of it.",
			OperationID: "Relationship",
			RequestBody: jsonBody(
				"A sentence and zero based indices of the two tokens",
				ObjectProperty{
					Type: "object",
					Properties: ObjectProperties{
						"sentence": schemaRef("Sentence"),
						"token1":   {Type: "integer"},
						"token2":   {Type: "integer"},
					},
					Required: []string{"sentence", "token1", "token2"},
				},
			),
			Responses: okResponse("Found relationship", schemaRef("RelationshipItem")),
		},
	}

	paths["/match"] = Methods{
		Post: &Method{
			Description: "Matches a pattern against a parsed sentence.",
			OperationID: "Match",
			RequestBody: jsonBody(
				"A pattern and a sentence",
				ObjectProperty{
					Type: "object",
					Properties: ObjectProperties{
						"pattern":  schemaRef("Pattern"),
						"sentence": schemaRef("Sentence"),
					},
					Required: []string{"pattern", "sentence"},
				},
			),
			Responses: okResponse("Pattern matches", schemaRef("SentenceMatches")),
		},
	}

	paths["/corpus/{corpusId}/relationships"] = Methods{
		Get: &Method{
			Description: "Searches all the sentences of a corpus for relationships between two entities. " +
				"An entity is specified as comma separated attr=value pairs (e.g. `lower=bank`).",
			OperationID: "CorpusRelationships",
			Parameters: []Parameter{
				corpusIDParam,
				stringParam("entity1", "query", "The first entity", true),
				stringParam("entity2", "query", "The second entity", true),
				{
					Name:        "store",
					In:          "query",
					Description: "If set to 1, extracted patterns are saved to the pattern database",
					Schema:      ParamSchema{Type: "integer", Enum: []string{"0", "1"}},
				},
			},
			Responses: okResponse("Found relationships", schemaRef("Relationships")),
		},
	}

	paths["/corpus/{corpusId}/match"] = Methods{
		Post: &Method{
			Description: "Counts matches of patterns in all the sentences of a corpus.",
			OperationID: "CorpusMatch",
			Parameters:  []Parameter{corpusIDParam},
			RequestBody: jsonBody(
				"A list of patterns",
				ObjectProperty{Type: "array", Items: &ObjectProperty{Ref: "#/components/schemas/Pattern"}},
			),
			Responses: okResponse("Pattern matches", schemaRef("Matches")),
		},
	}

	paths["/patterns"] = Methods{
		Get: &Method{
			Description: "Lists stored patterns.",
			OperationID: "ListPatterns",
			Parameters: []Parameter{
				stringParam("corpusId", "query", "Filter by a corpus", false),
				stringParam("token", "query", "Filter by one of the tokens", false),
				stringParam("lemma", "query", "Filter by a lemma of the common ancestor", false),
				{
					Name:        "limit",
					In:          "query",
					Description: "Max. number of records",
					Schema:      ParamSchema{Type: "integer", Default: 100},
				},
				{
					Name:        "offset",
					In:          "query",
					Description: "Number of records to skip",
					Schema:      ParamSchema{Type: "integer", Default: 0},
				},
			},
			Responses: okResponse(
				"Stored patterns",
				ObjectProperty{Type: "array", Items: &ObjectProperty{Ref: "#/components/schemas/PatternRecord"}},
			),
		},
		Post: &Method{
			Description: "Saves a pattern. Saving an already stored pattern returns the existing record ID.",
			OperationID: "CreatePattern",
			RequestBody: jsonBody("A pattern record", schemaRef("PatternRecord")),
			Responses: okResponse(
				"Saved pattern",
				ObjectProperty{
					Type: "object",
					Properties: ObjectProperties{
						"id":    {Type: "integer"},
						"isNew": {Type: "boolean"},
					},
				},
			),
		},
	}

	paths["/patterns/{patternId}"] = Methods{
		Get: &Method{
			Description: "Shows a stored pattern.",
			OperationID: "GetPattern",
			Parameters:  []Parameter{patternIDParam},
			Responses:   okResponse("Stored pattern", schemaRef("PatternRecord")),
		},
		Delete: &Method{
			Description: "Deletes a stored pattern.",
			OperationID: "DeletePattern",
			Parameters:  []Parameter{patternIDParam},
			Responses: okResponse(
				"Pattern deleted",
				ObjectProperty{Type: "object", Properties: ObjectProperties{"ok": {Type: "boolean"}}},
			),
		},
	}

	return &APIResponse{
		OpenAPI: openAPIVersion,
		Info: Info{
			Title: "RelQuery",
			Description: "Finds syntactic relationships between entities in dependency-parsed corpora " +
				"and searches for generalized relationship patterns.",
			Version: ver,
		},
		Servers:    []Server{{URL: url}},
		Paths:      paths,
		Components: Components{Schemas: createSchemas()},
	}
}
