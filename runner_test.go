package neorecipe

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type runnerCall struct {
	query  string
	params map[string]any
}

type runnerStep struct {
	result *neo4j.EagerResult
	err    error
}

// fakeRunner replays scripted results in order and records every call.
type fakeRunner struct {
	steps []runnerStep
	calls []runnerCall
}

func (f *fakeRunner) Run(_ context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	f.calls = append(f.calls, runnerCall{query: query, params: params})
	if len(f.steps) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	step := f.steps[0]
	f.steps = f.steps[1:]
	return step.result, step.err
}

func (f *fakeRunner) returns(records ...*neo4j.Record) *fakeRunner {
	f.steps = append(f.steps, runnerStep{result: &neo4j.EagerResult{Records: records}})
	return f
}

func (f *fakeRunner) fails(err error) *fakeRunner {
	f.steps = append(f.steps, runnerStep{err: err})
	return f
}

// record builds a record from alternating key, value arguments.
func record(kv ...any) *neo4j.Record {
	rec := &neo4j.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		rec.Keys = append(rec.Keys, kv[i].(string))
		rec.Values = append(rec.Values, kv[i+1])
	}
	return rec
}

func node(id int64, label string, props map[string]any) neo4j.Node {
	return neo4j.Node{
		Id:        id,
		ElementId: fmt.Sprintf("4:test:%d", id),
		Labels:    []string{label},
		Props:     props,
	}
}

func uses(id, from, to int64, props map[string]any) neo4j.Relationship {
	return neo4j.Relationship{
		Id:             id,
		ElementId:      fmt.Sprintf("5:test:%d", id),
		StartId:        from,
		StartElementId: fmt.Sprintf("4:test:%d", from),
		EndId:          to,
		EndElementId:   fmt.Sprintf("4:test:%d", to),
		Type:           "USES",
		Props:          props,
	}
}

// recipeRecord builds one row of the flat recipe projection. Pass nil
// ingredientID for the null row of a recipe without elements.
func recipeRecord(recipeID int64, recipeName string, ingredientID any, ingredientName any, elementID any, amount any, unit any) *neo4j.Record {
	return record(
		colRecipeID, recipeID,
		colRecipeName, recipeName,
		colRecipeDescription, nil,
		colRecipeInstructions, nil,
		colRecipeImage, nil,
		colIngredientID, ingredientID,
		colIngredientName, ingredientName,
		colElementID, elementID,
		colAmount, amount,
		colUnit, unit,
	)
}

// mapRow is a minimal Row for assembler tests.
type mapRow map[string]any

func (m mapRow) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func strPtr(s string) *string {
	return &s
}
