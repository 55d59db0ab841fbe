// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package graph

import (
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// JSON is a free-form scalar used by search conditions.
var JSON = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value.",
	Serialize:   func(value interface{}) interface{} { return value },
	ParseValue:  func(value interface{}) interface{} { return value },
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return literalValue(valueAST)
	},
})

// literalValue converts an inline GraphQL literal into plain Go values.
func literalValue(valueAST ast.Value) interface{} {
	switch value := valueAST.(type) {
	case *ast.StringValue:
		return value.Value
	case *ast.BooleanValue:
		return value.Value
	case *ast.EnumValue:
		return value.Value
	case *ast.IntValue:
		parsed, err := strconv.ParseInt(value.Value, 10, 64)
		if err != nil {
			return nil
		}
		return parsed
	case *ast.FloatValue:
		parsed, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			return nil
		}
		return parsed
	case *ast.ObjectValue:
		object := make(map[string]interface{}, len(value.Fields))
		for _, field := range value.Fields {
			object[field.Name.Value] = literalValue(field.Value)
		}
		return object
	case *ast.ListValue:
		list := make([]interface{}, 0, len(value.Values))
		for _, item := range value.Values {
			list = append(list, literalValue(item))
		}
		return list
	}
	return nil
}
