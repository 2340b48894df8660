package ast

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ucc/internal/types"
)

// Decode reads a JSON-encoded typed AST, as produced by the external
// frontend. Every node is an object with a "kind" discriminator; types
// are rendered in the same notation the type system prints ("int",
// "float[4]", "char*").
func Decode(data []byte) (*Program, error) {
	node, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	prog, ok := node.(*Program)
	if !ok {
		return nil, fmt.Errorf("ast: root node must be a Program, got %T", node)
	}
	return prog, nil
}

func decodeNode(data []byte) (Node, error) {
	var envelope struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("ast: invalid node: %w", err)
	}

	switch envelope.Kind {
	case "Program":
		var shadow struct {
			Name  string            `json:"name"`
			Decls []json.RawMessage `json:"decls"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		prog := &Program{Name: shadow.Name}
		for _, raw := range shadow.Decls {
			decl, err := decodeNode(raw)
			if err != nil {
				return nil, err
			}
			prog.Decls = append(prog.Decls, decl)
		}
		return prog, nil

	case "VarDecl":
		var shadow struct {
			Name   string          `json:"name"`
			Type   string          `json:"type"`
			Init   json.RawMessage `json:"init"`
			Global bool            `json:"global"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		ty, err := ParseType(shadow.Type)
		if err != nil {
			return nil, err
		}
		decl := &VarDecl{Name: shadow.Name, Type: ty, Global: shadow.Global}
		if len(shadow.Init) > 0 {
			if decl.Init, err = decodeExpr(shadow.Init); err != nil {
				return nil, err
			}
		}
		return decl, nil

	case "FuncDef":
		var shadow struct {
			Name   string `json:"name"`
			Return string `json:"return"`
			Params []struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"params"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		ret, err := ParseType(shadow.Return)
		if err != nil {
			return nil, err
		}
		def := &FuncDef{Name: shadow.Name, Return: ret}
		for _, p := range shadow.Params {
			ty, err := ParseType(p.Type)
			if err != nil {
				return nil, err
			}
			def.Params = append(def.Params, Param{Name: p.Name, Type: ty})
		}
		body, err := decodeNode(shadow.Body)
		if err != nil {
			return nil, err
		}
		compound, ok := body.(*Compound)
		if !ok {
			return nil, fmt.Errorf("ast: function %s body must be a Compound", shadow.Name)
		}
		def.Body = compound
		return def, nil

	case "Compound":
		var shadow struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		block := &Compound{}
		for _, raw := range shadow.Items {
			item, err := decodeNode(raw)
			if err != nil {
				return nil, err
			}
			block.Items = append(block.Items, item)
		}
		return block, nil

	case "If":
		var shadow struct {
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(shadow.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeNode(shadow.Then)
		if err != nil {
			return nil, err
		}
		stmt := &If{Cond: cond, Then: then}
		if len(shadow.Else) > 0 {
			if stmt.Else, err = decodeNode(shadow.Else); err != nil {
				return nil, err
			}
		}
		return stmt, nil

	case "While":
		var shadow struct {
			Cond json.RawMessage `json:"cond"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(shadow.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(shadow.Body)
		if err != nil {
			return nil, err
		}
		return &While{Cond: cond, Body: body}, nil

	case "For":
		var shadow struct {
			Init json.RawMessage `json:"init"`
			Cond json.RawMessage `json:"cond"`
			Next json.RawMessage `json:"next"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		stmt := &For{}
		var err error
		if len(shadow.Init) > 0 {
			if stmt.Init, err = decodeNode(shadow.Init); err != nil {
				return nil, err
			}
		}
		if len(shadow.Cond) > 0 {
			if stmt.Cond, err = decodeExpr(shadow.Cond); err != nil {
				return nil, err
			}
		}
		if len(shadow.Next) > 0 {
			if stmt.Next, err = decodeNode(shadow.Next); err != nil {
				return nil, err
			}
		}
		if stmt.Body, err = decodeNode(shadow.Body); err != nil {
			return nil, err
		}
		return stmt, nil

	case "Break":
		return &Break{}, nil

	case "Return":
		var shadow struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		stmt := &Return{}
		if len(shadow.Value) > 0 {
			var err error
			if stmt.Value, err = decodeExpr(shadow.Value); err != nil {
				return nil, err
			}
		}
		return stmt, nil

	case "Print", "Read":
		var shadow struct {
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		args, err := decodeExprs(shadow.Args)
		if err != nil {
			return nil, err
		}
		if envelope.Kind == "Print" {
			return &Print{Args: args}, nil
		}
		return &Read{Args: args}, nil

	case "ExprStmt":
		var shadow struct {
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		x, err := decodeExpr(shadow.Expr)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: x}, nil

	case "ID":
		var shadow struct {
			Name   string `json:"name"`
			Type   string `json:"type"`
			Global bool   `json:"global"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		ty, err := ParseType(shadow.Type)
		if err != nil {
			return nil, err
		}
		return &ID{Name: shadow.Name, Type: ty, Global: shadow.Global}, nil

	case "Assignment":
		var shadow struct {
			Target json.RawMessage `json:"target"`
			Value  json.RawMessage `json:"value"`
			Type   string          `json:"type"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		target, err := decodeExpr(shadow.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(shadow.Value)
		if err != nil {
			return nil, err
		}
		ty, err := ParseType(shadow.Type)
		if err != nil {
			return nil, err
		}
		return &Assignment{Target: target, Value: value, Type: ty}, nil

	case "BinaryOp":
		var shadow struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Type  string          `json:"type"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		left, err := decodeExpr(shadow.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(shadow.Right)
		if err != nil {
			return nil, err
		}
		ty, err := ParseType(shadow.Type)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: shadow.Op, Left: left, Right: right, Type: ty}, nil

	case "UnaryOp", "AddressOp":
		var shadow struct {
			Op   string          `json:"op"`
			Expr json.RawMessage `json:"expr"`
			Type string          `json:"type"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		x, err := decodeExpr(shadow.Expr)
		if err != nil {
			return nil, err
		}
		ty, err := ParseType(shadow.Type)
		if err != nil {
			return nil, err
		}
		if envelope.Kind == "UnaryOp" {
			return &UnaryOp{Op: shadow.Op, X: x, Type: ty}, nil
		}
		return &AddressOp{Op: shadow.Op, X: x, Type: ty}, nil

	case "ArrayRef":
		var shadow struct {
			Array json.RawMessage `json:"array"`
			Index json.RawMessage `json:"index"`
			Type  string          `json:"type"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		array, err := decodeExpr(shadow.Array)
		if err != nil {
			return nil, err
		}
		index, err := decodeExpr(shadow.Index)
		if err != nil {
			return nil, err
		}
		ty, err := ParseType(shadow.Type)
		if err != nil {
			return nil, err
		}
		return &ArrayRef{Array: array, Index: index, Type: ty}, nil

	case "FuncCall":
		var shadow struct {
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
			Type   string            `json:"type"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		callee, err := decodeExpr(shadow.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(shadow.Args)
		if err != nil {
			return nil, err
		}
		ty, err := ParseType(shadow.Type)
		if err != nil {
			return nil, err
		}
		return &FuncCall{Callee: callee, Args: args, Type: ty}, nil

	case "InitList":
		var shadow struct {
			Items []json.RawMessage `json:"items"`
			Type  string            `json:"type"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		items, err := decodeExprs(shadow.Items)
		if err != nil {
			return nil, err
		}
		ty, err := ParseType(shadow.Type)
		if err != nil {
			return nil, err
		}
		return &InitList{Items: items, Type: ty}, nil

	case "IntConstant":
		var shadow struct {
			Value int `json:"value"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		return &IntConstant{Value: shadow.Value}, nil

	case "FloatConstant":
		var shadow struct {
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		return &FloatConstant{Value: shadow.Value}, nil

	case "CharConstant":
		var shadow struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		if len(shadow.Value) == 0 {
			return nil, fmt.Errorf("ast: empty char constant")
		}
		return &CharConstant{Value: []rune(shadow.Value)[0]}, nil

	case "BoolConstant":
		var shadow struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		return &BoolConstant{Value: shadow.Value}, nil

	case "StringConstant":
		var shadow struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil, err
		}
		return &StringConstant{Value: shadow.Value}, nil

	default:
		return nil, fmt.Errorf("ast: unknown node kind %q", envelope.Kind)
	}
}

func decodeExpr(data []byte) (Expr, error) {
	node, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(Expr)
	if !ok {
		return nil, fmt.Errorf("ast: %T is not an expression", node)
	}
	return expr, nil
}

func decodeExprs(raws []json.RawMessage) ([]Expr, error) {
	var exprs []Expr
	for _, raw := range raws {
		expr, err := decodeExpr(raw)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

// ParseType reads a type in the printed notation: a primitive name
// followed by any mix of "[n]" and "*" suffixes, applied left to right.
func ParseType(s string) (types.Type, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= 'a' && s[end] <= 'z') {
		end++
	}
	ty, ok := types.Primitive(s[:end])
	if !ok {
		return nil, fmt.Errorf("ast: unknown type %q", s)
	}

	rest := s[end:]
	for rest != "" {
		switch {
		case rest[0] == '*':
			ty = types.NewPointer(ty)
			rest = rest[1:]
		case rest[0] == '[':
			closing := strings.IndexByte(rest, ']')
			if closing < 0 {
				return nil, fmt.Errorf("ast: malformed array type %q", s)
			}
			length, err := strconv.Atoi(rest[1:closing])
			if err != nil {
				return nil, fmt.Errorf("ast: malformed array length in %q", s)
			}
			ty = types.NewArray(ty, length)
			rest = rest[closing+1:]
		default:
			return nil, fmt.Errorf("ast: malformed type %q", s)
		}
	}
	return ty, nil
}
