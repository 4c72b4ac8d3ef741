package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/sourcelens/semindex/internal/block"
)

// tsRules is the broader TS/JS extractor node list: beyond the baseline
// class/interface/type/function set, it also covers method_signature
// (interface method declarations), abstract_class_declaration,
// public_field_definition, and namespace/module declarations.
var tsRules = map[string]rule{
	"class_declaration":          {blockType: block.TypeClass, nameField: "name", isContainer: true},
	"abstract_class_declaration": {blockType: block.TypeClass, nameField: "name", isContainer: true},
	"interface_declaration":      {blockType: block.TypeInterface, nameField: "name", isContainer: true},
	"type_alias_declaration":     {blockType: block.TypeTypeAlias, nameField: "name"},
	"enum_declaration":           {blockType: block.TypeEnum, nameField: "name"},
	"function_declaration":       {blockType: block.TypeFunction, nameField: "name"},
	"method_definition":          {blockType: block.TypeMethod, nameField: "name"},
	"method_signature":           {blockType: block.TypeMethod, nameField: "name"},
	"public_field_definition":    {blockType: block.TypeVariable, nameField: "name"},
	"internal_module":            {blockType: block.TypeNamespace, nameField: "name", isContainer: true},
	"module":                     {blockType: block.TypeNamespace, nameField: "name", isContainer: true},
}

var typescriptLanguage = &sitterLanguage{
	language:            sitter.NewLanguage(typescript.LanguageTypescript()),
	tag:                 "typescript",
	rules:               tsRules,
	testBlockRecognizer: recognizeTestBlock,
}

var tsxLanguage = &sitterLanguage{
	language:            sitter.NewLanguage(typescript.LanguageTSX()),
	tag:                 "typescript",
	rules:               tsRules,
	testBlockRecognizer: recognizeTestBlock,
}

// javascriptLanguage reuses the TypeScript grammar, matching the
// teacher's JavaScriptParser (same AST shape, different language tag).
var javascriptLanguage = &sitterLanguage{
	language:            sitter.NewLanguage(typescript.LanguageTypescript()),
	tag:                 "javascript",
	rules:               tsRules,
	testBlockRecognizer: recognizeTestBlock,
}

// testBlockFuncs names the Jest/Mocha/Jasmine call forms that introduce
// a named test block: describe/it/test, their .only/.skip variants, and
// suite (Mocha's alternate top-level grouping).
var testBlockFuncs = map[string]bool{
	"describe": true, "it": true, "test": true, "suite": true,
}

// recognizeTestBlock matches `describe("name", fn)`-shaped calls, where
// the block's name lives in a string-literal first argument rather
// than a named AST field, so it can't be expressed as a plain rule
// entry. Handles both bare identifiers (describe(...)) and member
// expressions (describe.only(...), it.skip(...)).
func recognizeTestBlock(n *sitter.Node, source []byte) (string, bool) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}

	funcName := fn.Kind()
	switch fn.Kind() {
	case "identifier":
		funcName = nodeText(fn, source)
	case "member_expression":
		obj := fn.ChildByFieldName("object")
		if obj == nil || obj.Kind() != "identifier" {
			return "", false
		}
		funcName = nodeText(obj, source)
	default:
		return "", false
	}
	if !testBlockFuncs[funcName] {
		return "", false
	}

	args := n.ChildByFieldName("arguments")
	if args == nil {
		return "", false
	}
	for i := range int(args.ChildCount()) {
		child := args.Child(uint(i))
		if child == nil {
			continue
		}
		if child.Kind() == "string" || child.Kind() == "template_string" {
			name := strings.Trim(nodeText(child, source), "\"'`")
			if name == "" {
				return "", false
			}
			return funcName + ": " + name, true
		}
	}
	return "", false
}
