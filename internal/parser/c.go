package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/sourcelens/semindex/internal/block"
)

// cRules covers struct/enum/typedef declarations and function
// definitions; unions and declaration-only prototypes are not
// extracted. C has no class concept.
var cRules = map[string]rule{
	"struct_specifier":    {blockType: block.TypeStruct, nameField: "name"},
	"enum_specifier":      {blockType: block.TypeEnum, nameField: "name"},
	"type_definition":     {blockType: block.TypeTypeAlias, nameField: "declarator"},
	"function_definition": {blockType: block.TypeFunction, nameField: "declarator"},
}

var cLanguage = &sitterLanguage{
	language: sitter.NewLanguage(c.Language()),
	tag:      "c",
	rules:    cRules,
}

// cppLanguage reuses the C grammar for .cpp/.cc/.hpp files, matching the
// teacher's extension-based language tagging.
var cppLanguage = &sitterLanguage{
	language: sitter.NewLanguage(c.Language()),
	tag:      "cpp",
	rules:    cRules,
}
