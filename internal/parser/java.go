package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/sourcelens/semindex/internal/block"
)

var javaLanguage = &sitterLanguage{
	language: sitter.NewLanguage(java.Language()),
	tag:      "java",
	rules: map[string]rule{
		"class_declaration":       {blockType: block.TypeClass, nameField: "name", isContainer: true},
		"interface_declaration":   {blockType: block.TypeInterface, nameField: "name", isContainer: true},
		"enum_declaration":        {blockType: block.TypeEnum, nameField: "name", isContainer: true},
		"record_declaration":      {blockType: block.TypeStruct, nameField: "name", isContainer: true},
		"method_declaration":      {blockType: block.TypeMethod, nameField: "name"},
		"constructor_declaration": {blockType: block.TypeMethod, nameField: "name"},
	},
}
