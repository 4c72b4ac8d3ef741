package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/sourcelens/semindex/internal/block"
)

var phpLanguage = &sitterLanguage{
	language: sitter.NewLanguage(php.LanguagePHP()),
	tag:      "php",
	rules: map[string]rule{
		"class_declaration":     {blockType: block.TypeClass, nameField: "name", isContainer: true},
		"interface_declaration": {blockType: block.TypeInterface, nameField: "name", isContainer: true},
		"trait_declaration":     {blockType: block.TypeTrait, nameField: "name", isContainer: true},
		"enum_declaration":      {blockType: block.TypeEnum, nameField: "name", isContainer: true},
		"function_definition":   {blockType: block.TypeFunction, nameField: "name"},
		"method_declaration":    {blockType: block.TypeMethod, nameField: "name"},
	},
}
