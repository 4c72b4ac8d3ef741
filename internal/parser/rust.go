package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/sourcelens/semindex/internal/block"
)

var rustLanguage = &sitterLanguage{
	language: sitter.NewLanguage(rust.Language()),
	tag:      "rust",
	rules: map[string]rule{
		"struct_item":   {blockType: block.TypeStruct, nameField: "name"},
		"enum_item":     {blockType: block.TypeEnum, nameField: "name"},
		"trait_item":    {blockType: block.TypeTrait, nameField: "name", isContainer: true},
		"impl_item":     {blockType: block.TypeImpl, nameField: "type", isContainer: true},
		"function_item": {blockType: block.TypeFunction, nameField: "name"},
		"const_item":    {blockType: block.TypeConstant, nameField: "name"},
		"static_item":   {blockType: block.TypeVariable, nameField: "name"},
	},
}
