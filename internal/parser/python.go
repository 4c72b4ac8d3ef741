package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/sourcelens/semindex/internal/block"
)

var pythonLanguage = &sitterLanguage{
	language: sitter.NewLanguage(python.Language()),
	tag:      "python",
	rules: map[string]rule{
		"class_definition":    {blockType: block.TypeClass, nameField: "name", isContainer: true},
		"function_definition": {blockType: block.TypeFunction, nameField: "name"},
	},
}
