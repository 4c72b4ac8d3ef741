package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"

	"github.com/sourcelens/semindex/internal/block"
)

var rubyLanguage = &sitterLanguage{
	language: sitter.NewLanguage(ruby.Language()),
	tag:      "ruby",
	rules: map[string]rule{
		"class":  {blockType: block.TypeClass, nameField: "name", isContainer: true},
		"module": {blockType: block.TypeNamespace, nameField: "name", isContainer: true},
		"method": {blockType: block.TypeFunction, nameField: "name"},
	},
}
