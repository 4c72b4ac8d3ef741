package parser

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/sourcelens/semindex/internal/block"
)

// parseGo extracts top-level declarations from a Go source file using
// go/parser + go/ast, the same standard-library approach the teacher
// uses for its own Go-file path (tree-sitter covers every other
// language; Go parses itself).
func parseGo(file string, source []byte) ([]block.CodeBlock, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, source, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(source), "\n")
	var blocks []block.CodeBlock

	ast.Inspect(f, func(n ast.Node) bool {
		switch decl := n.(type) {
		case *ast.GenDecl:
			blocks = append(blocks, genDeclBlocks(decl, fset, lines, file)...)
			return false
		case *ast.FuncDecl:
			blocks = append(blocks, funcDeclBlock(decl, fset, lines, file))
			return false
		}
		return true
	})

	return blocks, nil
}

func genDeclBlocks(decl *ast.GenDecl, fset *token.FileSet, lines []string, file string) []block.CodeBlock {
	var blocks []block.CodeBlock
	for _, spec := range decl.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			blocks = append(blocks, typeSpecBlock(s, decl, fset, lines, file))
		case *ast.ValueSpec:
			blocks = append(blocks, valueSpecBlocks(s, decl, fset, lines, file)...)
		}
	}
	return blocks
}

func typeSpecBlock(spec *ast.TypeSpec, decl *ast.GenDecl, fset *token.FileSet, lines []string, file string) block.CodeBlock {
	start := fset.Position(spec.Pos()).Line
	end := fset.Position(spec.End()).Line

	typ := block.TypeTypeAlias
	switch spec.Type.(type) {
	case *ast.StructType:
		typ = block.TypeStruct
	case *ast.InterfaceType:
		typ = block.TypeInterface
	}

	return block.CodeBlock{
		File:     file,
		Line:     start,
		EndLine:  end,
		Code:     joinLines(lines, start, end),
		Type:     typ,
		Name:     spec.Name.Name,
		Language: "go",
		Metadata: block.Metadata{
			Visibility: goVisibility(spec.Name.Name),
			Comments:   commentText(docFor(decl, spec)),
		},
	}
}

func valueSpecBlocks(spec *ast.ValueSpec, decl *ast.GenDecl, fset *token.FileSet, lines []string, file string) []block.CodeBlock {
	typ := block.TypeVariable
	if decl.Tok == token.CONST {
		typ = block.TypeConstant
	}

	start := fset.Position(spec.Pos()).Line
	end := fset.Position(spec.End()).Line
	var retType string
	if spec.Type != nil {
		retType = strings.TrimSpace(joinLines(lines, fset.Position(spec.Type.Pos()).Line, fset.Position(spec.Type.End()).Line))
	}

	blocks := make([]block.CodeBlock, 0, len(spec.Names))
	for _, name := range spec.Names {
		blocks = append(blocks, block.CodeBlock{
			File:     file,
			Line:     start,
			EndLine:  end,
			Code:     joinLines(lines, start, end),
			Type:     typ,
			Name:     name.Name,
			Language: "go",
			Metadata: block.Metadata{
				ReturnType: retType,
				Visibility: goVisibility(name.Name),
				Comments:   commentText(docFor(decl, spec)),
			},
		})
	}
	return blocks
}

func funcDeclBlock(decl *ast.FuncDecl, fset *token.FileSet, lines []string, file string) block.CodeBlock {
	start := fset.Position(decl.Pos()).Line
	end := fset.Position(decl.End()).Line

	typ := block.TypeFunction
	name := decl.Name.Name
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		typ = block.TypeMethod
		recvType := strings.TrimSpace(exprString(decl.Recv.List[0].Type, fset, lines))
		recvType = strings.TrimPrefix(recvType, "*")
		name = recvType + "." + name
	}

	var params []string
	if decl.Type.Params != nil {
		for _, field := range decl.Type.Params.List {
			typeStr := exprString(field.Type, fset, lines)
			if len(field.Names) == 0 {
				params = append(params, typeStr)
				continue
			}
			for _, n := range field.Names {
				params = append(params, n.Name+" "+typeStr)
			}
		}
	}

	var retType string
	if decl.Type.Results != nil {
		var parts []string
		for _, field := range decl.Type.Results.List {
			parts = append(parts, exprString(field.Type, fset, lines))
		}
		retType = strings.Join(parts, ", ")
	}

	return block.CodeBlock{
		File:     file,
		Line:     start,
		EndLine:  end,
		Code:     joinLines(lines, start, end),
		Type:     typ,
		Name:     name,
		Language: "go",
		Metadata: block.Metadata{
			Parameters: params,
			ReturnType: retType,
			Visibility: goVisibility(decl.Name.Name),
			Comments:   commentText(decl.Doc),
			Complexity: estimateComplexity(joinLines(lines, start, end)),
		},
	}
}

func exprString(expr ast.Expr, fset *token.FileSet, lines []string) string {
	start, end := fset.Position(expr.Pos()), fset.Position(expr.End())
	if start.Line == end.Line && start.Line >= 1 && start.Line <= len(lines) {
		line := lines[start.Line-1]
		if start.Column >= 1 && start.Column <= end.Column && end.Column-1 <= len(line) {
			return strings.TrimSpace(line[start.Column-1 : end.Column-1])
		}
	}
	return strings.TrimSpace(joinLines(lines, start.Line, end.Line))
}

func docFor(decl *ast.GenDecl, spec ast.Spec) *ast.CommentGroup {
	if ts, ok := spec.(*ast.TypeSpec); ok && ts.Doc != nil {
		return ts.Doc
	}
	if vs, ok := spec.(*ast.ValueSpec); ok && vs.Doc != nil {
		return vs.Doc
	}
	return decl.Doc
}

func commentText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return strings.TrimSpace(cg.Text())
}

func goVisibility(name string) string {
	if name == "" {
		return ""
	}
	if name[0] >= 'A' && name[0] <= 'Z' {
		return "public"
	}
	return "private"
}
