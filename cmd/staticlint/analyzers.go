package main

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/types/typeutil"
)

// sourceFiles файлы пакета, которые стоит проверять: без сгенерированных go build
// и, если withTests == false, без тестов.
func sourceFiles(pass *analysis.Pass, withTests bool) []*ast.File {
	files := make([]*ast.File, 0, len(pass.Files))
	for _, file := range pass.Files {
		filename := pass.Fset.Position(file.Pos()).Filename
		if strings.Contains(filename, "go-build") {
			continue
		}
		if !withTests && strings.HasSuffix(filename, "_test.go") {
			continue
		}
		files = append(files, file)
	}
	return files
}

// calleeIs вызывается ли функция pkgPath.name. Сравнение идет по типам,
// поэтому импорт под псевдонимом не спасает.
func calleeIs(info *types.Info, call *ast.CallExpr, pkgPath, name string) bool {
	fn, ok := typeutil.Callee(info, call).(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == pkgPath && fn.Name() == name
}

// reportAt сообщение с коротким именем файла и строкой, чтобы в выводе multichecker
// было видно место без полного пути.
func reportAt(pass *analysis.Pass, node ast.Node, format string, args ...any) {
	position := pass.Fset.Position(node.Pos())
	prefix := filepath.Base(position.Filename) + ":" + strconv.Itoa(position.Line) + ": "
	pass.Reportf(node.Pos(), prefix+format, args...)
}
