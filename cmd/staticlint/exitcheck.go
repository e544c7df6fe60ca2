package main

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
)

// NoDirectOsExit запрещает os.Exit в main: приложение должно дождаться остановки сервера
// и сброса очереди кликов, а os.Exit пропускает отложенные вызовы.
// nolint:gochecknoglobals
var NoDirectOsExit = &analysis.Analyzer{
	Name: "nodirectosexit",
	Doc:  "check for direct os.Exit calls in main function",
	Run:  runNoDirectOsExit,
}

func runNoDirectOsExit(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil //nolint:nilnil
	}

	for _, file := range sourceFiles(pass, false) {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*ast.FuncDecl)
			if !ok || funcDecl.Recv != nil || funcDecl.Name.Name != "main" || funcDecl.Body == nil {
				continue
			}

			ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
				call, isCall := n.(*ast.CallExpr)
				if isCall && calleeIs(pass.TypesInfo, call, "os", "Exit") {
					reportAt(pass, call, "direct call os.Exit is not allowed in main function")
				}
				return true
			})
		}
	}

	return nil, nil //nolint:nilnil
}
