package main

import (
	"strconv"

	"golang.org/x/tools/go/analysis"
)

// forbiddenRandImports пакеты с предсказуемым генератором.
// nolint:gochecknoglobals
var forbiddenRandImports = map[string]bool{
	"math/rand":    true,
	"math/rand/v2": true,
}

// NoMathRand запрещает math/rand вне тестов: короткие коды и секреты берутся только из crypto/rand.
// nolint:gochecknoglobals
var NoMathRand = &analysis.Analyzer{
	Name: "nomathrand",
	Doc:  "check for math/rand imports outside of tests",
	Run:  runNoMathRand,
}

func runNoMathRand(pass *analysis.Pass) (interface{}, error) {
	for _, file := range sourceFiles(pass, false) {
		for _, imp := range file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil || !forbiddenRandImports[path] {
				continue
			}
			reportAt(pass, imp, "import of %s is not allowed, use crypto/rand", path)
		}
	}

	return nil, nil //nolint:nilnil
}
