package driver

import (
	"attrsync/internal/diag"
	"attrsync/internal/lexer"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Snap    *token.Snapshot
	Bag     *diag.Bag
}

// Tokenize loads one file and lexes it, for debugging the lexer.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	bag := diag.NewBag(maxDiagnostics)
	snap := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Snap:    snap,
		Bag:     bag,
	}, nil
}
