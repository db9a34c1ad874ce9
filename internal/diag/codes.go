package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                Code = 1000
	LexUnterminatedComment Code = 1001
	LexUnterminatedString  Code = 1002
	LexUnbalancedDelimiter Code = 1003

	// Annotation / attribute reconciliation
	AnnInfo                  Code = 2000
	AnnDeprecated            Code = 2001 // annotation has no matching attribute
	AnnRedundant             Code = 2002 // annotation duplicates an attribute
	AnnMissing               Code = 2003 // attribute has no matching annotation
	AnnMissingParameter      Code = 2004
	AnnInvalidValue          Code = 2005 // literal cannot be decoded
	AnnNonStaticClass        Code = 2006 // class reference is not Foo::class
	AnnMultipleDefaultTarget Code = 2007
	AnnDuplicateTarget       Code = 2008 // class and trait attribute for one target
	AnnKeyedRow              Code = 2009 // keyed data row cannot be written as @testWith
	AnnUnsupported           Code = 2010

	// Engine
	EngInfo                   Code = 3000
	EngUnsupportedDeclaration Code = 3001
	EngNotDocComment          Code = 3002
	EngConflict               Code = 3003
	EngPassLimit              Code = 3004

	// I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

type codeInfo struct {
	slug  string
	title string
}

var codeDescription = map[Code]codeInfo{
	UnknownCode:               {"Unknown", "Unknown error"},
	LexInfo:                   {"LexInfo", "Lexical information"},
	LexUnterminatedComment:    {"UnterminatedComment", "Unterminated comment"},
	LexUnterminatedString:     {"UnterminatedString", "Unterminated string"},
	LexUnbalancedDelimiter:    {"UnbalancedDelimiter", "Unbalanced delimiter"},
	AnnInfo:                   {"AnnotationInfo", "Annotation information"},
	AnnDeprecated:             {"DeprecatedAnnotation", "Annotation should be an attribute"},
	AnnRedundant:              {"RedundantAnnotation", "Annotation duplicates an attribute"},
	AnnMissing:                {"MissingAnnotation", "Attribute has no legacy annotation"},
	AnnMissingParameter:       {"MissingParameter", "Required parameter missing"},
	AnnInvalidValue:           {"InvalidValue", "Value cannot be decoded"},
	AnnNonStaticClass:         {"NonStaticClass", "Class reference is not static"},
	AnnMultipleDefaultTarget:  {"MultipleDefaultTarget", "More than one default target"},
	AnnDuplicateTarget:        {"DuplicateTarget", "Target covered as both class and trait"},
	AnnKeyedRow:               {"KeyedDataRow", "Keyed data row has no annotation form"},
	AnnUnsupported:            {"UnsupportedAnnotation", "Annotation form is not supported"},
	EngInfo:                   {"EngineInfo", "Engine information"},
	EngUnsupportedDeclaration: {"UnsupportedDeclaration", "Unsupported declaration kind"},
	EngNotDocComment:          {"NotDocComment", "Anchor is not a doc comment"},
	EngConflict:               {"EditConflict", "Edit conflicts with pending changes"},
	EngPassLimit:              {"PassLimit", "Fix loop did not reach a stable state"},
	IOLoadFileError:           {"LoadFile", "I/O load file error"},
	IOWriteFileError:          {"WriteFile", "I/O write file error"},
	ObsInfo:                   {"ObservabilityInfo", "Observability information"},
	ObsTimings:                {"Timings", "Pipeline timings"},
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ANN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("ENG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Slug is the stable machine-readable name of the code, e.g. "DeprecatedAnnotation".
func (c Code) Slug() string {
	info, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode].slug
	}
	return info.slug
}

func (c Code) Title() string {
	info, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode].title
	}
	return info.title
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
