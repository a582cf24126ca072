package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Лексические
	LexInfo                Code = 1000
	LexUnknownChar         Code = 1001
	LexUnterminatedString  Code = 1002
	LexUnterminatedChar    Code = 1003
	LexBadNumber           Code = 1004
	LexBadCharLiteral      Code = 1005
	LexUnterminatedComment Code = 1006

	// Синтаксические
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectSemicolon   Code = 2002
	SynExpectExpression  Code = 2003
	SynExpectIdentifier  Code = 2004
	SynExpectType        Code = 2005
	SynExpectLParen      Code = 2006
	SynExpectRParen      Code = 2007
	SynExpectLBrace      Code = 2008
	SynExpectRBrace      Code = 2009
	SynExpectRBracket    Code = 2010
	SynExpectColon       Code = 2011
	SynExpectWhile       Code = 2012
	SynBadForHeader      Code = 2013
	SynDuplicateName     Code = 2014
	SynBadDeclaration    Code = 2015
	SynStrayElse         Code = 2016
	SynTooDeep           Code = 2017
	SynExpectCaseLabel   Code = 2018
	SynUnterminatedScope Code = 2019

	// Анализ потока значений: движок не жалуется на анализируемый код, эти
	// коды существуют для отладочных сводок и саморепортов пайплайна.
	FlowInfo          Code = 3000
	FlowBailout       Code = 3001
	FlowContradiction Code = 3002

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Ошибки манифеста проекта
	ProjInfo            Code = 5000
	ProjBadManifest     Code = 5001
	ProjUnknownPlatform Code = 5002
	ProjBadLibrary      Code = 5003

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	LexInfo:                "Lexical information",
	LexUnknownChar:         "Unknown character",
	LexUnterminatedString:  "Unterminated string",
	LexUnterminatedChar:    "Unterminated character literal",
	LexBadNumber:           "Bad number",
	LexBadCharLiteral:      "Bad character literal",
	LexUnterminatedComment: "Unterminated comment",
	SynInfo:                "Syntax information",
	SynUnexpectedToken:     "Unexpected token",
	SynExpectSemicolon:     "Expect semicolon",
	SynExpectExpression:    "Expect expression",
	SynExpectIdentifier:    "Expect identifier",
	SynExpectType:          "Expect type",
	SynExpectLParen:        "Expect '('",
	SynExpectRParen:        "Expect ')'",
	SynExpectLBrace:        "Expect '{'",
	SynExpectRBrace:        "Expect '}'",
	SynExpectRBracket:      "Expect ']'",
	SynExpectColon:         "Expect ':'",
	SynExpectWhile:         "Expect 'while' after do-body",
	SynBadForHeader:        "Malformed for-loop header",
	SynDuplicateName:       "Duplicate name in scope",
	SynBadDeclaration:      "Malformed declaration",
	SynStrayElse:           "'else' without matching 'if'",
	SynTooDeep:             "Nesting too deep",
	SynExpectCaseLabel:     "Expect 'case' or 'default' label",
	SynUnterminatedScope:   "Unterminated scope",
	FlowInfo:               "Value-flow information",
	FlowBailout:            "Value-flow bailout",
	FlowContradiction:      "Value-flow contradiction",
	IOLoadFileError:        "I/O load file error",
	IOCacheError:           "Analysis cache error",
	ProjInfo:               "Project information",
	ProjBadManifest:        "Malformed project manifest",
	ProjUnknownPlatform:    "Unknown platform name",
	ProjBadLibrary:         "Malformed library file",
	ObsInfo:                "Observability information",
	ObsTimings:             "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FLW%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
