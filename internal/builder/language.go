package builder

import (
	"path/filepath"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language is a source language the Builder knows how to parse.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
)

// extensionLanguages maps a file extension to its Language. JSON and
// Markdown are deliberately absent: the spec excludes them from parsing.
var extensionLanguages = map[string]Language{
	".ts":  LangTypeScript,
	".tsx": LangTSX,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".mjs": LangJavaScript,
	".py":  LangPython,
}

// LanguageForPath returns the Language a path should be parsed as, and
// whether one was found.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extensionLanguages[filepath.Ext(path)]
	return lang, ok
}

var languageCache = map[Language]*tree_sitter.Language{}

// grammar returns the cached tree-sitter grammar for lang, constructing it
// on first use.
func grammar(lang Language) *tree_sitter.Language {
	if g, ok := languageCache[lang]; ok {
		return g
	}
	var g *tree_sitter.Language
	switch lang {
	case LangTypeScript:
		g = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case LangTSX:
		g = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	case LangJavaScript:
		g = tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	case LangPython:
		g = tree_sitter.NewLanguage(tree_sitter_python.Language())
	default:
		return nil
	}
	languageCache[lang] = g
	return g
}
