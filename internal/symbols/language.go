package symbols

// Language identifies a grammar the extractor can load.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
)

// extensionLanguages is the grammar-selection table: file extension to
// grammar, including fallbacks for dialect extensions that reuse another
// grammar (.jsx parses with the JavaScript grammar, .kts with Kotlin).
// This is a living table; extend it as grammars are added.
var extensionLanguages = map[string]Language{
	".go":   LangGo,
	".js":   LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".jsx":  LangJavaScript,
	".ts":   LangTypeScript,
	".mts":  LangTypeScript,
	".cts":  LangTypeScript,
	".tsx":  LangTSX,
	".py":   LangPython,
	".pyw":  LangPython,
	".rs":   LangRust,
	".java": LangJava,
	".kt":   LangKotlin,
	".kts":  LangKotlin,
}

// LanguageFromExtension selects the grammar for a file extension
// (lower-cased, with leading dot). ok is false for unsupported files.
func LanguageFromExtension(ext string) (Language, bool) {
	lang, ok := extensionLanguages[ext]
	return lang, ok
}
