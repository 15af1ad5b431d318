package atom

// CommonStrings lists TypeScript/JavaScript keywords and frequently occurring
// identifiers, pre-interned by InternCommon so that checking the first real
// source file does not pay the allocation cost for names almost every file
// uses (keywords, lib.d.ts globals, React-ish event handler names).
var CommonStrings = []string{
	// Keywords and contextual keywords.
	"break", "case", "catch", "class", "const", "continue", "debugger",
	"default", "delete", "do", "else", "enum", "export", "extends", "false",
	"finally", "for", "function", "if", "import", "in", "instanceof", "new",
	"null", "return", "super", "switch", "this", "throw", "true", "try",
	"typeof", "undefined", "var", "void", "while", "with", "as", "implements",
	"interface", "let", "package", "private", "protected", "public", "static",
	"yield", "any", "boolean", "number", "string", "symbol", "type", "from",
	"of", "async", "await", "unknown", "never", "object", "bigint", "readonly",
	"keyof", "infer", "is", "asserts", "satisfies",

	// Common property / identifier names.
	"id", "name", "value", "length", "key", "index", "item", "data", "error",
	"result", "response", "request", "options", "config", "props", "state",
	"children", "onClick", "onChange", "onSubmit", "constructor", "prototype",
	"toString", "valueOf", "hasOwnProperty",

	// Global lib.d.ts constructors.
	"Array", "Object", "String", "Number", "Boolean", "Function", "Promise",
	"Map", "Set", "Date", "RegExp", "Error", "Symbol",

	// Common globals.
	"console", "log", "warn", "info", "debug", "document", "window", "global",
	"process", "module", "exports", "require", "define", "__dirname",
	"__filename",
}
