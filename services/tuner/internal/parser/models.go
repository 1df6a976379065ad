package parser

type Language string

var (
	LanguagePython Language = "python"
	LanguageGo     Language = "go"
)

var languageExtensions = map[Language][]string{
	LanguagePython: {".py"},
	LanguageGo:     {".go"},
}

// Extensions lists the file extensions handled for a language.
func Extensions(language Language) []string {
	return languageExtensions[language]
}

type Limits struct {
	MinLines int
	MaxChars int
}
