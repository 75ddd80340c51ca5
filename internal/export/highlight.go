package export

import (
	"html"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// The formatter is shared by every export; chroma formatters are
// read-only after construction.
var formatter = sync.OnceValue(func() *chromahtml.Formatter {
	return chromahtml.New(
		chromahtml.TabWidth(2),
		chromahtml.WithClasses(false),
	)
})

// HighlightCodeBlock renders a source block as highlighted HTML.
// Unknown or empty languages fall back to plain text. PHP snippets
// missing the opening tag get one injected, since the lexer otherwise
// treats the whole block as inline HTML.
func HighlightCodeBlock(source, lang string, inline bool, styleName string) string {
	if strings.EqualFold(lang, "php") && !strings.Contains(source, "<?php") {
		source = "<?php\n" + source
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return plainCode(source, inline)
	}

	var b strings.Builder
	if err := formatter().Format(&b, style, iterator); err != nil {
		return plainCode(source, inline)
	}
	if inline {
		return `<code>` + b.String() + `</code>`
	}
	return b.String()
}

func plainCode(source string, inline bool) string {
	escaped := html.EscapeString(source)
	if inline {
		return "<code>" + escaped + "</code>"
	}
	return "<pre>" + escaped + "</pre>"
}
