package export

import (
	"strings"

	"github.com/niklasfasching/go-org/org"

	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/orgdoc"
)

// Macro is an author-defined parameterized snippet, declared anywhere
// in the document as a macro block:
//
//	#+begin_macro greet name surname
//	hello {{name}} {{surname}}
//	#+end_macro
//
// and invoked inline as {{{greet(Ann, Lee)}}}. Parameter names may be
// written with a leading $ in the declaration line.
type Macro struct {
	Name   string
	Params []string
	Body   string
}

// Macros is the set of macro definitions collected from a document.
type Macros struct {
	defs map[string]Macro
}

// ParseMacros walks the document and collects every macro block.
// Later definitions with the same name replace earlier ones.
func ParseMacros(doc *orgdoc.Document) *Macros {
	defs := map[string]Macro{}
	orgdoc.WalkAll(doc.Nodes, func(n org.Node) bool {
		block, ok := n.(org.Block)
		if !ok || block.Name != "MACRO" {
			return true
		}
		// The declaration line arrives as a single parameter string.
		fields := strings.Fields(strings.Join(block.Parameters, " "))
		if len(fields) == 0 {
			return true
		}
		name := fields[0]
		params := make([]string, 0, len(fields)-1)
		for _, p := range fields[1:] {
			params = append(params, strings.TrimPrefix(p, "$"))
		}
		defs[name] = Macro{
			Name:   name,
			Params: params,
			Body:   strings.TrimSpace(rawText(block.Children)),
		}
		return false
	})
	return &Macros{defs: defs}
}

// Get looks up a macro by name.
func (m *Macros) Get(name string) (Macro, bool) {
	if m == nil {
		return Macro{}, false
	}
	def, ok := m.defs[name]
	return def, ok
}

// Len reports the number of defined macros.
func (m *Macros) Len() int {
	if m == nil {
		return 0
	}
	return len(m.defs)
}

// Expand substitutes the call arguments into the macro body. The
// argument count must match the declared parameters exactly; a
// mismatch is a fatal export error.
func (mac Macro) Expand(args []string) (string, error) {
	// {{{m()}}} parses as a single empty argument.
	if len(mac.Params) == 0 && len(args) == 1 && strings.TrimSpace(args[0]) == "" {
		args = nil
	}
	if len(args) != len(mac.Params) {
		return "", errors.Newf(errors.CategoryExport, errors.SeverityFatal,
			"macro %q expects %d arguments, got %d", mac.Name, len(mac.Params), len(args))
	}
	out := mac.Body
	for i, p := range mac.Params {
		arg := strings.TrimSpace(args[i])
		out = strings.ReplaceAll(out, "{{"+p+"}}", arg)
		out = strings.ReplaceAll(out, "$"+p, arg)
	}
	return out, nil
}

// rawText flattens the text content of a node list, joining text runs
// with newlines. Used for macro bodies and footnote definitions where
// markup is not re-rendered.
func rawText(nodes []org.Node) string {
	var parts []string
	orgdoc.WalkAll(nodes, func(n org.Node) bool {
		if t, ok := n.(org.Text); ok {
			parts = append(parts, t.Content)
		}
		return true
	})
	return strings.Join(parts, "\n")
}
