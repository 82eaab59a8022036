// gen_builtin_index scans the builtin registry source and writes a JSON
// index of every registered builtin predicate IRI, keyed by namespace.
// The index is documentation tooling only; the engine never reads it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"
)

type BuiltinEntry struct {
	Predicate string `json:"predicate"`
	Namespace string `json:"namespace"`
	Func      string `json:"func"`
}

// namespaces mirrors the NS* constants in internal/builtins; the scanner
// resolves the `NSMath + "sum"` key expressions against this table.
var namespaces = map[string]string{
	"NSLog":    "http://www.w3.org/2000/10/swap/log#",
	"NSMath":   "http://www.w3.org/2000/10/swap/math#",
	"NSString": "http://www.w3.org/2000/10/swap/string#",
	"NSList":   "http://www.w3.org/2000/10/swap/list#",
	"NSTime":   "http://www.w3.org/2000/10/swap/time#",
	"NSCrypto": "http://www.w3.org/2000/10/swap/crypto#",
	"NSRDF":    "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
}

func main() {
	srcPath := flag.String("src", "internal/builtins/registry.go", "registry source file to scan")
	outPath := flag.String("out", "builtin_index.json", "output JSON file")
	flag.Parse()

	src, err := os.ReadFile(*srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading source: %v\n", err)
		os.Exit(2)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, *srcPath, src, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing source: %v\n", err)
		os.Exit(2)
	}

	var entries []BuiltinEntry
	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok || len(vs.Names) == 0 || vs.Names[0].Name != "registry" {
			return true
		}
		for _, v := range vs.Values {
			cl, ok := v.(*ast.CompositeLit)
			if !ok {
				continue
			}
			for _, elt := range cl.Elts {
				kv, ok := elt.(*ast.KeyValueExpr)
				if !ok {
					continue
				}
				ns, local, ok := splitKey(kv.Key)
				if !ok {
					continue
				}
				entries = append(entries, BuiltinEntry{
					Predicate: namespaces[ns] + local,
					Namespace: ns,
					Func:      funcName(kv.Value),
				})
			}
		}
		return false
	})

	sort.Slice(entries, func(i, j int) bool { return entries[i].Predicate < entries[j].Predicate })

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error encoding json: %v\n", err)
		os.Exit(2)
	}
	if err := os.WriteFile(*outPath, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing output: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("wrote %d builtin entries to %s\n", len(entries), *outPath)
}

// splitKey decomposes a `NSMath + "sum"`-shaped registry key into its
// namespace identifier and local-name literal.
func splitKey(e ast.Expr) (ns, local string, ok bool) {
	be, isBin := e.(*ast.BinaryExpr)
	if !isBin || be.Op != token.ADD {
		return "", "", false
	}
	id, isIdent := be.X.(*ast.Ident)
	lit, isLit := be.Y.(*ast.BasicLit)
	if !isIdent || !isLit || lit.Kind != token.STRING {
		return "", "", false
	}
	if _, known := namespaces[id.Name]; !known {
		return "", "", false
	}
	return id.Name, strings.Trim(lit.Value, `"`), true
}

// funcName renders the registry value expression: a plain identifier
// (mathSum) or a constructor call (mathTrig("sin")) rendered with its
// first string argument.
func funcName(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.Ident:
		return v.Name
	case *ast.CallExpr:
		name := ""
		if id, ok := v.Fun.(*ast.Ident); ok {
			name = id.Name
		}
		for _, arg := range v.Args {
			if lit, ok := arg.(*ast.BasicLit); ok && lit.Kind == token.STRING {
				return name + "(" + lit.Value + ")"
			}
		}
		return name
	default:
		return ""
	}
}
