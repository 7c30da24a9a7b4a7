package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	jsonelem "github.com/reoring/jsonelem"
	"github.com/reoring/jsonelem/yamldoc"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "assemble":
		assembleCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "schema":
		schemaCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "jsonelem CLI\n\nUsage:\n  jsonelem assemble -defs types.yaml -doc tree.yaml [-prev prev.json]\n  jsonelem diff -a prev.json -b next.json\n  jsonelem schema -defs types.yaml -type name\n\nNotes:\n  - assemble prints the derived JSON; with -prev it prints an RFC 6902 patch instead.")
}

func assembleCmd(args []string) {
	fs := flag.NewFlagSet("assemble", flag.ExitOnError)
	var defsPath, docPath, prevPath string
	fs.StringVar(&defsPath, "defs", "", "YAML file of element type definitions")
	fs.StringVar(&docPath, "doc", "", "YAML file of the element tree")
	fs.StringVar(&prevPath, "prev", "", "optional previous JSON snapshot to diff against")
	_ = fs.Parse(args)
	if defsPath == "" || docPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	reg := loadDefs(defsPath)
	doc, err := os.Open(docPath)
	if err != nil {
		fatalf("open doc: %v", err)
	}
	defer doc.Close()
	loop := jsonelem.NewLoop()
	el, err := yamldoc.LoadDocument(doc, reg, loop)
	if err != nil {
		fatalf("load doc: %v", err)
	}
	loop.Settle()
	v, err := el.JSON(context.Background())
	if err != nil {
		fatalf("assemble: %v", err)
	}

	if prevPath != "" {
		prevBytes, err := os.ReadFile(prevPath)
		if err != nil {
			fatalf("read prev: %v", err)
		}
		var prev any
		if err := json.Unmarshal(prevBytes, &prev); err != nil {
			fatalf("parse prev: %v", err)
		}
		printJSON(jsonelem.Diff(prev, v))
		return
	}
	// marshal through the element so keys keep declaration order
	out, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		fatalf("marshal: %v", err)
	}
	fmt.Println(string(out))
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	var aPath, bPath string
	fs.StringVar(&aPath, "a", "", "previous JSON document")
	fs.StringVar(&bPath, "b", "", "next JSON document")
	_ = fs.Parse(args)
	if aPath == "" || bPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	printJSON(jsonelem.Diff(loadJSON(aPath), loadJSON(bPath)))
}

func schemaCmd(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var defsPath, typeName string
	fs.StringVar(&defsPath, "defs", "", "YAML file of element type definitions")
	fs.StringVar(&typeName, "type", "", "root type name to project")
	_ = fs.Parse(args)
	if defsPath == "" || typeName == "" {
		fs.Usage()
		os.Exit(2)
	}
	reg := loadDefs(defsPath)
	s, err := reg.JSONSchema(typeName)
	if err != nil {
		fatalf("schema: %v", err)
	}
	printJSON(s)
}

func loadDefs(path string) *jsonelem.Registry {
	f, err := os.Open(path)
	if err != nil {
		fatalf("open defs: %v", err)
	}
	defer f.Close()
	reg := jsonelem.NewRegistry()
	if err := yamldoc.LoadDefinitions(f, reg); err != nil {
		fatalf("load defs: %v", err)
	}
	return reg
}

func loadJSON(path string) any {
	b, err := os.ReadFile(path)
	if err != nil {
		fatalf("read %s: %v", path, err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		fatalf("parse %s: %v", path, err)
	}
	return v
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("marshal: %v", err)
	}
	fmt.Println(string(out))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
