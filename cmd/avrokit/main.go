package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/compile"
	"github.com/reoring/avrokit/schema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "encode":
		encodeCmd(os.Args[2:])
	case "decode":
		decodeCmd(os.Args[2:])
	case "check":
		checkCmd(os.Args[2:])
	case "fingerprint":
		fingerprintCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "avrokit CLI\n\nUsage:\n"+
		"  avrokit encode -schema S.avsc [-in data.json] [-o out.bin] [-block-count N] [-block-size]\n"+
		"  avrokit decode -schema WRITER.avsc [-reader READER.avsc] [-in in.bin] [-o out.json]\n"+
		"  avrokit check -writer W.avsc -reader R.avsc\n"+
		"  avrokit fingerprint -schema S.avsc\n\n"+
		"Notes:\n"+
		"  - Schemas ending in .yaml or .yml are read as YAML.\n"+
		"  - encode reads a sequence of JSON values and writes their binary encodings back to back;\n"+
		"    decode reverses it.")
}

func encodeCmd(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	var schemaPath, in, out string
	var opt avrokit.WriteOpt
	var verbose bool
	fs.StringVar(&schemaPath, "schema", "", "schema file (JSON or YAML)")
	fs.StringVar(&in, "in", "", "JSON input (default stdin)")
	fs.StringVar(&out, "o", "", "binary output (default stdout)")
	fs.IntVar(&opt.BlockCount, "block-count", 0, "max items per array/map block (0: one block)")
	fs.BoolVar(&opt.WriteBlockSize, "block-size", false, "prefix blocks with their byte size")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	logf := logger(verbose)

	s := loadSchema(schemaPath)
	w, err := compile.Writer(s, opt)
	if err != nil {
		fatalf("compile: %v", err)
	}
	logf("encode: schema=%s fingerprint=%016x opt=%+v", schemaPath, schema.Fingerprint64(s), opt)

	r := openInput(in)
	defer r.Close()
	dst, flush := openOutput(out)
	defer flush()

	dec := json.NewDecoder(r)
	dec.UseNumber()
	n := 0
	for {
		var raw any
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fatalf("value %d: %v", n, err)
		}
		v, err := schema.ValueFromJSON(s, raw)
		if err != nil {
			fatalf("value %d: %v", n, err)
		}
		b, err := avrokit.Marshal(w, v)
		if err != nil {
			if iss, ok := avrokit.AsIssues(err); ok {
				for _, line := range iss.Strings() {
					fmt.Fprintf(os.Stderr, "value %d: %s\n", n, line)
				}
				os.Exit(1)
			}
			fatalf("value %d: %v", n, err)
		}
		if _, err := dst.Write(b); err != nil {
			fatalf("write: %v", err)
		}
		logf("value %d: %d bytes", n, len(b))
		n++
	}
	logf("encoded %d values", n)
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var schemaPath, readerPath, in, out string
	var verbose bool
	fs.StringVar(&schemaPath, "schema", "", "writer schema file (JSON or YAML)")
	fs.StringVar(&readerPath, "reader", "", "reader schema file (default: the writer schema)")
	fs.StringVar(&in, "in", "", "binary input (default stdin)")
	fs.StringVar(&out, "o", "", "JSON output (default stdout)")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	logf := logger(verbose)

	ws := loadSchema(schemaPath)
	rs := ws
	if readerPath != "" {
		rs = loadSchema(readerPath)
	}
	r, err := compile.Reader(ws, rs)
	if err != nil {
		fatalf("compile: %v", err)
	}

	src := openInput(in)
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		fatalf("read: %v", err)
	}
	dst, flush := openOutput(out)
	defer flush()

	buf := avrokit.NewBuffer(data)
	enc := json.NewEncoder(dst)
	n := 0
	for buf.Len() > 0 {
		start := buf.Offset()
		v, err := r.Read(buf)
		if err != nil {
			fatalf("value %d at offset %d: %v", n, start, err)
		}
		raw, err := toRaw(rs, v)
		if err != nil {
			fatalf("value %d: %v", n, err)
		}
		j, err := schema.ValueToJSON(rs, raw)
		if err != nil {
			fatalf("value %d: %v", n, err)
		}
		if err := enc.Encode(j); err != nil {
			fatalf("write: %v", err)
		}
		logf("value %d: %d bytes", n, buf.Offset()-start)
		n++
	}
	logf("decoded %d values", n)
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var writerPath, readerPath string
	fs.StringVar(&writerPath, "writer", "", "writer schema file")
	fs.StringVar(&readerPath, "reader", "", "reader schema file")
	_ = fs.Parse(args)
	if writerPath == "" || readerPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	if _, err := compile.Reader(loadSchema(writerPath), loadSchema(readerPath)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("compatible")
}

func fingerprintCmd(args []string) {
	fs := flag.NewFlagSet("fingerprint", flag.ExitOnError)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "schema file")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	s := loadSchema(schemaPath)
	fmt.Println(schema.Canonical(s))
	fmt.Printf("%016x\n", schema.Fingerprint64(s))
}

func loadSchema(path string) *schema.Schema {
	text, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading schema: %v", err)
	}
	var raw any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = schema.ParseYAML(text)
	default:
		raw, err = schema.Parse(text)
	}
	if err != nil {
		fatalf("%s: %v", path, err)
	}
	s, err := schema.Normalize(raw)
	if err != nil {
		fatalf("%s: %v", path, err)
	}
	return s
}

func openInput(path string) io.ReadCloser {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		fatalf("opening input: %v", err)
	}
	return f
}

func openOutput(path string) (io.Writer, func()) {
	f := os.Stdout
	if path != "" && path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fatalf("creating output dir: %v", err)
		}
		var err error
		if f, err = os.Create(path); err != nil {
			fatalf("creating output: %v", err)
		}
	}
	bw := bufio.NewWriter(f)
	return bw, func() {
		if err := bw.Flush(); err != nil {
			fatalf("flush: %v", err)
		}
		if f != os.Stdout {
			_ = f.Close()
		}
	}
}

func logger(verbose bool) func(format string, a ...any) {
	return func(format string, a ...any) {
		if verbose {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		}
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
