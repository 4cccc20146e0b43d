//go:build js && wasm

// Command wasm exposes the resolver to JavaScript hosts that have no file
// system of their own.  The host hands over its documents as a path to
// content mapping and gets the resolved definitions back as JSON.
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/panyam/graphqxl/loader"
)

type resolveResult struct {
	Success     bool                `json:"success"`
	Error       string              `json:"error,omitempty"`
	Files       []string            `json:"files,omitempty"`
	Definitions []loader.DefSummary `json:"definitions,omitempty"`
}

// resolve(files: {[path: string]: string}, entry: string, keyGen?: string): string
func resolve(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return encode(resolveResult{Error: "usage: graphqxlResolve(files, entry, [keyGen])"})
	}
	files := map[string]string{}
	keys := js.Global().Get("Object").Call("keys", args[0])
	for i := 0; i < keys.Length(); i++ {
		name := keys.Index(i).String()
		files[name] = args[0].Get(name).String()
	}
	kind := "uuid"
	if len(args) > 2 && args[2].Type() == js.TypeString {
		kind = args[2].String()
	}
	if _, err := loader.NewKeyGen(kind); err != nil {
		return encode(resolveResult{Error: err.Error()})
	}

	l := loader.NewLoader(nil, loader.NewMemoryFSFromMap(files), loader.DefaultMaxDepth)
	l.NewKeyGen = func() loader.KeyGen {
		k, _ := loader.NewKeyGen(kind)
		return k
	}
	loaded, err := l.Load(args[1].String())
	if err != nil {
		return encode(resolveResult{Error: err.Error()})
	}
	return encode(resolveResult{
		Success:     true,
		Files:       loaded.Files,
		Definitions: loaded.Spec.Summary(),
	})
}

func encode(r resolveResult) string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"encoding failed"}`
	}
	return string(data)
}

func main() {
	js.Global().Set("graphqxlResolve", js.FuncOf(resolve))
	select {}
}
