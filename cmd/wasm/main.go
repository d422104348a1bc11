//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/inamate/spider/internal/document"
	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/spider"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(spider.Build(), document.DefaultLibrary(), engine.DefaultOptions())

	// Create the engine API object
	spiderEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	spiderEngine.Set("applyIntent", js.FuncOf(applyIntent))
	spiderEngine.Set("loadPoses", js.FuncOf(loadPoses))
	spiderEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← engine) ---
	spiderEngine.Set("render", js.FuncOf(render))
	spiderEngine.Set("getState", js.FuncOf(getState))
	spiderEngine.Set("getJoints", js.FuncOf(getJoints))
	spiderEngine.Set("getVersion", js.FuncOf(getVersion))

	// Register on global scope
	js.Global().Set("spiderEngine", spiderEngine)

	// Signal that WASM is ready
	js.Global().Set("spiderWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func jsonResult(v any) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func applyIntent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing intent JSON"})
	}

	var in engine.Intent
	if err := json.Unmarshal([]byte(args[0].String()), &in); err != nil {
		return errorResult(err)
	}
	if err := eng.Apply(in); err != nil {
		return errorResult(err)
	}

	return js.ValueOf(map[string]interface{}{"ok": true})
}

// loadPoses replaces the pose library from a YAML document and rebuilds the rig.
func loadPoses(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing pose document"})
	}

	doc, err := document.Load(strings.NewReader(args[0].String()))
	if err != nil {
		return errorResult(err)
	}
	lib, err := doc.Library()
	if err != nil {
		return errorResult(err)
	}

	view := eng.View()
	eng = engine.NewEngine(spider.Build(), lib, engine.DefaultOptions())
	eng.SetView(view)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func tick(this js.Value, args []js.Value) interface{} {
	eng.Update()
	return js.ValueOf(float64(eng.Version()))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return jsonResult(eng.Compile())
}

func getState(this js.Value, args []js.Value) interface{} {
	return jsonResult(eng.State())
}

func getJoints(this js.Value, args []js.Value) interface{} {
	return jsonResult(eng.Joints())
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(float64(eng.Version()))
}
