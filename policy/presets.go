package policy

// The names below block reflection, prototype manipulation, dynamic code
// evaluation, timers and host bridges. They follow the global objects and
// keywords a strict embedding disables by default.
var (
	defaultDisallowedIdentifiers = []string{
		"__proto__",
		"apply", "AsyncFunction", "AsyncGenerator", "AsyncGeneratorFunction",
		"bind",
		"call", "clearInterval", "clearTimeout",
		"defineProperty", "defineProperties",
		"eval",
		"Function",
		"global", "globalThis", "getPrototypeOf",
		"Generator", "GeneratorFunction",
		"Intl",
		"prototype", "Proxy",
		"Promise",
		"require",
		"Reflect",
		"setImmediate", "setInterval", "setTimeout", "setPrototypeOf", "Symbol",
		"uneval",
		"XMLHttpRequest",
		"WebAssembly", "window",
	}

	defaultDisallowedKeywords = []string{
		"async", "await", "debugger", "export", "import", "var", "with", "yield",
	}

	escapeProperties = []string{
		"__proto__", "prototype", "constructor",
		"caller", "callee", "arguments",
		"apply", "bind", "call",
		"defineProperty", "defineProperties",
		"getOwnPropertyDescriptor", "getOwnPropertyDescriptors",
		"getPrototypeOf", "setPrototypeOf",
	}

	// defaultBuiltInObjects are the globals of a Node.js style host,
	// including its core module names.
	defaultBuiltInObjects = []string{
		"AbortController", "AbortSignal", "AggregateError", "Array", "ArrayBuffer", "Atomics",
		"BigInt", "BigInt64Array", "BigUint64Array", "Boolean", "Buffer",
		"DataView", "Date", "Decimal",
		"Error", "EvalError", "Event", "EventTarget",
		"FinalizationRegistry", "Float32Array", "Float64Array", "Function",
		"Infinity", "Int16Array", "Int32Array", "Int8Array", "Intl",
		"JSON",
		"Map", "Math", "MessageChannel", "MessageEvent", "MessagePort",
		"NaN", "Number",
		"Object",
		"Promise", "Proxy",
		"RangeError", "ReferenceError", "Reflect", "RegExp",
		"Set", "SharedArrayBuffer", "String", "Symbol", "SyntaxError",
		"TextDecoder", "TextEncoder", "TypeError",
		"URIError", "URL", "URLSearchParams", "Uint16Array", "Uint32Array", "Uint8Array", "Uint8ClampedArray",
		"WeakMap", "WeakRef", "WeakSet", "WebAssembly",
		"_", "_error",
		"assert", "async_hooks", "atob",
		"btoa", "buffer",
		"child_process", "clearImmediate", "clearInterval", "clearTimeout", "cluster", "console", "constants", "crypto",
		"decodeURI", "decodeURIComponent", "dgram", "diagnostics_channel", "dns", "domain",
		"encodeURI", "encodeURIComponent", "escape", "eval", "events",
		"fs",
		"global", "globalThis",
		"http", "http2", "https",
		"inspector", "isFinite", "isNaN",
		"module",
		"net",
		"os",
		"parseFloat", "parseInt", "path", "perf_hooks", "performance", "process", "punycode",
		"querystring", "queueMicrotask",
		"readline", "repl", "require",
		"setImmediate", "setInterval", "setTimeout", "stream", "string_decoder", "sys",
		"timers", "tls", "trace_events", "tty",
		"undefined", "unescape", "url", "util",
		"v8", "vm",
		"wasi", "worker_threads",
		"zlib",
	}

	// defaultReservedFunctions are the entry points a host calls after the
	// script has run.
	defaultReservedFunctions = []string{"main"}

	escapePropertyPatterns = []string{
		"__*__",
	}

	escapeCallees = []string{
		"eval", "uneval", "execScript",
		"Function", "AsyncFunction", "GeneratorFunction", "AsyncGeneratorFunction",
		"require", "importScripts",
		"setTimeout", "setInterval", "setImmediate",
	}
)

var (
	defaultPolicy    = DefaultBuilder("default").Version("1").MustBuild()
	permissivePolicy = PermissiveBuilder("permissive").Version("1").MustBuild()
)

// Default returns the strictest built-in policy: a deny list of reflective and
// host-bridge identifiers, the keywords async, await, debugger, export,
// import, var, with and yield, and the escape property and callee layers. The
// host's built-in objects may not be declared or assigned, and main may only
// be declared as a top-level function.
func Default() *Policy {
	return defaultPolicy
}

// Permissive returns a policy that enforces only the property and callee
// escape layers.
func Permissive() *Policy {
	return permissivePolicy
}

// DefaultBuilder returns a builder preloaded with the Default policy's
// settings, for hosts that want to extend it.
func DefaultBuilder(name string) *Builder {
	return PermissiveBuilder(name).
		Identifiers(defaultDisallowedIdentifiers...).
		Keywords(defaultDisallowedKeywords...).
		BuiltInObjects(defaultBuiltInObjects...).
		ReservedFunctions(defaultReservedFunctions...)
}

// PermissiveBuilder returns a builder preloaded with the Permissive policy's
// settings.
func PermissiveBuilder(name string) *Builder {
	return NewBuilder(name).
		DisallowedProperties(escapeProperties...).
		DisallowedPropertyPatterns(escapePropertyPatterns...).
		DisallowedCallees(escapeCallees...)
}
