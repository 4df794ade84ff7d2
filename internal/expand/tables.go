package expand

// abbreviations expands ~75 common identifier abbreviations to their full
// word.
var abbreviations = map[string]string{
	"cfg":     "config",
	"conf":    "configuration",
	"ctx":     "context",
	"err":     "error",
	"msg":     "message",
	"req":     "request",
	"res":     "response",
	"resp":    "response",
	"auth":    "authentication",
	"authz":   "authorization",
	"db":      "database",
	"repo":    "repository",
	"svc":     "service",
	"mgr":     "manager",
	"util":    "utility",
	"utils":   "utilities",
	"impl":    "implementation",
	"iface":   "interface",
	"intf":    "interface",
	"env":     "environment",
	"var":     "variable",
	"vars":    "variables",
	"const":   "constant",
	"func":    "function",
	"fn":      "function",
	"param":   "parameter",
	"params":  "parameters",
	"arg":     "argument",
	"args":    "arguments",
	"init":    "initialize",
	"idx":     "index",
	"id":      "identifier",
	"num":     "number",
	"cnt":     "count",
	"len":     "length",
	"str":     "string",
	"obj":     "object",
	"arr":     "array",
	"dict":    "dictionary",
	"hash":    "hashmap",
	"pkg":     "package",
	"mod":     "module",
	"lib":     "library",
	"gen":     "generate",
	"calc":    "calculate",
	"exec":    "execute",
	"proc":    "process",
	"thread":  "thread",
	"conn":    "connection",
	"sock":    "socket",
	"addr":    "address",
	"pos":     "position",
	"dir":     "directory",
	"dirs":    "directories",
	"fs":      "filesystem",
	"io":      "input-output",
	"tmp":     "temporary",
	"temp":    "temporary",
	"admin":   "administrator",
	"usr":     "user",
	"pwd":     "password",
	"pw":      "password",
	"auth2":   "oauth",
	"mw":      "middleware",
	"handler": "handler",
	"ctrl":    "controller",
	"mdl":     "model",
	"sched":   "scheduler",
	"qry":     "query",
	"val":     "value",
	"vals":    "values",
	"cb":      "callback",
	"evt":     "event",
	"btn":     "button",
	"nav":     "navigation",
}

// synonymGroups are ~20 sets of interchangeable domain terms (derived once
// 4.G step 3). wordToGroup is derived once at package init for O(1) lookup.
var synonymGroups = [][]string{
	{"login", "signin", "authenticate", "logon"},
	{"logout", "signout"},
	{"register", "signup", "enroll"},
	{"delete", "remove", "destroy", "purge"},
	{"create", "add", "new", "insert"},
	{"update", "modify", "edit", "patch"},
	{"get", "fetch", "retrieve", "read", "load"},
	{"list", "enumerate", "index"},
	{"find", "search", "lookup", "query"},
	{"save", "persist", "store", "write"},
	{"send", "dispatch", "emit", "publish"},
	{"receive", "consume", "subscribe", "listen"},
	{"validate", "verify", "check"},
	{"config", "configuration", "settings", "options"},
	{"error", "exception", "failure", "fault"},
	{"start", "begin", "launch", "boot"},
	{"stop", "halt", "terminate", "shutdown"},
	{"connect", "attach", "link"},
	{"disconnect", "detach", "unlink"},
	{"parse", "decode", "deserialize"},
}

var wordToGroup = buildWordToGroup()

func buildWordToGroup() map[string][]string {
	m := make(map[string][]string)
	for _, group := range synonymGroups {
		for _, word := range group {
			m[word] = group
		}
	}
	return m
}
