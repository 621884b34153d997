package core

// Standard attribute names available to every format specification.
const (
	AttrName            = "name"
	AttrLevelNo         = "levelno"
	AttrLevelName       = "levelname"
	AttrPathname        = "pathname"
	AttrFilename        = "filename"
	AttrModule          = "module"
	AttrLineNo          = "lineno"
	AttrFuncName        = "funcName"
	AttrCreated         = "created"
	AttrAscTime         = "asctime"
	AttrMsecs           = "msecs"
	AttrRelativeCreated = "relativeCreated"
	AttrThread          = "thread"
	AttrProcess         = "process"
	AttrProcessName     = "processName"
	AttrMessage         = "message"
	AttrExcText         = "exc_text"
	AttrStackInfo       = "stack_info"
)

// StandardAttributes lists the attributes derived from an Event, in the
// order they are documented.
var StandardAttributes = []string{
	AttrName, AttrLevelNo, AttrLevelName, AttrPathname, AttrFilename,
	AttrModule, AttrLineNo, AttrFuncName, AttrCreated, AttrAscTime,
	AttrMsecs, AttrRelativeCreated, AttrThread, AttrProcess,
	AttrProcessName, AttrMessage, AttrExcText, AttrStackInfo,
}

var reserved = func() map[string]struct{} {
	m := make(map[string]struct{}, len(StandardAttributes)+3)
	for _, a := range StandardAttributes {
		m[a] = struct{}{}
	}
	for _, a := range []string{"msg", "args", "exc_info"} {
		m[a] = struct{}{}
	}
	return m
}()

// IsReserved reports whether name belongs to the standard attribute set.
// Extras with a reserved name never override the standard value and are
// never echoed.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}
