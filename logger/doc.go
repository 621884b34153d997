// Package logger is the public API of jsonlog. Most users only need to
// import this package.
//
// A Logger is immutable after construction. The handler, level, name
// and default fields are set once via the Builder and never modified,
// so a Logger is safe for concurrent use without locking.
//
// The package initializes a default Logger (InfoLevel, JSON to stdout
// with the default format specification) in init(). The package-level
// functions Info, Error, Debugf, etc. delegate to it:
//
//	logger.Info("ready", logger.Int("port", 8080))
//
// BasicConfig replaces the default with a configured JSON formatter:
//
//	err := logger.BasicConfig(logger.BasicOptions{
//	    Level: logger.DebugLevel,
//	    Formatter: formatter.Options{
//	        Format:   `{"time":"asctime","level":"levelname","msg":"message"}`,
//	        MixExtra: true,
//	    },
//	})
//
// For full control, use the Builder:
//
//	log := logger.NewBuilder().
//	    WithHandler(myHandler).
//	    WithLevel(logger.DebugLevel).
//	    WithName("api").
//	    WithCaller(true).
//	    Build()
//
// Child loggers are created via With, which adds default fields, and
// Named, which extends the dotted logger name:
//
//	reqLog := log.Named("http").With(logger.String("request_id", id))
//
// The …f methods pass the format and arguments to the formatter, which
// performs printf-style substitution. Level checks happen before any
// allocation, so filtered-out messages cost a single comparison.
package logger
