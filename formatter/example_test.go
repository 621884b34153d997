package formatter_test

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/philipp01105/jsonlog/core"
	"github.com/philipp01105/jsonlog/formatter"
)

func ExampleNewTextFormatter() {
	f := formatter.NewTextFormatter(formatter.TextOptions{})

	event := &core.Event{
		Time:    time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		Level:   core.InfoLevel,
		Message: "hello world",
	}

	out, _ := f.Format(event)
	fmt.Print(string(out))
	// Output:
	// 2026-01-15T12:00:00Z [INFO] hello world
}

func ExampleNewJSONFormatter() {
	f, err := formatter.NewJSONFormatter(formatter.Options{
		Format:   `{"time":"asctime","level":"levelname","message":"message"}`,
		MixExtra: true,
	})
	if err != nil {
		panic(err)
	}

	event := &core.Event{
		Time:    time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		Level:   core.InfoLevel,
		Message: "request handled",
		Extras: []core.Field{
			{Key: "status", Int64: 200, Type: core.Int64Type},
		},
	}

	_ = f.FormatTo(event, os.Stdout)
	// Output:
	// {"time":"2026-01-15 12:00:00,000","level":"INFO","message":"request handled","status":200}
}

func ExampleNewJSONFormatter_brace() {
	f, err := formatter.NewJSONFormatter(formatter.Options{
		Format: `{"line":"[{levelname:^7}] {name}: {message}"}`,
		Style:  "{",
	})
	if err != nil {
		panic(err)
	}

	event := &core.Event{Level: core.WarnLevel, Logger: "db", Message: "slow query"}
	out, _ := f.Format(event)
	fmt.Println(string(out))
	// Output:
	// {"line":"[ WARN  ] db: slow query"}
}

func ExampleExprRule() {
	severity, err := formatter.ExprRule(`levelno >= 40 ? "page" : "ticket"`)
	if err != nil {
		panic(err)
	}
	f, err := formatter.NewJSONFormatter(formatter.Options{
		Format: `{"severity":"severity","msg":"message"}`,
		Attributes: []formatter.Attribute{
			{Name: "severity", Rule: severity},
		},
	})
	if err != nil {
		panic(err)
	}

	for _, level := range []core.Level{core.InfoLevel, core.ErrorLevel} {
		out, _ := f.Format(&core.Event{Level: level, Message: level.String()})
		fmt.Println(string(out))
	}
	// Output:
	// {"severity":"ticket","msg":"INFO"}
	// {"severity":"page","msg":"ERROR"}
}

func ExampleParseFormatSpec() {
	spec, err := formatter.ParseFormatSpec(`{"z":"name","a":"levelname","m":"message"}`)
	if err != nil {
		panic(err)
	}
	fmt.Println(strings.Join(spec.Keys(), ","))
	// Output:
	// z,a,m
}
