// Package profile provides optional runtime profiling for the domly command.
//
// Profiling is compiled in only with the "pprof" build tag, using
// [github.com/pkg/profile]. Without the tag every [Profiler] is a no-op and
// [Modes] is empty.
//
//	go build -tags pprof -o domly .
//	./domly --pprof-mode=cpu render page.html -d data.yaml
//	go tool pprof -http=: ~/.cache/domly/pprof/cpu.pprof
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread, and trace.
package profile
