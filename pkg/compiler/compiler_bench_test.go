package compiler

import (
	"testing"

	"minml/pkg/vm"
)

const benchSource = `
fun fib(n) = if n <= 1 then n else fib(n - 1) + fib(n - 2)
fun fact(n) = if n <= 1 then 1 else n * fact(n - 1)
fun choose(n, k) = fact(n) / (fact(k) * fact(n - k))
let a = fib(10) in
let b = fact(7) in
let c = choose(8, 3) in
a + b + c
`

func BenchmarkLex(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Lex(benchSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	tokens, err := Lex(benchSource)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(tokens, benchSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile(b *testing.B) {
	tokens, err := Lex(benchSource)
	if err != nil {
		b.Fatal(err)
	}
	prog, err := Parse(tokens, benchSource)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(prog); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompileAndRun(b *testing.B) {
	words, err := CompileSource(benchSource)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := vm.New(words)
		if err := m.Run(0); err != nil {
			b.Fatal(err)
		}
	}
}
