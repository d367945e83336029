package main

import "github.com/dark-riscv/rvsim/cmd/rvsim"

func main() {
	rvsim.Execute()
}
