// Command harness wires up a kernel.Context and drives a few of the
// scenarios the nucleus is meant to support, as a smoke-test substitute
// for booting real hardware. No third-party CLI flag library appears
// anywhere in the retrieved corpus (this is a bare-metal kernel whose
// only command-line-shaped tool, chentry, parses its arguments by hand),
// so this harness uses the standard library's flag package rather than
// inventing a dependency the corpus never reaches for.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/haiyixx/os161-1.99/src/diag"
	"github.com/haiyixx/os161-1.99/src/intersection"
	"github.com/haiyixx/os161-1.99/src/kernel"
	"github.com/haiyixx/os161-1.99/src/limits"
	"github.com/haiyixx/os161-1.99/src/mem"
)

func stealMemory(hi *mem.Pa_t) mem.StealFn {
	return func(npages int) mem.Pa_t {
		addr := *hi
		*hi += mem.Pa_t(npages * limits.PageSize)
		return addr
	}
}

func runForkWait(ctx *kernel.Context) {
	root := ctx.Bootstrap(0, mem.Pa_t(4096*limits.PageSize), "init")

	child, err := ctx.Fork(root)
	if err != 0 {
		log.Fatalf("fork failed: %v", err)
	}
	fmt.Printf("forked pid %d from pid %d\n", child.Pid, root.Pid)

	res, err := ctx.Execv(root, "prog", []string{"prog", "a", "bb"})
	if err != 0 {
		log.Fatalf("execv failed: %v", err)
	}
	fmt.Printf("execv: entry=%#x argc=%d stackptr=%#x\n", res.EntryPoint, res.Argc, res.StackPtr)

	go func() {
		time.Sleep(time.Millisecond)
		ctx.Exit(child, 7, time.Now())
	}()

	status, err := ctx.Procs.Waitpid(root, child.Pid)
	if err != 0 {
		log.Fatalf("waitpid failed: %v", err)
	}
	fmt.Printf("child exited with packed status %d\n", status)
	ctx.Exit(root, 0, time.Now())
}

func runIntersection() {
	isect := intersection.New(nil)
	isect.BeforeEntry(intersection.North, intersection.South)
	isect.BeforeEntry(intersection.South, intersection.North)
	isect.AfterExit(intersection.North, intersection.South)
	isect.AfterExit(intersection.South, intersection.North)
	fmt.Println("intersection: opposite-direction pair entered and exited cleanly")
}

func main() {
	flag.Parse()

	hi := mem.Pa_t(0)
	ctx := kernel.New(stealMemory(&hi), nil)

	runForkWait(ctx)
	runIntersection()

	fmt.Print(diag.Format(ctx))

	if err := ctx.WaitQuiescent(context.Background()); err != nil {
		log.Fatalf("quiescence wait failed: %v", err)
	}
	fmt.Println("all processes have exited")
}
