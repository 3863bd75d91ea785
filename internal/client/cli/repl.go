package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isAdmin() bool
	Record(ctx context.Context) error
	StopRecording(ctx context.Context) error
	List(ctx context.Context) error
	Select(ctx context.Context, arg string) error
	Unselect(ctx context.Context, arg string) error
	SelectAll(ctx context.Context) error
	UnselectAll(ctx context.Context) error
	Delete(ctx context.Context, arg string) error
	DeleteSelected(ctx context.Context) error
	Status(ctx context.Context) error
	AdminLogin(ctx context.Context) error
	AdminList(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the VoiceTasker CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands
//
//	record          — start capturing audio
//	stop            — finish the capture and submit it for transcription
//	list | l        — print the current log entries
//	select <n>      — toggle selection of entry n on
//	unselect <n>    — toggle selection of entry n off
//	selectall       — select every entry
//	unselectall     — clear the selection
//	delete <n>      — delete entry n
//	deletesel       — delete all selected entries in one batch
//	status          — show feed and recorder state
//	admin           — log in as administrator
//	adminlist       — list all owners' logs (admin only)
//	exit | quit     — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vt> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: record, stop, (l)ist, select <n>, unselect <n>, selectall, unselectall, delete <n>, deletesel, status, admin, exit")
			if a.isAdmin() {
				printlnFn("Admin commands: adminlist")
			}

		case "record":
			_ = a.Record(ctx)

		case "stop":
			_ = a.StopRecording(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "select":
			if len(args) == 0 {
				printlnFn("Usage: select <n>")
				continue
			}
			_ = a.Select(ctx, args[0])

		case "unselect":
			if len(args) == 0 {
				printlnFn("Usage: unselect <n>")
				continue
			}
			_ = a.Unselect(ctx, args[0])

		case "selectall":
			_ = a.SelectAll(ctx)

		case "unselectall":
			_ = a.UnselectAll(ctx)

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <n>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "deletesel":
			_ = a.DeleteSelected(ctx)

		case "status":
			_ = a.Status(ctx)

		case "admin":
			_ = a.AdminLogin(ctx)

		case "adminlist":
			if !a.isAdmin() {
				printlnFn("Log in with 'admin' first")
				continue
			}
			_ = a.AdminList(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
