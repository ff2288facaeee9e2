// Ingot CLI - assemble, run, and manage Ingot programs
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/ingotvm/ingot/asm"
	"github.com/ingotvm/ingot/manifest"
	"github.com/ingotvm/ingot/store"
	"github.com/ingotvm/ingot/vm"
	"github.com/ingotvm/ingot/vm/wire"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("ingot")

func main() {
	verbosity := flag.Int("v", 0, "Log verbosity (0 = quiet)")
	configDir := flag.String("config", "", "Directory containing ingot.toml (default: search upwards from .)")
	dbPath := flag.String("db", "", "Program store path (overrides manifest)")
	outFile := flag.String("o", "", "Compile to a wire-format file instead of running")
	saveName := flag.String("save", "", "Save the assembled program to the store under this name")
	runName := flag.String("run", "", "Run a stored program")
	deleteName := flag.String("delete", "", "Delete a stored program")
	listPrograms := flag.Bool("list", false, "List stored programs")
	dump := flag.Bool("dump", false, "Print the final stack after a run")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ingot [options] [program.asm | program.ivm]\n\n")
		fmt.Fprintf(os.Stderr, "Assembles and runs Ingot programs, or manages the program store.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ingot prog.asm                # Assemble and run\n")
		fmt.Fprintf(os.Stderr, "  ingot -dump prog.asm          # Run, then print the final stack\n")
		fmt.Fprintf(os.Stderr, "  ingot -o prog.ivm prog.asm    # Compile to wire format\n")
		fmt.Fprintf(os.Stderr, "  ingot prog.ivm                # Run a compiled program\n")
		fmt.Fprintf(os.Stderr, "  ingot -save loop prog.asm     # Save to the program store\n")
		fmt.Fprintf(os.Stderr, "  ingot -run loop               # Run a stored program\n")
		fmt.Fprintf(os.Stderr, "  ingot -list                   # List stored programs\n")
	}
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	m, err := loadManifest(*configDir)
	if err != nil {
		fatal("%v", err)
	}
	if *dbPath == "" {
		*dbPath = m.StorePath()
	}

	switch {
	case *listPrograms:
		s := openStore(*dbPath)
		defer s.Close()
		entries, err := s.List()
		if err != nil {
			fatal("%v", err)
		}
		if len(entries) == 0 {
			fmt.Println("no stored programs")
			return
		}
		for _, e := range entries {
			fmt.Printf("%-20s %5d instructions  %s  %s\n",
				e.Name, e.Instructions, e.CreatedAt.Format("2006-01-02 15:04"), e.ID)
		}
		return

	case *deleteName != "":
		s := openStore(*dbPath)
		defer s.Close()
		if err := s.Delete(*deleteName); err != nil {
			fatal("%v", err)
		}
		log.Infof("deleted program %q", *deleteName)
		return

	case *runName != "":
		s := openStore(*dbPath)
		defer s.Close()
		prog, err := s.Load(*runName)
		if err != nil {
			fatal("%v", err)
		}
		runProgram(m, *runName, prog, *dump)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)
	name, prog := loadProgram(path)

	switch {
	case *outFile != "":
		data, err := wire.MarshalProgram(name, prog)
		if err != nil {
			fatal("%v", err)
		}
		if err := os.WriteFile(*outFile, data, 0o644); err != nil {
			fatal("%v", err)
		}
		log.Infof("wrote %s (%d instructions, %d bytes)", *outFile, len(prog), len(data))

	case *saveName != "":
		s := openStore(*dbPath)
		defer s.Close()
		if err := s.Save(*saveName, prog); err != nil {
			fatal("%v", err)
		}
		log.Infof("saved program %q (%d instructions)", *saveName, len(prog))

	default:
		runProgram(m, name, prog, *dump)
	}
}

// loadProgram reads a program from disk: wire format for .ivm files,
// assembler text for everything else.
func loadProgram(path string) (string, []vm.Instruction) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("%v", err)
	}

	if filepath.Ext(path) == ".ivm" {
		name, prog, err := wire.UnmarshalProgram(data)
		if err != nil {
			fatal("%v", err)
		}
		if name == "" {
			name = baseName(path)
		}
		return name, prog
	}

	prog, err := asm.Assemble(string(data))
	if err != nil {
		fatal("%s: %v", path, err)
	}
	return baseName(path), prog
}

func runProgram(m *manifest.Manifest, name string, prog []vm.Instruction, dump bool) {
	machine := vm.NewWithConfig(m.VMSettings())
	defer machine.Close()

	log.Infof("running %q (%d instructions)", name, len(prog))
	if err := machine.Run(prog); err != nil {
		fatal("%s: %v", name, err)
	}
	log.Infof("halted with stack depth %d", machine.Depth())

	if dump {
		fmt.Println(strings.TrimRight(machine.DumpStack(), "\n"))
	}
}

func loadManifest(configDir string) (*manifest.Manifest, error) {
	if configDir != "" {
		return manifest.Load(configDir)
	}
	return manifest.FindAndLoad(".")
}

func openStore(path string) *store.Store {
	s, err := store.Open(path)
	if err != nil {
		fatal("%v", err)
	}
	return s
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
