package library

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the knowledge-base file format this build reads.
const SchemaVersion = 1

//go:embed std.yaml
var stdYAML []byte

// fileSchema mirrors the YAML layout of one knowledge-base file.
type fileSchema struct {
	Version    int               `yaml:"version"`
	Functions  []functionSchema  `yaml:"functions"`
	Containers []containerSchema `yaml:"containers"`
}

type functionSchema struct {
	Name     string       `yaml:"name"`
	Pure     bool         `yaml:"pure"`
	NoReturn bool         `yaml:"noreturn"`
	Alloc    *allocSchema `yaml:"alloc"`
}

type allocSchema struct {
	Size string `yaml:"size"`
	Arg  int    `yaml:"arg"`
	Arg2 int    `yaml:"arg2"`
}

type containerSchema struct {
	Name       string            `yaml:"name"`
	StringLike bool              `yaml:"string-like"`
	Yields     map[string]string `yaml:"yields"`
	Actions    map[string]string `yaml:"actions"`
}

// Load reads one or more knowledge-base files into a fresh Library. Later
// files override earlier entries with the same name.
func Load(paths ...string) (*Library, error) {
	l := New()
	for _, p := range paths {
		if err := l.AddFile(p); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// AddFile merges one knowledge-base file into the library.
func (l *Library) AddFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("library: %w", err)
	}
	if err := l.addYAML(data); err != nil {
		return fmt.Errorf("library: %s: %w", path, err)
	}
	return nil
}

func (l *Library) addYAML(data []byte) error {
	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if file.Version != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", file.Version, SchemaVersion)
	}
	for _, fs := range file.Functions {
		if fs.Name == "" {
			return fmt.Errorf("function entry without a name")
		}
		fn := Function{Name: fs.Name, Pure: fs.Pure, NoReturn: fs.NoReturn}
		if fs.Alloc != nil {
			size, err := parseAllocSize(fs.Alloc.Size)
			if err != nil {
				return fmt.Errorf("function %s: %w", fs.Name, err)
			}
			arg := fs.Alloc.Arg
			if arg == 0 {
				arg = 1
			}
			fn.Alloc = &AllocInfo{Size: size, Arg: arg, Arg2: fs.Alloc.Arg2}
		}
		l.functions[fn.Name] = fn
	}
	for _, cs := range file.Containers {
		if cs.Name == "" {
			return fmt.Errorf("container entry without a name")
		}
		c := Container{
			Name:       cs.Name,
			StringLike: cs.StringLike,
			Yields:     make(map[string]Yield, len(cs.Yields)),
			Actions:    make(map[string]Action, len(cs.Actions)),
		}
		for method, s := range cs.Yields {
			y, err := parseYield(s)
			if err != nil {
				return fmt.Errorf("container %s, method %s: %w", cs.Name, method, err)
			}
			c.Yields[method] = y
		}
		for method, s := range cs.Actions {
			a, err := parseAction(s)
			if err != nil {
				return fmt.Errorf("container %s, method %s: %w", cs.Name, method, err)
			}
			c.Actions[method] = a
		}
		l.containers[c.Name] = c
	}
	return nil
}

// Default returns the built-in knowledge base shipped with the binary. Each
// call builds a fresh Library, so callers may extend it freely.
func Default() *Library {
	l := New()
	if err := l.addYAML(stdYAML); err != nil {
		panic(fmt.Sprintf("library: bad embedded std.yaml: %v", err))
	}
	return l
}

func parseYield(s string) (Yield, error) {
	switch s {
	case "at-index":
		return YieldAtIndex, nil
	case "item":
		return YieldItem, nil
	case "buffer":
		return YieldBuffer, nil
	case "start-iterator":
		return YieldStartIterator, nil
	case "end-iterator":
		return YieldEndIterator, nil
	case "size":
		return YieldSize, nil
	case "empty":
		return YieldEmpty, nil
	default:
		return YieldNone, fmt.Errorf("unknown yield %q", s)
	}
}

func parseAction(s string) (Action, error) {
	switch s {
	case "resize":
		return ActionResize, nil
	case "clear":
		return ActionClear, nil
	case "push":
		return ActionPush, nil
	case "pop":
		return ActionPop, nil
	case "insert":
		return ActionInsert, nil
	case "erase":
		return ActionErase, nil
	case "change":
		return ActionChange, nil
	case "change-content":
		return ActionChangeContent, nil
	case "find":
		return ActionFind, nil
	default:
		return ActionNone, fmt.Errorf("unknown action %q", s)
	}
}

func parseAllocSize(s string) (AllocSize, error) {
	switch s {
	case "arg":
		return AllocArg, nil
	case "arg-product":
		return AllocArgProduct, nil
	case "strdup":
		return AllocStrDup, nil
	default:
		return AllocNone, fmt.Errorf("unknown alloc size %q", s)
	}
}
